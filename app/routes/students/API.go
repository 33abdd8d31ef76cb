package students

import (
	"mime/multipart"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/remyvnkhiemtruong/traixuan/app/apperr"
	"github.com/remyvnkhiemtruong/traixuan/app/models"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/auth"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/web"
	"github.com/remyvnkhiemtruong/traixuan/app/session"
	"github.com/remyvnkhiemtruong/traixuan/app/storage"
)

const (
	msgMissingFields = "Vui lòng nhập đầy đủ thông tin"
	msgBadDOB        = "Ngày sinh không hợp lệ"
	msgNotFound      = "Không tìm thấy học sinh"
)

// Form is a validated student registration.
type Form struct {
	FullName    string
	DateOfBirth time.Time
	CCCDNumber  string
	PhoneNumber string
	Front       *multipart.FileHeader
	Back        *multipart.FileHeader
}

// ParseForm checks the text fields. dob is YYYY-MM-DD and may not be after
// today in loc.
func ParseForm(fullName, dob, cccd, phone string, now time.Time, loc *time.Location) (*Form, error) {
	f := &Form{
		FullName:    strings.TrimSpace(fullName),
		CCCDNumber:  strings.TrimSpace(cccd),
		PhoneNumber: strings.TrimSpace(phone),
	}
	dob = strings.TrimSpace(dob)
	if f.FullName == "" || dob == "" || f.CCCDNumber == "" || f.PhoneNumber == "" {
		return nil, apperr.Validation(msgMissingFields)
	}

	d, err := time.Parse("2006-01-02", dob)
	if err != nil {
		return nil, apperr.Validation(msgBadDOB)
	}
	y, m, day := now.In(loc).Date()
	if d.After(time.Date(y, m, day, 0, 0, 0, 0, time.UTC)) {
		return nil, apperr.Validation(msgBadDOB)
	}
	f.DateOfBirth = d
	return f, nil
}

func formFile(form *multipart.Form, name string) *multipart.FileHeader {
	if form == nil {
		return nil
	}
	if files := form.File[name]; len(files) > 0 && files[0].Filename != "" {
		return files[0]
	}
	return nil
}

func (h *Handler) RegisterStudentAPI(c *fiber.Ctx) error {
	id := web.CurrentIdentity(c)
	ctx := c.UserContext()

	form, err := ParseForm(c.FormValue("fullName"), c.FormValue("dob"),
		c.FormValue("cccdNumber"), c.FormValue("phoneNumber"), h.Now(), h.Location)
	if err != nil {
		return h.Pages.Fail(c, "/register-student", err)
	}

	if mf, err := c.MultipartForm(); err == nil {
		form.Front = formFile(mf, "cccdFront")
		form.Back = formFile(mf, "cccdBack")
	}

	// Every upload is checked before anything is written.
	for _, fh := range []*multipart.FileHeader{form.Front, form.Back} {
		if fh == nil {
			continue
		}
		if err := storage.ValidateImage(fh, h.MaxBytes); err != nil {
			return h.Pages.Fail(c, "/register-student", err)
		}
	}

	student := &models.Student{
		AccountID:    id.AccountID,
		RegisteredBy: id.AccountID,
		FullName:     form.FullName,
		DateOfBirth:  form.DateOfBirth,
		CCCDNumber:   form.CCCDNumber,
		PhoneNumber:  form.PhoneNumber,
	}

	var saved []string
	for _, up := range []struct {
		fh   *multipart.FileHeader
		dest **string
	}{{form.Front, &student.CCCDFront}, {form.Back, &student.CCCDBack}} {
		if up.fh == nil {
			continue
		}
		p, err := h.Images.Save(ctx, up.fh)
		if err != nil {
			RemoveImages(c, h.Images, h.Pages.Log, saved)
			return h.Pages.Fail(c, "/register-student", apperr.Persistence(err))
		}
		saved = append(saved, p)
		*up.dest = &p
	}

	if err := h.Repo.CreateStudent(ctx, student); err != nil {
		RemoveImages(c, h.Images, h.Pages.Log, saved)
		return h.Pages.Fail(c, "/register-student", apperr.Persistence(err))
	}

	h.Pages.Log.Info("student registered", "class", id.Username, "student_id", student.ID, "images", len(saved))
	return h.Pages.Redirect(c, "/register-student", session.Success("Đăng ký học sinh thành công!"))
}

// DeleteStudentAPI deletes one of the caller's own students. Someone else's
// student is reported exactly like a missing one.
func (h *Handler) DeleteStudentAPI(c *fiber.Ctx) error {
	id := web.CurrentIdentity(c)
	ctx := c.UserContext()

	studentID, ok := web.ParamID(c, "id")
	if !ok {
		return h.Pages.Fail(c, "/register-student", apperr.NotFound(msgNotFound))
	}

	student, err := h.Repo.GetStudent(ctx, studentID)
	if err != nil {
		return h.Pages.Fail(c, "/register-student", web.StoreError(err, msgNotFound))
	}
	if err := auth.AssertOwner(id, student.AccountID); err != nil {
		return h.Pages.Fail(c, "/register-student", apperr.NotFound(msgNotFound))
	}

	if err := h.Repo.DeleteStudent(ctx, student.ID); err != nil {
		return h.Pages.Fail(c, "/register-student", web.StoreError(err, msgNotFound))
	}
	RemoveImages(c, h.Images, h.Pages.Log, student.ImagePaths())

	return h.Pages.Redirect(c, "/register-student", session.Success("Đã xóa học sinh thành công"))
}
