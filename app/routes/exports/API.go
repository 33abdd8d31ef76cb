package exports

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"

	"github.com/remyvnkhiemtruong/traixuan/app/database"
	"github.com/remyvnkhiemtruong/traixuan/app/models"
	"github.com/remyvnkhiemtruong/traixuan/app/reports"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/admin"
	"github.com/remyvnkhiemtruong/traixuan/app/session"
)

const msgExportFailed = "Đã có lỗi xảy ra khi xuất file Excel"

func (h *Handler) ExportRepresentatives(c *fiber.Ctx) error {
	ctx := c.UserContext()

	classes, err := h.Repo.ListClassAccounts(ctx)
	if err != nil {
		return h.Pages.Internal(c, "/admin", msgExportFailed, err)
	}
	reps, err := h.Repo.ListRepresentatives(ctx)
	if err != nil {
		return h.Pages.Internal(c, "/admin", msgExportFailed, err)
	}

	f, err := reports.Representatives(classes, reps)
	return h.send(c, f, err, "DanhSachDaiDien", "/admin")
}

func (h *Handler) ExportStudents(c *fiber.Ctx) error {
	students, err := h.Repo.ListStudents(c.UserContext())
	if err != nil {
		return h.Pages.Internal(c, "/admin", msgExportFailed, err)
	}

	f, err := reports.Students(students, h.Location)
	return h.send(c, f, err, "DanhSachHocSinhMoTK", "/admin")
}

func (h *Handler) ExportClass(c *fiber.Ctx) error {
	code := models.NormalizeClass(c.Params("className"))
	kind := reports.Kind(c.Params("type"))
	classPage := "/admin/class/" + url.PathEscape(code)

	if !kind.Valid() {
		return h.Pages.Redirect(c, classPage, session.Error("Loại dữ liệu không hợp lệ"))
	}

	class, err := admin.LoadClass(c.UserContext(), h.Repo, code)
	if errors.Is(err, database.ErrNotFound) {
		return h.Pages.Redirect(c, "/admin", session.Error("Không tìm thấy lớp học"))
	}
	if err != nil {
		return h.Pages.Internal(c, "/admin", msgExportFailed, err)
	}

	var f *excelize.File
	switch kind {
	case reports.KindStudents:
		f, err = reports.ClassStudents(code, class.Students)
	case reports.KindFood:
		f, err = reports.ClassFood(code, class.FoodItems)
	case reports.KindFinance:
		f, err = reports.ClassFinance(code, class.Representative)
	}
	return h.send(c, f, err, kind.FilePrefix(code), "/admin")
}

// send streams the workbook only once it has been fully written to memory,
// so a failed export never produces a truncated download.
func (h *Handler) send(c *fiber.Ctx, f *excelize.File, buildErr error, prefix, onError string) error {
	if buildErr != nil {
		return h.Pages.Internal(c, onError, msgExportFailed, buildErr)
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return h.Pages.Internal(c, onError, msgExportFailed, fmt.Errorf("write workbook: %w", err))
	}

	name := reports.Filename(prefix, h.Now(), h.Location)
	c.Set(fiber.HeaderContentType, reports.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", name))
	h.Pages.Log.Info("export", "file", name, "bytes", buf.Len())
	return c.Send(buf.Bytes())
}
