package admin

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/remyvnkhiemtruong/traixuan/app/database"
	"github.com/remyvnkhiemtruong/traixuan/app/models"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/auth"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/students"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/web"
	"github.com/remyvnkhiemtruong/traixuan/app/session"
)

const msgGeneric = "Đã có lỗi xảy ra"

func (h *Handler) GetOverview(c *fiber.Ctx) error {
	ctx := c.UserContext()

	classes, err := h.Repo.ListClassAccounts(ctx)
	if err != nil {
		return h.Pages.Internal(c, "/", msgGeneric, err)
	}
	reps, err := h.Repo.ListRepresentatives(ctx)
	if err != nil {
		return h.Pages.Internal(c, "/", msgGeneric, err)
	}
	all, err := h.Repo.ListStudents(ctx)
	if err != nil {
		return h.Pages.Internal(c, "/", msgGeneric, err)
	}

	o := BuildOverview(classes, reps, all)
	return h.Pages.Render(c, "admin", "Admin Dashboard - VVK Spring Fair", fiber.Map{
		"CurrentPage":     "admin",
		"Rows":            o.Rows,
		"Representatives": o.Representatives,
		"Students":        o.Students,
		"ClassCount":      len(o.Rows),
		"Registered":      o.Registered,
		"StudentCount":    o.StudentCount,
	})
}

func (h *Handler) GetClass(c *fiber.Ctx) error {
	class, err := LoadClass(c.UserContext(), h.Repo, c.Params("className"))
	switch {
	case errors.Is(err, database.ErrNotFound):
		return h.Pages.Redirect(c, "/admin", session.Error("Không tìm thấy lớp học"))
	case err != nil:
		return h.Pages.Internal(c, "/admin", msgGeneric, err)
	}

	return h.Pages.Render(c, "admin-class-detail",
		fmt.Sprintf("Chi tiết lớp %s - THPT Võ Văn Kiệt", class.Account.Username), fiber.Map{
			"CurrentPage":    "admin",
			"ClassAccount":   class.Account,
			"Representative": class.Representative,
			"Students":       class.Students,
			"FoodItems":      class.FoodItems,
		})
}

// DeleteRepresentativeAPI clears a class's banking details. The bank
// accounts go with the representative.
func (h *Handler) DeleteRepresentativeAPI(c *fiber.Ctx) error {
	ctx := c.UserContext()
	code := models.NormalizeClass(c.Params("className"))
	notFound := session.Error(fmt.Sprintf("Không tìm thấy thông tin tài chính của lớp %s", code))

	acc, err := h.Repo.GetAccountByUsername(ctx, code)
	if errors.Is(err, database.ErrNotFound) {
		return h.Pages.Redirect(c, "/admin", notFound)
	}
	if err != nil {
		return h.Pages.Internal(c, "/admin", "Đã có lỗi xảy ra khi xóa thông tin", err)
	}

	err = h.Repo.DeleteRepresentative(ctx, acc.ID)
	if errors.Is(err, database.ErrNotFound) {
		return h.Pages.Redirect(c, "/admin", notFound)
	}
	if err != nil {
		return h.Pages.Internal(c, "/admin", "Đã có lỗi xảy ra khi xóa thông tin", err)
	}

	h.Pages.Log.Info("representative deleted", "class", code)
	return h.Pages.Redirect(c, "/admin", session.Success(fmt.Sprintf("Đã xóa thông tin tài chính của lớp %s", code)))
}

func (h *Handler) DeleteStudentAPI(c *fiber.Ctx) error {
	ctx := c.UserContext()
	const failed = "Đã có lỗi xảy ra khi xóa học sinh"

	id, ok := web.ParamID(c, "id")
	if !ok {
		return h.Pages.Redirect(c, "/admin", session.Error("Không tìm thấy học sinh"))
	}

	student, err := h.Repo.GetStudent(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return h.Pages.Redirect(c, "/admin", session.Error("Không tìm thấy học sinh"))
	}
	if err != nil {
		return h.Pages.Internal(c, "/admin", failed, err)
	}
	if err := auth.AssertOwnerOrAdmin(web.CurrentIdentity(c), student.AccountID); err != nil {
		return h.Pages.Redirect(c, "/admin", session.Error("Không tìm thấy học sinh"))
	}

	if err := h.Repo.DeleteStudent(ctx, student.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return h.Pages.Redirect(c, "/admin", session.Error("Không tìm thấy học sinh"))
		}
		return h.Pages.Internal(c, "/admin", failed, err)
	}
	students.RemoveImages(c, h.Images, h.Pages.Log, student.ImagePaths())

	h.Pages.Log.Info("student deleted by admin", "student_id", student.ID, "class", student.ClassName)
	return h.Pages.Redirect(c, "/admin", session.Success(fmt.Sprintf("Đã xóa học sinh %s", student.FullName)))
}

// DeleteFoodAPI returns to the class page when the request came from one.
func (h *Handler) DeleteFoodAPI(c *fiber.Ctx) error {
	ctx := c.UserContext()

	id, ok := web.ParamID(c, "id")
	if !ok {
		return h.Pages.Redirect(c, "/admin", session.Error("Không tìm thấy món ăn"))
	}

	item, err := h.Repo.GetFoodItem(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return h.Pages.Redirect(c, "/admin", session.Error("Không tìm thấy món ăn"))
	}
	if err != nil {
		return h.Pages.Internal(c, "/admin", msgGeneric, err)
	}
	if err := auth.AssertOwnerOrAdmin(web.CurrentIdentity(c), item.AccountID); err != nil {
		return h.Pages.Redirect(c, "/admin", session.Error("Không tìm thấy món ăn"))
	}

	if err := h.Repo.DeleteFoodItem(ctx, item.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return h.Pages.Redirect(c, "/admin", session.Error("Không tìm thấy món ăn"))
		}
		return h.Pages.Internal(c, "/admin", msgGeneric, err)
	}

	dest := "/admin"
	if backToClass(c.Get(fiber.HeaderReferer)) {
		dest = "/admin/class/" + url.PathEscape(item.ClassName)
	}
	return h.Pages.Redirect(c, dest, session.Success("Đã xóa món ăn thành công"))
}
