package students

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/remyvnkhiemtruong/traixuan/app/database"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/auth"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/web"
	"github.com/remyvnkhiemtruong/traixuan/app/storage"
)

type Handler struct {
	Repo     database.StudentStore
	Images   storage.ImageStore
	Guard    *auth.Guard
	Pages    *web.Pages
	MaxBytes int64
	Location *time.Location
	Now      func() time.Time
}

func SetupStudentsRoutes(app *fiber.App, h *Handler) {
	app.Get("/register-student", h.Guard.RequireAuthenticated, h.RegisterStudentPage)
	app.Post("/register-student", h.Guard.RequireAuthenticated, h.RegisterStudentAPI)
	app.Post("/delete-student/:id", h.Guard.RequireAuthenticated, h.DeleteStudentAPI)
}

func (h *Handler) RegisterStudentPage(c *fiber.Ctx) error {
	id := web.CurrentIdentity(c)

	students, err := h.Repo.ListStudentsByAccount(c.UserContext(), id.AccountID)
	if err != nil {
		return h.Pages.Internal(c, "/", "Đã có lỗi xảy ra", err)
	}

	return h.Pages.Render(c, "register-student", "Đăng ký học sinh - VVK Spring Fair", fiber.Map{
		"CurrentPage": "register-student",
		"Students":    students,
	})
}

// RemoveImages deletes a student's images after its row is gone. Failures
// are logged and never reach the user.
func RemoveImages(c *fiber.Ctx, images storage.ImageStore, log *slog.Logger, paths []string) {
	if err := storage.RemoveAll(c.UserContext(), images, paths...); err != nil {
		log.Warn("remove student images", "paths", paths, "error", err)
	}
}
