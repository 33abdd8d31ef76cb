package admin

import (
	"github.com/gofiber/fiber/v2"

	"github.com/remyvnkhiemtruong/traixuan/app/database"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/auth"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/web"
	"github.com/remyvnkhiemtruong/traixuan/app/storage"
)

type Handler struct {
	Repo   database.Repository
	Images storage.ImageStore
	Guard  *auth.Guard
	Pages  *web.Pages
}

func SetupAdminRoutes(app *fiber.App, h *Handler) {
	admin := app.Group("/admin", h.Guard.RequireAdmin)

	admin.Get("/", h.GetOverview)
	admin.Get("/class/:className", h.GetClass)
	admin.Post("/delete-rep/:className", h.DeleteRepresentativeAPI)
	admin.Post("/delete-student/:id", h.DeleteStudentAPI)
	admin.Post("/delete-food/:id", h.DeleteFoodAPI)
}
