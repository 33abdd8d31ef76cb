package exports

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/remyvnkhiemtruong/traixuan/app/database"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/auth"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/web"
)

type Handler struct {
	Repo     database.Repository
	Guard    *auth.Guard
	Pages    *web.Pages
	Location *time.Location
	Now      func() time.Time
}

func SetupExportRoutes(app *fiber.App, h *Handler) {
	export := app.Group("/admin/export", h.Guard.RequireAdmin)

	export.Get("/representatives", h.ExportRepresentatives)
	export.Get("/students", h.ExportStudents)
	export.Get("/class/:className/:type", h.ExportClass)
}
