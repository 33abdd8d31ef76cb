package dashboard

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/remyvnkhiemtruong/traixuan/app/database"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/auth"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/web"
)

type Handler struct {
	Repo  database.Repository
	Guard *auth.Guard
	Pages *web.Pages
}

func SetupDashboardRoutes(app *fiber.App, h *Handler) {
	app.Get("/", h.Guard.RequireAuthenticated, h.GetDashboard)
}

// GetDashboard shows the caller's own representative, students and menu.
func (h *Handler) GetDashboard(c *fiber.Ctx) error {
	id := web.CurrentIdentity(c)
	ctx := c.UserContext()

	rep, err := h.Repo.GetRepresentative(ctx, id.AccountID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("dashboard representative: %w", err)
	}

	students, err := h.Repo.ListStudentsByAccount(ctx, id.AccountID)
	if err != nil {
		return fmt.Errorf("dashboard students: %w", err)
	}

	foodItems, err := h.Repo.ListFoodItemsByAccount(ctx, id.AccountID)
	if err != nil {
		return fmt.Errorf("dashboard food: %w", err)
	}

	return h.Pages.Render(c, "dashboard", "Trang chủ - THPT Võ Văn Kiệt", fiber.Map{
		"CurrentPage":    "dashboard",
		"Representative": rep,
		"Students":       students,
		"FoodItems":      foodItems,
	})
}
