package food

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/remyvnkhiemtruong/traixuan/app/apperr"
	"github.com/remyvnkhiemtruong/traixuan/app/database"
	"github.com/remyvnkhiemtruong/traixuan/app/models"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/auth"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/web"
	"github.com/remyvnkhiemtruong/traixuan/app/session"
)

type Handler struct {
	Repo  database.FoodStore
	Guard *auth.Guard
	Pages *web.Pages
}

func SetupFoodRoutes(app *fiber.App, h *Handler) {
	app.Get("/register-food", h.Guard.RequireAuthenticated, h.RegisterFoodPage)
	app.Post("/register-food", h.Guard.RequireAuthenticated, h.RegisterFoodAPI)
	app.Post("/delete-food/:id", h.Guard.RequireAuthenticated, h.DeleteFoodAPI)
}

func (h *Handler) RegisterFoodPage(c *fiber.Ctx) error {
	id := web.CurrentIdentity(c)

	items, err := h.Repo.ListFoodItemsByAccount(c.UserContext(), id.AccountID)
	if err != nil {
		return h.Pages.Internal(c, "/", "Đã có lỗi xảy ra", err)
	}

	return h.Pages.Render(c, "register-food", "Đăng ký món ăn - VVK Spring Fair", fiber.Map{
		"CurrentPage": "register-food",
		"FoodItems":   items,
	})
}

func (h *Handler) RegisterFoodAPI(c *fiber.Ctx) error {
	id := web.CurrentIdentity(c)

	name := strings.TrimSpace(c.FormValue("foodName"))
	rawPrice := strings.TrimSpace(c.FormValue("price"))
	if name == "" || rawPrice == "" {
		return h.Pages.Fail(c, "/register-food", apperr.Validation(msgMissingFields))
	}
	price, err := ParsePrice(rawPrice)
	if err != nil {
		return h.Pages.Fail(c, "/register-food", err)
	}

	item := &models.FoodItem{
		AccountID:   id.AccountID,
		Name:        name,
		Price:       price,
		Description: optional(c.FormValue("description")),
	}
	if err := h.Repo.CreateFoodItem(c.UserContext(), item); err != nil {
		return h.Pages.Fail(c, "/register-food", apperr.Persistence(err))
	}

	h.Pages.Log.Info("food item added", "class", id.Username, "food_id", item.ID, "price", price)
	return h.Pages.Redirect(c, "/register-food", session.Success("Đã thêm món ăn thành công!"))
}

// DeleteFoodAPI removes one of the caller's own items. Items of other
// classes are indistinguishable from missing ones.
func (h *Handler) DeleteFoodAPI(c *fiber.Ctx) error {
	id := web.CurrentIdentity(c)
	ctx := c.UserContext()

	foodID, ok := web.ParamID(c, "id")
	if !ok {
		return h.Pages.Fail(c, "/register-food", apperr.NotFound(msgNotFound))
	}

	item, err := h.Repo.GetFoodItem(ctx, foodID)
	if err != nil {
		return h.Pages.Fail(c, "/register-food", web.StoreError(err, msgNotFound))
	}
	if err := auth.AssertOwner(id, item.AccountID); err != nil {
		return h.Pages.Fail(c, "/register-food", apperr.NotFound(msgNotFound))
	}

	if err := h.Repo.DeleteFoodItem(ctx, item.ID); err != nil {
		return h.Pages.Fail(c, "/register-food", web.StoreError(err, msgNotFound))
	}
	return h.Pages.Redirect(c, "/register-food", session.Success("Đã xóa món ăn thành công"))
}
