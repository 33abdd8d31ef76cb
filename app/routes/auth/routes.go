package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/remyvnkhiemtruong/traixuan/app/routes/web"
	"github.com/remyvnkhiemtruong/traixuan/app/session"
)

type Handler struct {
	Credentials  *Credentials
	Tokens       *Tokens
	Guard        *Guard
	Sessions     *session.Manager
	Pages        *web.Pages
	SecureCookie bool
}

func SetupAuthRoutes(app *fiber.App, h *Handler) {
	// Public routes
	app.Get("/login", h.ShowLoginPage)
	app.Post("/login", h.LoginAPI)
	app.Get("/logout", h.LogoutAPI)

	// Protected routes
	app.Get("/change-password", h.Guard.RequireAuthenticated, h.ShowChangePasswordPage)
	app.Post("/change-password", h.Guard.RequireAuthenticated, h.ChangePasswordAPI)
}

func (h *Handler) ShowLoginPage(c *fiber.Ctx) error {
	if id := h.Guard.Identify(c); id != nil {
		return c.Redirect(homeFor(id.IsAdmin()))
	}
	return h.Pages.Render(c, "login", "Đăng nhập - VVK Spring Fair", nil)
}

func (h *Handler) ShowChangePasswordPage(c *fiber.Ctx) error {
	return h.Pages.Render(c, "change-password", "Đổi mật khẩu - VVK Spring Fair", nil)
}

func homeFor(admin bool) string {
	if admin {
		return "/admin"
	}
	return "/"
}
