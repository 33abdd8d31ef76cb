package representatives

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/remyvnkhiemtruong/traixuan/app/database"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/auth"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/web"
	"github.com/remyvnkhiemtruong/traixuan/app/session"
)

type Handler struct {
	Repo  database.RepresentativeStore
	Guard *auth.Guard
	Pages *web.Pages
}

func SetupRepresentativesRoutes(app *fiber.App, h *Handler) {
	app.Get("/register-rep", h.Guard.RequireAuthenticated, h.RegisterRepPage)
	app.Post("/register-rep", h.Guard.RequireAuthenticated, h.RegisterRepAPI)
}

// RegisterRepPage shows the form pre-filled with the class's current
// representative, if any.
func (h *Handler) RegisterRepPage(c *fiber.Ctx) error {
	id := web.CurrentIdentity(c)

	rep, err := h.Repo.GetRepresentative(c.UserContext(), id.AccountID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return h.Pages.Internal(c, "/", "Đã có lỗi xảy ra", err)
	}

	return h.Pages.Render(c, "register-rep", "Đăng ký ngân hàng - VVK Spring Fair", fiber.Map{
		"CurrentPage":    "register-rep",
		"Representative": rep,
	})
}

func (h *Handler) RegisterRepAPI(c *fiber.Ctx) error {
	id := web.CurrentIdentity(c)

	sub, err := ParseSubmission(
		c.FormValue("representativeName"),
		web.FormValues(c, "bankNames"),
		web.FormValues(c, "accountNumbers"),
		web.FormValues(c, "accountHolders"),
		c.FormValue("isMainAccount"),
	)
	if err != nil {
		return h.Pages.Fail(c, "/register-rep", err)
	}

	rep, err := h.Repo.UpsertRepresentative(c.UserContext(), id.AccountID, sub.Name, sub.Accounts)
	if err != nil {
		return h.Pages.Fail(c, "/register-rep", web.StoreError(err, ""))
	}

	h.Pages.Log.Info("representative registered", "class", id.Username, "accounts", len(rep.Accounts))
	return h.Pages.Redirect(c, "/", session.Success("Đăng ký thông tin ngân hàng thành công!"))
}
