package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/remyvnkhiemtruong/traixuan/app/apperr"
	"github.com/remyvnkhiemtruong/traixuan/app/models"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/web"
	"github.com/remyvnkhiemtruong/traixuan/app/session"
)

const (
	msgMissingFields    = "Vui lòng nhập đầy đủ thông tin"
	msgBadCredentials   = "Tài khoản hoặc mật khẩu không chính xác"
	msgWrongCurrent     = "Mật khẩu hiện tại không chính xác"
	msgPasswordTooShort = "Mật khẩu mới phải có ít nhất 6 ký tự"
	msgPasswordMismatch = "Xác nhận mật khẩu không khớp"

	minPasswordLength = 6
)

func (h *Handler) LoginAPI(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")

	if username == "" || password == "" {
		return h.Pages.Fail(c, "/login", apperr.Validation(msgMissingFields))
	}

	account, err := h.Credentials.Verify(c.UserContext(), username, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return h.Pages.Fail(c, "/login", apperr.Auth(msgBadCredentials))
		}
		return h.Pages.Fail(c, "/login", apperr.Persistence(err))
	}

	id := models.IdentityOf(account)
	sid, err := h.Sessions.Start(c, id, session.Success(fmt.Sprintf("Chào mừng %s!", account.Username)))
	if err != nil {
		return h.Pages.Fail(c, "/login", apperr.Persistence(fmt.Errorf("start session: %w", err)))
	}

	token, err := h.Tokens.GenerateJWT(id, sid)
	if err != nil {
		_ = h.Sessions.Destroy(c)
		return h.Pages.Fail(c, "/login", apperr.Persistence(fmt.Errorf("sign token: %w", err)))
	}

	c.Cookie(&fiber.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Expires:  time.Now().Add(h.Tokens.TTL()),
		HTTPOnly: true,
		Secure:   h.SecureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	h.Pages.Log.Info("login", "username", account.Username, "role", account.Role)
	return c.Redirect(homeFor(account.IsAdmin()))
}

func (h *Handler) LogoutAPI(c *fiber.Ctx) error {
	if err := h.Sessions.Destroy(c); err != nil {
		h.Pages.Log.Error("logout", "error", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     TokenCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})

	return c.Redirect("/login")
}

func (h *Handler) ChangePasswordAPI(c *fiber.Ctx) error {
	current := c.FormValue("currentPassword")
	next := c.FormValue("newPassword")
	confirm := c.FormValue("confirmPassword")

	switch {
	case current == "" || next == "" || confirm == "":
		return h.Pages.Fail(c, "/change-password", apperr.Validation(msgMissingFields))
	case len([]rune(next)) < minPasswordLength:
		return h.Pages.Fail(c, "/change-password", apperr.Validation(msgPasswordTooShort))
	case next != confirm:
		return h.Pages.Fail(c, "/change-password", apperr.Validation(msgPasswordMismatch))
	}

	id := web.CurrentIdentity(c)
	err := h.Credentials.ChangePassword(c.UserContext(), id.AccountID, current, next)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return h.Pages.Fail(c, "/change-password", apperr.Auth(msgWrongCurrent))
		}
		return h.Pages.Fail(c, "/change-password", apperr.Persistence(err))
	}

	h.Pages.Log.Info("password changed", "username", id.Username)
	return h.Sessions.Redirect(c, homeFor(id.IsAdmin()), session.Success("Đổi mật khẩu thành công!"))
}
