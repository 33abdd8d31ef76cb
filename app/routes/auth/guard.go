package auth

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/remyvnkhiemtruong/traixuan/app/apperr"
	"github.com/remyvnkhiemtruong/traixuan/app/models"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/web"
	"github.com/remyvnkhiemtruong/traixuan/app/session"
)

const (
	msgLoginRequired = "Vui lòng đăng nhập để tiếp tục"
	msgAdminOnly     = "Bạn không có quyền truy cập trang này"
)

// Guard decides who the caller is. A request is authenticated only when the
// identity token verifies and names the server session the request carries,
// so destroying the session revokes the token. Account and role always come
// from the server session; the token's claims are never trusted for them.
type Guard struct {
	tokens   *Tokens
	sessions *session.Manager
}

func NewGuard(tokens *Tokens, sessions *session.Manager) *Guard {
	return &Guard{tokens: tokens, sessions: sessions}
}

// Identify returns the caller's identity, or nil for an anonymous request.
func (g *Guard) Identify(c *fiber.Ctx) *models.Identity {
	tokenString := c.Cookies(TokenCookie)
	if tokenString == "" {
		return nil
	}

	claims, err := g.tokens.ValidateJWT(tokenString)
	if err != nil {
		return nil
	}

	sid, id := g.sessions.Identity(c)
	if id == nil || sid != claims.ID {
		return nil
	}
	if claims.Subject != strconv.FormatInt(id.AccountID, 10) {
		return nil
	}
	return id
}

// RequireAuthenticated lets any logged-in account through and stores its
// identity for the handlers.
func (g *Guard) RequireAuthenticated(c *fiber.Ctx) error {
	id := g.Identify(c)
	if id == nil {
		return g.sessions.Redirect(c, "/login", session.Error(msgLoginRequired))
	}
	web.SetIdentity(c, id)
	return c.Next()
}

// RequireAdmin sends anonymous callers to the login page and logged-in
// non-admins home.
func (g *Guard) RequireAdmin(c *fiber.Ctx) error {
	id := g.Identify(c)
	if id == nil {
		return g.sessions.Redirect(c, "/login", session.Error(msgLoginRequired))
	}
	if !id.IsAdmin() {
		return g.sessions.Redirect(c, "/", session.Error(msgAdminOnly))
	}
	web.SetIdentity(c, id)
	return c.Next()
}

// AssertOwner fails with a not-found error unless id owns the record. The
// self-service pages use it, so the administrator gets no shortcut there.
func AssertOwner(id *models.Identity, ownerAccountID int64) error {
	if id == nil || id.AccountID != ownerAccountID {
		return apperr.NotFound("Không tìm thấy dữ liệu")
	}
	return nil
}

// AssertOwnerOrAdmin is AssertOwner that also lets the administrator through.
// It never reveals that the record exists.
func AssertOwnerOrAdmin(id *models.Identity, ownerAccountID int64) error {
	if id.IsAdmin() {
		return nil
	}
	return AssertOwner(id, ownerAccountID)
}
