// Package web holds the helpers every page handler shares: the caller's
// identity, page rendering with the pending flash, and error-to-flash
// redirects.
package web

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/remyvnkhiemtruong/traixuan/app/apperr"
	"github.com/remyvnkhiemtruong/traixuan/app/database"
	"github.com/remyvnkhiemtruong/traixuan/app/models"
	"github.com/remyvnkhiemtruong/traixuan/app/session"
)

const identityKey = "identity"

func SetIdentity(c *fiber.Ctx, id *models.Identity) {
	c.Locals(identityKey, id)
}

// CurrentIdentity returns the identity stored by the access guard, or nil.
func CurrentIdentity(c *fiber.Ctx) *models.Identity {
	id, _ := c.Locals(identityKey).(*models.Identity)
	return id
}

// Pages renders templates and turns failures into flash redirects.
type Pages struct {
	Sessions *session.Manager
	Log      *slog.Logger
}

// Render draws view inside the main layout. data is extended with the
// caller's identity and the flash pending for this request.
func (p *Pages) Render(c *fiber.Ctx, view, title string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["Title"] = title
	if _, ok := data["CurrentPage"]; !ok {
		data["CurrentPage"] = ""
	}
	data["User"] = CurrentIdentity(c)
	data["Flash"] = p.Sessions.TakeFlash(c)
	return c.Render(view, data)
}

func (p *Pages) Redirect(c *fiber.Ctx, path string, flash session.Flash) error {
	return p.Sessions.Redirect(c, path, flash)
}

// Fail redirects to path with the user-facing message of err. Persistence
// and unclassified errors are logged with their cause.
func (p *Pages) Fail(c *fiber.Ctx, path string, err error) error {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindAuth, apperr.KindNotFound, apperr.KindUpload:
		p.Log.Debug("request rejected", "path", c.Path(), "error", err)
	default:
		p.Log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return p.Sessions.Redirect(c, path, session.Error(apperr.UserMessage(err)))
}

// Internal is Fail for persistence errors that carry a route-specific message.
func (p *Pages) Internal(c *fiber.Ctx, path, msg string, err error) error {
	p.Log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return p.Sessions.Redirect(c, path, session.Error(msg))
}

// ParamID parses a positive integer route parameter.
func ParamID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// StoreError maps a repository error onto the apperr taxonomy.
func StoreError(err error, notFound string) error {
	if errors.Is(err, database.ErrNotFound) {
		return apperr.NotFound(notFound)
	}
	return apperr.Persistence(err)
}

// FormValues returns every value posted for name, accepting both "name" and
// "name[]" keys in urlencoded and multipart bodies.
func FormValues(c *fiber.Ctx, name string) []string {
	keys := []string{name, name + "[]"}

	if form, err := c.MultipartForm(); err == nil {
		for _, k := range keys {
			if v := form.Value[k]; len(v) > 0 {
				return v
			}
		}
		return nil
	}

	args := c.Request().PostArgs()
	for _, k := range keys {
		raw := args.PeekMulti(k)
		if len(raw) == 0 {
			continue
		}
		values := make([]string, len(raw))
		for i, b := range raw {
			values[i] = string(b)
		}
		return values
	}
	return nil
}
