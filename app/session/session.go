// Package session owns the server-side login session and the one-shot flash
// messages shown after a redirect.
package session

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"

	"github.com/remyvnkhiemtruong/traixuan/app/models"
)

const (
	CookieName = "vvk_session"

	keySID         = "sid"
	keyAccountID   = "account_id"
	keyUsername    = "username"
	keyDisplayName = "display_name"
	keyRole        = "role"
	keySuccess     = "flash_success"
	keyError       = "flash_error"
)

// Flash holds at most one pending success and one pending error message.
type Flash struct {
	Success string
	Error   string
}

func (f Flash) Empty() bool {
	return f.Success == "" && f.Error == ""
}

func Success(msg string) Flash { return Flash{Success: msg} }

func Error(msg string) Flash { return Flash{Error: msg} }

type Config struct {
	TTL    time.Duration
	Secure bool
	// Storage defaults to fiber's in-memory storage.
	Storage fiber.Storage
}

type Manager struct {
	store *fibersession.Store
	log   *slog.Logger
}

func New(cfg Config, log *slog.Logger) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if log == nil {
		log = slog.Default()
	}
	store := fibersession.New(fibersession.Config{
		Expiration:     cfg.TTL,
		Storage:        cfg.Storage,
		KeyLookup:      "cookie:" + CookieName,
		CookieHTTPOnly: true,
		CookieSecure:   cfg.Secure,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
		KeyGenerator:   uuid.NewString,
	})
	return &Manager{store: store, log: log}
}

// Start replaces whatever session the client had with a fresh one bound to id
// and returns its new session id. flash is stored in the same write.
func (m *Manager) Start(c *fiber.Ctx, id *models.Identity, flash Flash) (string, error) {
	sess, err := m.store.Get(c)
	if err != nil {
		return "", err
	}
	if err := sess.Reset(); err != nil {
		return "", err
	}

	sid := uuid.NewString()
	sess.Set(keySID, sid)
	sess.Set(keyAccountID, id.AccountID)
	sess.Set(keyUsername, id.Username)
	sess.Set(keyDisplayName, id.DisplayName)
	sess.Set(keyRole, string(id.Role))
	setFlash(sess, flash)
	if err := sess.Save(); err != nil {
		return "", err
	}
	return sid, nil
}

// Identity returns the session id and the identity bound at login. sid is ""
// when the request carries no logged-in session.
func (m *Manager) Identity(c *fiber.Ctx) (string, *models.Identity) {
	sess, err := m.store.Get(c)
	if err != nil {
		m.log.Warn("load session", "error", err)
		return "", nil
	}
	sid, _ := sess.Get(keySID).(string)
	accountID, _ := sess.Get(keyAccountID).(int64)
	role, _ := sess.Get(keyRole).(string)
	if sid == "" || accountID == 0 || !models.Role(role).Valid() {
		return "", nil
	}

	id := &models.Identity{AccountID: accountID, Role: models.Role(role)}
	id.Username, _ = sess.Get(keyUsername).(string)
	id.DisplayName, _ = sess.Get(keyDisplayName).(string)
	return sid, id
}

func (m *Manager) Destroy(c *fiber.Ctx) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}

// Redirect stores flash for the next page and redirects to path. A session
// write failure only loses the message.
func (m *Manager) Redirect(c *fiber.Ctx, path string, flash Flash) error {
	if !flash.Empty() {
		if err := m.saveFlash(c, flash); err != nil {
			m.log.Error("save flash", "error", err, "path", c.Path())
		}
	}
	return c.Redirect(path)
}

func (m *Manager) saveFlash(c *fiber.Ctx, flash Flash) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return err
	}
	setFlash(sess, flash)
	return sess.Save()
}

// TakeFlash returns the pending messages and clears them.
func (m *Manager) TakeFlash(c *fiber.Ctx) Flash {
	sess, err := m.store.Get(c)
	if err != nil {
		m.log.Warn("load session", "error", err)
		return Flash{}
	}

	var f Flash
	f.Success, _ = sess.Get(keySuccess).(string)
	f.Error, _ = sess.Get(keyError).(string)
	if f.Empty() {
		return f
	}

	sess.Delete(keySuccess)
	sess.Delete(keyError)
	if err := sess.Save(); err != nil {
		m.log.Error("clear flash", "error", err)
	}
	return f
}

func setFlash(sess *fibersession.Session, flash Flash) {
	if flash.Success != "" {
		sess.Set(keySuccess, flash.Success)
	}
	if flash.Error != "" {
		sess.Set(keyError, flash.Error)
	}
}
