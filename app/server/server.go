// Package server assembles the fiber application from its route packages.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/remyvnkhiemtruong/traixuan/app/database"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/admin"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/auth"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/dashboard"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/exports"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/food"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/representatives"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/students"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/web"
	"github.com/remyvnkhiemtruong/traixuan/app/session"
	"github.com/remyvnkhiemtruong/traixuan/app/static"
	"github.com/remyvnkhiemtruong/traixuan/app/storage"
)

type Deps struct {
	Repo     database.Repository
	Images   storage.ImageStore
	Sessions *session.Manager
	Tokens   *auth.Tokens
	Log      *slog.Logger
	Location *time.Location

	BcryptCost   int
	MaxUpload    int64
	SecureCookie bool
	// AccessLog enables fiber's request logger.
	AccessLog bool
	Now       func() time.Time
}

// New wires every route onto a fresh fiber app.
func New(d Deps) (*fiber.App, error) {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Location == nil {
		d.Location = time.Local
	}

	credentials, err := auth.NewCredentials(d.Repo, d.BcryptCost)
	if err != nil {
		return nil, err
	}
	guard := auth.NewGuard(d.Tokens, d.Sessions)
	pages := &web.Pages{Sessions: d.Sessions, Log: d.Log}

	app := fiber.New(fiber.Config{
		AppName: "VVK Spring Fair",
		// Form values and params are copied out of the request buffer, so
		// stores may keep them past the request.
		Immutable:             true,
		Views:                 newEngine(d.Location),
		ViewsLayout:           "layouts/main",
		ErrorHandler:          errorHandler(d.Log),
		BodyLimit:             bodyLimit(d.MaxUpload),
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	if d.AccessLog {
		app.Use(logger.New())
	}

	// Static files
	app.Use("/static", filesystem.New(filesystem.Config{Root: http.FS(static.FS)}))
	serveUploads(app, guard, d.Images)

	// Routes
	auth.SetupAuthRoutes(app, &auth.Handler{
		Credentials:  credentials,
		Tokens:       d.Tokens,
		Guard:        guard,
		Sessions:     d.Sessions,
		Pages:        pages,
		SecureCookie: d.SecureCookie,
	})
	dashboard.SetupDashboardRoutes(app, &dashboard.Handler{Repo: d.Repo, Guard: guard, Pages: pages})
	representatives.SetupRepresentativesRoutes(app, &representatives.Handler{Repo: d.Repo, Guard: guard, Pages: pages})
	students.SetupStudentsRoutes(app, &students.Handler{
		Repo:     d.Repo,
		Images:   d.Images,
		Guard:    guard,
		Pages:    pages,
		MaxBytes: d.MaxUpload,
		Location: d.Location,
		Now:      d.Now,
	})
	food.SetupFoodRoutes(app, &food.Handler{Repo: d.Repo, Guard: guard, Pages: pages})
	exports.SetupExportRoutes(app, &exports.Handler{
		Repo:     d.Repo,
		Guard:    guard,
		Pages:    pages,
		Location: d.Location,
		Now:      d.Now,
	})
	admin.SetupAdminRoutes(app, &admin.Handler{Repo: d.Repo, Images: d.Images, Guard: guard, Pages: pages})

	// 404 for everything else
	app.Use(func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})

	return app, nil
}

// bodyLimit leaves room for two full-size images plus the text fields.
func bodyLimit(maxUpload int64) int {
	if maxUpload <= 0 {
		return fiber.DefaultBodyLimit
	}
	return int(2*maxUpload + 1<<20)
}

type dirStore interface {
	Dir() string
}

type presigner interface {
	PresignGet(ctx context.Context, publicPath string) (string, error)
}

// serveUploads exposes stored ID-card images to logged-in accounts only.
func serveUploads(app *fiber.App, guard *auth.Guard, images storage.ImageStore) {
	uploads := app.Group("/uploads", guard.RequireAuthenticated)

	switch s := images.(type) {
	case dirStore:
		uploads.Static("/", s.Dir(), fiber.Static{ByteRange: true})
	case presigner:
		uploads.Get("/:name", func(c *fiber.Ctx) error {
			url, err := s.PresignGet(c.UserContext(), storage.PublicPrefix+c.Params("name"))
			if err != nil {
				return fiber.ErrNotFound
			}
			return c.Redirect(url, fiber.StatusFound)
		})
	}
}

// errorHandler renders the 404 and 500 pages.
func errorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		data := fiber.Map{
			"User":        web.CurrentIdentity(c),
			"CurrentPage": "",
			"ErrorCode":   code,
		}
		if code == fiber.StatusNotFound {
			data["Title"] = "Không tìm thấy trang - VVK Spring Fair"
			data["ErrorTitle"] = "Không tìm thấy trang"
			data["ErrorMessage"] = "Trang bạn tìm kiếm không tồn tại"
		} else {
			log.Error("unhandled error", "method", c.Method(), "path", c.Path(), "status", code, "error", err)
			if code < 500 {
				data["ErrorTitle"] = http.StatusText(code)
				data["ErrorMessage"] = fe.Message
			} else {
				data["ErrorTitle"] = "Lỗi máy chủ"
				data["ErrorMessage"] = "Đã có lỗi xảy ra, vui lòng thử lại sau"
			}
			data["Title"] = fmt.Sprintf("%v - VVK Spring Fair", data["ErrorTitle"])
		}

		if rerr := c.Status(code).Render("error", data); rerr != nil {
			log.Error("render error page", "error", rerr)
			return c.Status(code).SendString(fmt.Sprint(data["ErrorTitle"]))
		}
		return nil
	}
}
