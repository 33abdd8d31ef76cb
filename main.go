package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/remyvnkhiemtruong/traixuan/app/config"
	"github.com/remyvnkhiemtruong/traixuan/app/database"
	"github.com/remyvnkhiemtruong/traixuan/app/logging"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/auth"
	"github.com/remyvnkhiemtruong/traixuan/app/server"
	"github.com/remyvnkhiemtruong/traixuan/app/services"
	"github.com/remyvnkhiemtruong/traixuan/app/session"
	"github.com/remyvnkhiemtruong/traixuan/app/storage"
)

func main() {
	cfg := config.Load("")
	log := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Set the application time zone
	loc := cfg.Location()
	time.Local = loc
	log.Info("application time zone set", "zone", loc.String())

	repo, err := openRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer repo.Close()

	sessionCfg := session.Config{TTL: cfg.Session.TTL, Secure: cfg.Session.CookieSecure}
	if cfg.Session.RedisURL != "" {
		redisStorage, err := session.NewRedisStorage(ctx, cfg.Session.RedisURL)
		if err != nil {
			return err
		}
		defer redisStorage.Close()
		sessionCfg.Storage = redisStorage
		log.Info("sessions stored in redis")
	}
	sessions := session.New(sessionCfg, log)

	images, err := openImageStore(ctx, cfg)
	if err != nil {
		return err
	}

	app, err := server.New(server.Deps{
		Repo:         repo,
		Images:       images,
		Sessions:     sessions,
		Tokens:       auth.NewTokens(cfg.Session.Secret, cfg.Session.TTL),
		Log:          log,
		Location:     loc,
		BcryptCost:   cfg.BcryptCost,
		MaxUpload:    cfg.Upload.MaxBytes,
		SecureCookie: cfg.Session.CookieSecure,
		AccessLog:    true,
	})
	if err != nil {
		return err
	}

	// Start background scheduler
	sweeper := &services.Sweeper{Index: repo, Images: images, Grace: cfg.SweepGrace, Log: log}
	schedulerDone := services.StartScheduler(ctx, sweeper, cfg.SweepInterval)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", cfg.HTTPAddr)
		serveErr <- app.Listen(cfg.HTTPAddr)
	}()

	select {
	case err := <-serveErr:
		stop()
		<-schedulerDone
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownErr := app.ShutdownWithTimeout(10 * time.Second)
	<-schedulerDone
	return shutdownErr
}

func openRepository(ctx context.Context, cfg config.Config, log *slog.Logger) (database.Repository, error) {
	switch cfg.Store {
	case "memory":
		repo := database.NewMemoryStore()
		roster, err := database.DefaultRoster()
		if err != nil {
			return nil, err
		}
		n, err := database.Seed(ctx, repo, database.SeedOptions{
			Roster: roster,
			Hash:   func(pw string) (string, error) { return auth.HashPassword(pw, cfg.BcryptCost) },
		})
		if err != nil {
			return nil, err
		}
		log.Warn("using in-memory store; data is lost on exit", "accounts", n)
		return repo, nil

	case "postgres", "":
		db, err := config.OpenDB(cfg.DB)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("database connected", "host", cfg.DB.Host, "name", cfg.DB.Name)
		return database.NewPostgresStore(db, cfg.DB.QueryTimeout), nil

	default:
		return nil, fmt.Errorf("unknown STORE %q", cfg.Store)
	}
}

func openImageStore(ctx context.Context, cfg config.Config) (storage.ImageStore, error) {
	switch cfg.Upload.ImageStore {
	case "s3":
		return storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		})
	case "disk", "":
		return storage.NewDiskStore(cfg.Upload.Dir)
	default:
		return nil, errors.New("IMAGE_STORE must be disk or s3")
	}
}
