// add_user creates one class account, or with --reset sets a new password on
// an existing one.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/remyvnkhiemtruong/traixuan/app/config"
	"github.com/remyvnkhiemtruong/traixuan/app/database"
	"github.com/remyvnkhiemtruong/traixuan/app/models"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/auth"
)

type request struct {
	Username string
	Teacher  string
	Password string
	Reset    bool
}

// apply creates or updates the account and reports what it did.
func apply(ctx context.Context, accounts database.AccountStore, req request, hash func(string) (string, error)) (string, error) {
	username := models.NormalizeClass(req.Username)
	switch {
	case username == "":
		return "", errors.New("--username is required")
	case len(req.Password) < 6:
		return "", errors.New("--password must have at least 6 characters")
	case username == models.AdminUsername && !req.Reset:
		return "", errors.New("the ADMIN account is created by seed")
	}

	hashed, err := hash(req.Password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	if req.Reset {
		acc, err := accounts.GetAccountByUsername(ctx, username)
		if err != nil {
			return "", fmt.Errorf("find %s: %w", username, err)
		}
		upd := database.AccountUpdate{PasswordHash: &hashed}
		if req.Teacher != "" {
			upd.TeacherName = &req.Teacher
		}
		if err := accounts.UpdateAccount(ctx, acc.ID, upd); err != nil {
			return "", err
		}
		return fmt.Sprintf("password reset for %s", username), nil
	}

	acc := &models.Account{
		Username:    username,
		Password:    hashed,
		TeacherName: req.Teacher,
		Role:        models.RoleUser,
	}
	if err := accounts.CreateAccount(ctx, acc); err != nil {
		return "", err
	}
	return fmt.Sprintf("account created: %s (%s)", acc.Username, acc.TeacherName), nil
}

func main() {
	var req request
	var envFile string

	flagSet := pflag.NewFlagSet("add_user", pflag.ExitOnError)
	flagSet.StringVar(&req.Username, "username", "", "class code, e.g. 10A1")
	flagSet.StringVar(&req.Teacher, "teacher", "", "homeroom teacher name")
	flagSet.StringVar(&req.Password, "password", "", "initial password")
	flagSet.BoolVar(&req.Reset, "reset", false, "change the password of an existing account")
	flagSet.StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	_ = flagSet.Parse(os.Args[1:])

	cfg := config.Load(envFile)

	// Initialize database connection
	db, err := config.OpenDB(cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := database.NewPostgresStore(db, cfg.DB.QueryTimeout)
	msg, err := apply(context.Background(), repo, req, func(pw string) (string, error) {
		return auth.HashPassword(pw, cfg.BcryptCost)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		db.Close()
		os.Exit(1)
	}
	fmt.Println(msg)
}
