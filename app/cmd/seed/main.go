// seed wipes the database and recreates the administrator and one account
// per class of the roster.
//
//	go run ./app/cmd/seed --yes
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/remyvnkhiemtruong/traixuan/app/config"
	"github.com/remyvnkhiemtruong/traixuan/app/database"
	"github.com/remyvnkhiemtruong/traixuan/app/logging"
	"github.com/remyvnkhiemtruong/traixuan/app/routes/auth"
)

type options struct {
	yes           bool
	rosterFile    string
	classPassword string
	adminPassword string
	envFile       string
}

var errNotConfirmed = errors.New("refusing to reset the database without --yes")

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	var opts options
	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.BoolVar(&opts.yes, "yes", false, "confirm that every table will be emptied")
	flagSet.StringVar(&opts.rosterFile, "roster", "", "roster YAML file (default: built-in roster)")
	flagSet.StringVar(&opts.classPassword, "class-password", database.DefaultClassPassword, "password of every class account")
	flagSet.StringVar(&opts.adminPassword, "admin-password", database.DefaultAdminPassword, "password of the ADMIN account")
	flagSet.StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	if flagSet.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}
	if !opts.yes {
		return nil, errNotConfirmed
	}
	return &opts, nil
}

func loadRoster(path string) (*database.Roster, error) {
	if path == "" {
		return database.DefaultRoster()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	return database.ParseRoster(data)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	cfg := config.Load(opts.envFile)
	log := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	roster, err := loadRoster(opts.rosterFile)
	if err != nil {
		return err
	}

	db, err := config.OpenDB(cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	repo := database.NewPostgresStore(db, cfg.DB.QueryTimeout)
	n, err := database.Seed(ctx, repo, database.SeedOptions{
		Roster:        roster,
		ClassPassword: opts.classPassword,
		AdminPassword: opts.adminPassword,
		Hash:          func(pw string) (string, error) { return auth.HashPassword(pw, cfg.BcryptCost) },
	})
	if err != nil {
		return err
	}

	log.Info("seed completed", "accounts", n, "classes", len(roster.Classes))
	return nil
}
