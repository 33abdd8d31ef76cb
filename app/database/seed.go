package database

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/remyvnkhiemtruong/traixuan/app/models"
)

//go:embed roster.yaml
var defaultRoster []byte

const (
	DefaultClassPassword = "vvk2026"
	DefaultAdminPassword = "admin_vvk_secret"
)

type RosterEntry struct {
	Class   string `yaml:"class"`
	Teacher string `yaml:"teacher"`
}

type Roster struct {
	Classes []RosterEntry `yaml:"classes"`
}

// DefaultRoster returns the built-in list of classes.
func DefaultRoster() (*Roster, error) {
	return ParseRoster(defaultRoster)
}

// ParseRoster decodes a roster document. Class codes are normalized and must
// be unique and non-empty.
func ParseRoster(data []byte) (*Roster, error) {
	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	if len(r.Classes) == 0 {
		return nil, errors.New("parse roster: no classes")
	}

	seen := map[string]bool{}
	for i := range r.Classes {
		c := &r.Classes[i]
		c.Class = models.NormalizeClass(c.Class)
		c.Teacher = strings.TrimSpace(c.Teacher)
		switch {
		case c.Class == "":
			return nil, fmt.Errorf("parse roster: entry %d has no class", i+1)
		case c.Class == models.AdminUsername:
			return nil, fmt.Errorf("parse roster: class %s is reserved", c.Class)
		case seen[c.Class]:
			return nil, fmt.Errorf("parse roster: duplicate class %s", c.Class)
		}
		seen[c.Class] = true
	}
	return &r, nil
}

type SeedOptions struct {
	Roster        *Roster
	ClassPassword string
	AdminPassword string
	// Hash turns a plaintext password into the stored hash.
	Hash func(password string) (string, error)
}

// Seed wipes the repository and creates the administrator plus one account
// per roster class. Every class shares one hash.
func Seed(ctx context.Context, repo Repository, opts SeedOptions) (int, error) {
	if opts.Roster == nil {
		return 0, errors.New("seed: roster is required")
	}
	if opts.Hash == nil {
		return 0, errors.New("seed: hash function is required")
	}
	if opts.ClassPassword == "" {
		opts.ClassPassword = DefaultClassPassword
	}
	if opts.AdminPassword == "" {
		opts.AdminPassword = DefaultAdminPassword
	}

	classHash, err := opts.Hash(opts.ClassPassword)
	if err != nil {
		return 0, fmt.Errorf("seed: hash class password: %w", err)
	}
	adminHash, err := opts.Hash(opts.AdminPassword)
	if err != nil {
		return 0, fmt.Errorf("seed: hash admin password: %w", err)
	}

	if err := repo.Reset(ctx); err != nil {
		return 0, fmt.Errorf("seed: reset: %w", err)
	}

	admin := &models.Account{
		Username:    models.AdminUsername,
		Password:    adminHash,
		TeacherName: "Administrator",
		Role:        models.RoleAdmin,
	}
	if err := repo.CreateAccount(ctx, admin); err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	slog.Info("admin account created", "username", admin.Username)

	created := 1
	for _, c := range opts.Roster.Classes {
		acc := &models.Account{
			Username:    c.Class,
			Password:    classHash,
			TeacherName: c.Teacher,
			Role:        models.RoleUser,
		}
		if err := repo.CreateAccount(ctx, acc); err != nil {
			return created, fmt.Errorf("seed: %w", err)
		}
		slog.Debug("class account created", "username", acc.Username, "teacher", acc.TeacherName)
		created++
	}
	return created, nil
}
