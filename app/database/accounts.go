package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/remyvnkhiemtruong/traixuan/app/models"
)

const accountColumns = `id, username, password, teacher_name, role, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (*models.Account, error) {
	a := &models.Account{}
	var role string
	if err := row.Scan(&a.ID, &a.Username, &a.Password, &a.TeacherName, &role, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Role = models.Role(role)
	return a, nil
}

func (s *PostgresStore) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	query := `SELECT ` + accountColumns + ` FROM class_accounts WHERE username = $1`
	a, err := scanAccount(s.db.QueryRowContext(ctx, query, models.NormalizeClass(username)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account %q: %w", username, err)
	}
	return a, nil
}

func (s *PostgresStore) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	query := `SELECT ` + accountColumns + ` FROM class_accounts WHERE id = $1`
	a, err := scanAccount(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account %d: %w", id, err)
	}
	return a, nil
}

func (s *PostgresStore) ListClassAccounts(ctx context.Context) ([]*models.Account, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	query := `SELECT ` + accountColumns + ` FROM class_accounts WHERE role = $1 ORDER BY username ASC`
	rows, err := s.db.QueryContext(ctx, query, string(models.RoleUser))
	if err != nil {
		return nil, fmt.Errorf("list class accounts: %w", err)
	}
	defer rows.Close()

	accounts := []*models.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan class account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (s *PostgresStore) CreateAccount(ctx context.Context, a *models.Account) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	a.Username = models.NormalizeClass(a.Username)
	if a.Role == "" {
		a.Role = models.RoleUser
	}

	query := `INSERT INTO class_accounts (username, password, teacher_name, role, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, NOW(), NOW())
			  RETURNING id, created_at, updated_at`

	err := s.db.QueryRowContext(ctx, query, a.Username, a.Password, a.TeacherName, string(a.Role)).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create account %s: %w", a.Username, ErrDuplicate)
		}
		return fmt.Errorf("create account %s: %w", a.Username, err)
	}
	return nil
}

func (s *PostgresStore) UpdateAccount(ctx context.Context, id int64, upd AccountUpdate) error {
	sets := []string{}
	args := []any{}
	if upd.TeacherName != nil {
		args = append(args, *upd.TeacherName)
		sets = append(sets, fmt.Sprintf("teacher_name = $%d", len(args)))
	}
	if upd.PasswordHash != nil {
		args = append(args, *upd.PasswordHash)
		sets = append(sets, fmt.Sprintf("password = $%d", len(args)))
	}
	if len(sets) == 0 {
		return nil
	}

	ctx, cancel := s.ctx(ctx)
	defer cancel()

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE class_accounts SET %s, updated_at = NOW() WHERE id = $%d`,
		strings.Join(sets, ", "), len(args))

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update account %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
