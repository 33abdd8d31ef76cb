package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/remyvnkhiemtruong/traixuan/app/models"
)

const representativeQuery = `SELECT r.id, r.account_id, a.username, r.representative_name, r.created_at, r.updated_at
	FROM representatives r
	JOIN class_accounts a ON a.id = r.account_id`

const bankAccountColumns = `id, representative_id, bank_name, account_number, account_holder, is_main, created_at, updated_at`

func scanRepresentative(row interface{ Scan(...any) error }) (*models.Representative, error) {
	r := &models.Representative{}
	err := row.Scan(&r.ID, &r.AccountID, &r.ClassName, &r.RepresentativeName, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func scanBankAccounts(rows *sql.Rows) ([]*models.BankAccount, error) {
	defer rows.Close()

	var accounts []*models.BankAccount
	for rows.Next() {
		b := &models.BankAccount{}
		err := rows.Scan(&b.ID, &b.RepresentativeID, &b.BankName, &b.AccountNumber,
			&b.AccountHolder, &b.IsMain, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, b)
	}
	return accounts, rows.Err()
}

func (s *PostgresStore) GetRepresentative(ctx context.Context, accountID int64) (*models.Representative, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return getRepresentative(ctx, s.db, accountID)
}

func getRepresentative(ctx context.Context, db DBTX, accountID int64) (*models.Representative, error) {
	rep, err := scanRepresentative(db.QueryRowContext(ctx, representativeQuery+` WHERE r.account_id = $1`, accountID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get representative of account %d: %w", accountID, err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+bankAccountColumns+` FROM bank_accounts WHERE representative_id = $1 ORDER BY id ASC`, rep.ID)
	if err != nil {
		return nil, fmt.Errorf("list bank accounts of representative %d: %w", rep.ID, err)
	}
	rep.Accounts, err = scanBankAccounts(rows)
	if err != nil {
		return nil, fmt.Errorf("scan bank accounts: %w", err)
	}
	return rep, nil
}

func (s *PostgresStore) ListRepresentatives(ctx context.Context) ([]*models.Representative, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, representativeQuery+` ORDER BY a.username ASC`)
	if err != nil {
		return nil, fmt.Errorf("list representatives: %w", err)
	}

	reps := []*models.Representative{}
	byID := map[int64]*models.Representative{}
	for rows.Next() {
		rep, err := scanRepresentative(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan representative: %w", err)
		}
		reps = append(reps, rep)
		byID[rep.ID] = rep
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("list representatives: %w", err)
	}
	rows.Close()

	accRows, err := s.db.QueryContext(ctx,
		`SELECT `+bankAccountColumns+` FROM bank_accounts ORDER BY representative_id ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list bank accounts: %w", err)
	}
	accounts, err := scanBankAccounts(accRows)
	if err != nil {
		return nil, fmt.Errorf("scan bank accounts: %w", err)
	}
	for _, acc := range accounts {
		if rep, ok := byID[acc.RepresentativeID]; ok {
			rep.Accounts = append(rep.Accounts, acc)
		}
	}
	return reps, nil
}

// UpsertRepresentative runs the find-or-create and the bank account replace
// in one transaction, so a failure never leaves the class with zero accounts.
func (s *PostgresStore) UpsertRepresentative(ctx context.Context, accountID int64, name string, accounts []models.BankAccount) (*models.Representative, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	var rep *models.Representative
	err := WithTx(ctx, s.db, nil, func(ctx context.Context, tx DBTX) error {
		var repID int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO representatives (account_id, representative_name, created_at, updated_at)
			 VALUES ($1, $2, NOW(), NOW())
			 ON CONFLICT (account_id) DO UPDATE
			 SET representative_name = EXCLUDED.representative_name, updated_at = NOW()
			 RETURNING id`, accountID, name).Scan(&repID)
		if err != nil {
			return fmt.Errorf("upsert representative: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM bank_accounts WHERE representative_id = $1`, repID); err != nil {
			return fmt.Errorf("delete old bank accounts: %w", err)
		}

		for _, acc := range accounts {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO bank_accounts (representative_id, bank_name, account_number, account_holder, is_main, created_at, updated_at)
				 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())`,
				repID, acc.BankName, acc.AccountNumber, acc.AccountHolder, acc.IsMain)
			if err != nil {
				return fmt.Errorf("insert bank account: %w", err)
			}
		}

		rep, err = getRepresentative(ctx, tx, accountID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (s *PostgresStore) DeleteRepresentative(ctx context.Context, accountID int64) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	// bank_accounts go with the representative (ON DELETE CASCADE).
	result, err := s.db.ExecContext(ctx, `DELETE FROM representatives WHERE account_id = $1`, accountID)
	if err != nil {
		return fmt.Errorf("delete representative of account %d: %w", accountID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete representative of account %d: %w", accountID, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
