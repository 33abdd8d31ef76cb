package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/remyvnkhiemtruong/traixuan/app/database"
	"github.com/remyvnkhiemtruong/traixuan/app/models"
)

// ErrInvalidCredentials covers both an unknown identifier and a wrong
// password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Credentials checks identifier/password pairs against stored bcrypt hashes.
type Credentials struct {
	accounts  database.AccountStore
	cost      int
	dummyHash []byte
}

func NewCredentials(accounts database.AccountStore, cost int) (*Credentials, error) {
	dummy, err := bcrypt.GenerateFromPassword([]byte("vvk-dummy-password"), normalizeCost(cost))
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &Credentials{accounts: accounts, cost: normalizeCost(cost), dummyHash: dummy}, nil
}

func normalizeCost(cost int) int {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}

// Verify returns the account when password matches. An unknown identifier
// still pays for one bcrypt comparison.
func (cr *Credentials) Verify(ctx context.Context, identifier, password string) (*models.Account, error) {
	identifier = models.NormalizeClass(identifier)
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	account, err := cr.accounts.GetAccountByUsername(ctx, identifier)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(cr.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPasswordHash(password, account.Password) {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

// ChangePassword verifies current and stores the hash of next.
func (cr *Credentials) ChangePassword(ctx context.Context, accountID int64, current, next string) error {
	account, err := cr.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		return err
	}
	if !CheckPasswordHash(current, account.Password) {
		return ErrInvalidCredentials
	}

	hash, err := HashPassword(next, cr.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return cr.accounts.UpdateAccount(ctx, accountID, database.AccountUpdate{PasswordHash: &hash})
}
