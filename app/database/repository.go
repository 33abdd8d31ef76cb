package database

import (
	"context"

	"github.com/remyvnkhiemtruong/traixuan/app/models"
)

// AccountUpdate changes only the fields that are non-nil. PasswordHash must
// already be hashed; the store never hashes.
type AccountUpdate struct {
	TeacherName  *string
	PasswordHash *string
}

type AccountStore interface {
	GetAccountByUsername(ctx context.Context, username string) (*models.Account, error)
	GetAccountByID(ctx context.Context, id int64) (*models.Account, error)
	// ListClassAccounts returns every non-admin account ordered by username.
	ListClassAccounts(ctx context.Context) ([]*models.Account, error)
	// CreateAccount inserts a with a.Password already hashed.
	CreateAccount(ctx context.Context, a *models.Account) error
	UpdateAccount(ctx context.Context, id int64, upd AccountUpdate) error
}

type RepresentativeStore interface {
	// GetRepresentative returns the class representative with its bank
	// accounts, or ErrNotFound.
	GetRepresentative(ctx context.Context, accountID int64) (*models.Representative, error)
	ListRepresentatives(ctx context.Context) ([]*models.Representative, error)
	// UpsertRepresentative creates the representative of accountID or renames
	// the existing one, and replaces all of its bank accounts with accounts,
	// atomically.
	UpsertRepresentative(ctx context.Context, accountID int64, name string, accounts []models.BankAccount) (*models.Representative, error)
	// DeleteRepresentative removes the representative and its bank accounts.
	DeleteRepresentative(ctx context.Context, accountID int64) error
}

type StudentStore interface {
	CreateStudent(ctx context.Context, s *models.Student) error
	GetStudent(ctx context.Context, id int64) (*models.Student, error)
	// ListStudentsByAccount returns the class's students, newest first.
	ListStudentsByAccount(ctx context.Context, accountID int64) ([]*models.Student, error)
	// ListStudents returns all students ordered by class then name.
	ListStudents(ctx context.Context) ([]*models.Student, error)
	DeleteStudent(ctx context.Context, id int64) error
	// ListImagePaths returns every image path referenced by a student.
	ListImagePaths(ctx context.Context) ([]string, error)
}

type FoodStore interface {
	CreateFoodItem(ctx context.Context, f *models.FoodItem) error
	GetFoodItem(ctx context.Context, id int64) (*models.FoodItem, error)
	// ListFoodItemsByAccount returns the class's menu, newest first.
	ListFoodItemsByAccount(ctx context.Context, accountID int64) ([]*models.FoodItem, error)
	DeleteFoodItem(ctx context.Context, id int64) error
}

// Repository is everything the application persists.
type Repository interface {
	AccountStore
	RepresentativeStore
	StudentStore
	FoodStore

	// Reset destroys all data. Seeding only.
	Reset(ctx context.Context) error
	Close() error
}

var (
	_ Repository = (*PostgresStore)(nil)
	_ Repository = (*MemoryStore)(nil)
)
