package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/remyvnkhiemtruong/traixuan/app/models"
)

const foodQuery = `SELECT f.id, f.account_id, a.username, f.name, f.price, f.description, f.created_at, f.updated_at
	FROM food_items f
	JOIN class_accounts a ON a.id = f.account_id`

func scanFoodItem(row interface{ Scan(...any) error }) (*models.FoodItem, error) {
	f := &models.FoodItem{}
	var desc sql.NullString
	err := row.Scan(&f.ID, &f.AccountID, &f.ClassName, &f.Name, &f.Price, &desc, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	f.Description = stringPtr(desc)
	return f, nil
}

func (s *PostgresStore) CreateFoodItem(ctx context.Context, f *models.FoodItem) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	query := `INSERT INTO food_items (account_id, name, price, description, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, NOW(), NOW())
			  RETURNING id, created_at, updated_at`

	err := s.db.QueryRowContext(ctx, query, f.AccountID, f.Name, f.Price, nullString(f.Description)).
		Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create food item: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetFoodItem(ctx context.Context, id int64) (*models.FoodItem, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	f, err := scanFoodItem(s.db.QueryRowContext(ctx, foodQuery+` WHERE f.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get food item %d: %w", id, err)
	}
	return f, nil
}

func (s *PostgresStore) ListFoodItemsByAccount(ctx context.Context, accountID int64) ([]*models.FoodItem, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, foodQuery+` WHERE f.account_id = $1 ORDER BY f.created_at DESC, f.id DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list food items: %w", err)
	}
	defer rows.Close()

	items := []*models.FoodItem{}
	for rows.Next() {
		f, err := scanFoodItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan food item: %w", err)
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

func (s *PostgresStore) DeleteFoodItem(ctx context.Context, id int64) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	result, err := s.db.ExecContext(ctx, `DELETE FROM food_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete food item %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete food item %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
