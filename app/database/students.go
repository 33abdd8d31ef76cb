package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/remyvnkhiemtruong/traixuan/app/models"
)

const studentQuery = `SELECT s.id, s.account_id, a.username, s.registered_by, s.full_name, s.dob,
	s.cccd_number, s.phone_number, s.cccd_front, s.cccd_back, s.created_at, s.updated_at
	FROM students s
	JOIN class_accounts a ON a.id = s.account_id`

func scanStudent(row interface{ Scan(...any) error }) (*models.Student, error) {
	st := &models.Student{}
	var front, back sql.NullString
	err := row.Scan(&st.ID, &st.AccountID, &st.ClassName, &st.RegisteredBy, &st.FullName, &st.DateOfBirth,
		&st.CCCDNumber, &st.PhoneNumber, &front, &back, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return nil, err
	}
	st.CCCDFront = stringPtr(front)
	st.CCCDBack = stringPtr(back)
	return st, nil
}

func (s *PostgresStore) listStudents(ctx context.Context, query string, args ...any) ([]*models.Student, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	students := []*models.Student{}
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

func (s *PostgresStore) CreateStudent(ctx context.Context, st *models.Student) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	query := `INSERT INTO students (account_id, registered_by, full_name, dob, cccd_number, phone_number,
			  cccd_front, cccd_back, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
			  RETURNING id, created_at, updated_at`

	err := s.db.QueryRowContext(ctx, query, st.AccountID, st.RegisteredBy, st.FullName, st.DateOfBirth,
		st.CCCDNumber, st.PhoneNumber, nullString(st.CCCDFront), nullString(st.CCCDBack)).
		Scan(&st.ID, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	st, err := scanStudent(s.db.QueryRowContext(ctx, studentQuery+` WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get student %d: %w", id, err)
	}
	return st, nil
}

func (s *PostgresStore) ListStudentsByAccount(ctx context.Context, accountID int64) ([]*models.Student, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	return s.listStudents(ctx, studentQuery+` WHERE s.account_id = $1 ORDER BY s.created_at DESC, s.id DESC`, accountID)
}

func (s *PostgresStore) ListStudents(ctx context.Context) ([]*models.Student, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	return s.listStudents(ctx, studentQuery+` ORDER BY a.username ASC, s.full_name ASC`)
}

func (s *PostgresStore) DeleteStudent(ctx context.Context, id int64) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	result, err := s.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete student %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete student %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListImagePaths(ctx context.Context) ([]string, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT cccd_front FROM students WHERE cccd_front IS NOT NULL
		 UNION
		 SELECT cccd_back FROM students WHERE cccd_back IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("list image paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan image path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
