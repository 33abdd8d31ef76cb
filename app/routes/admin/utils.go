package admin

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/remyvnkhiemtruong/traixuan/app/database"
	"github.com/remyvnkhiemtruong/traixuan/app/models"
)

// ClassRow is one line of the admin overview.
type ClassRow struct {
	Account        *models.Account
	Representative *models.Representative
	Students       int
	FoodItems      int
}

// Overview is everything the admin dashboard shows.
type Overview struct {
	Rows            []ClassRow
	Representatives []*models.Representative
	Students        []*models.Student
	Registered      int
	StudentCount    int
}

// BuildOverview joins the class accounts with their representatives and
// student counts. Rows follow the order of classes.
func BuildOverview(classes []*models.Account, reps []*models.Representative, students []*models.Student) *Overview {
	byAccount := make(map[int64]*models.Representative, len(reps))
	for _, r := range reps {
		byAccount[r.AccountID] = r
	}
	counts := make(map[int64]int)
	for _, s := range students {
		counts[s.AccountID]++
	}

	o := &Overview{
		Rows:            make([]ClassRow, 0, len(classes)),
		Representatives: reps,
		Students:        students,
		StudentCount:    len(students),
	}
	for _, a := range classes {
		rep := byAccount[a.ID]
		if rep.Registered() {
			o.Registered++
		}
		o.Rows = append(o.Rows, ClassRow{Account: a, Representative: rep, Students: counts[a.ID]})
	}
	return o
}

// Class is one class with everything it registered.
type Class struct {
	Account        *models.Account
	Representative *models.Representative
	Students       []*models.Student
	FoodItems      []*models.FoodItem
}

// LoadClass fetches a class by its code, case-insensitively. It returns
// database.ErrNotFound for unknown codes and for the administrator account.
// Students come back sorted by name, food newest first.
func LoadClass(ctx context.Context, repo database.Repository, code string) (*Class, error) {
	acc, err := repo.GetAccountByUsername(ctx, models.NormalizeClass(code))
	if err != nil {
		return nil, err
	}
	if acc.IsAdmin() {
		return nil, database.ErrNotFound
	}

	rep, err := repo.GetRepresentative(ctx, acc.ID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("load representative of %s: %w", acc.Username, err)
	}

	students, err := repo.ListStudentsByAccount(ctx, acc.ID)
	if err != nil {
		return nil, fmt.Errorf("load students of %s: %w", acc.Username, err)
	}
	slices.SortStableFunc(students, func(a, b *models.Student) int {
		return strings.Compare(a.FullName, b.FullName)
	})

	food, err := repo.ListFoodItemsByAccount(ctx, acc.ID)
	if err != nil {
		return nil, fmt.Errorf("load food of %s: %w", acc.Username, err)
	}

	return &Class{Account: acc, Representative: rep, Students: students, FoodItems: food}, nil
}

// backToClass reports whether a Referer points at a class detail page.
func backToClass(referer string) bool {
	return strings.Contains(referer, "/admin/class/")
}
