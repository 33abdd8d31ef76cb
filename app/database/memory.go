package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/remyvnkhiemtruong/traixuan/app/models"
)

// MemoryStore is a Repository kept in process memory. It backs STORE=memory
// and the handler tests; it is not shared between processes.
type MemoryStore struct {
	mu  sync.RWMutex
	now func() time.Time

	seq      int64
	accounts map[int64]*models.Account
	reps     map[int64]*models.Representative // by account id
	students map[int64]*models.Student
	food     map[int64]*models.FoodItem
}

func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{now: time.Now}
	m.reset()
	return m
}

func (m *MemoryStore) reset() {
	m.seq = 0
	m.accounts = map[int64]*models.Account{}
	m.reps = map[int64]*models.Representative{}
	m.students = map[int64]*models.Student{}
	m.food = map[int64]*models.FoodItem{}
}

func (m *MemoryStore) nextID() int64 {
	m.seq++
	return m.seq
}

func (m *MemoryStore) className(accountID int64) string {
	if a, ok := m.accounts[accountID]; ok {
		return a.Username
	}
	return ""
}

func (m *MemoryStore) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// accounts

func (m *MemoryStore) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	username = models.NormalizeClass(username)
	for _, a := range m.accounts {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *MemoryStore) ListClassAccounts(ctx context.Context) ([]*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	accounts := []*models.Account{}
	for _, a := range m.accounts {
		if a.Role == models.RoleUser {
			cp := *a
			accounts = append(accounts, &cp)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Username < accounts[j].Username })
	return accounts, nil
}

func (m *MemoryStore) CreateAccount(ctx context.Context, a *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a.Username = models.NormalizeClass(a.Username)
	if a.Role == "" {
		a.Role = models.RoleUser
	}
	for _, existing := range m.accounts {
		if existing.Username == a.Username {
			return fmt.Errorf("create account %s: %w", a.Username, ErrDuplicate)
		}
	}

	a.ID = m.nextID()
	a.CreatedAt = m.now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	m.accounts[a.ID] = &cp
	return nil
}

func (m *MemoryStore) UpdateAccount(ctx context.Context, id int64, upd AccountUpdate) error {
	if upd.TeacherName == nil && upd.PasswordHash == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[id]
	if !ok {
		return ErrNotFound
	}
	if upd.TeacherName != nil {
		a.TeacherName = *upd.TeacherName
	}
	if upd.PasswordHash != nil {
		a.Password = *upd.PasswordHash
	}
	a.UpdatedAt = m.now()
	return nil
}

// representatives

func (m *MemoryStore) copyRepresentative(r *models.Representative) *models.Representative {
	cp := *r
	cp.ClassName = m.className(r.AccountID)
	cp.Accounts = make([]*models.BankAccount, 0, len(r.Accounts))
	for _, acc := range r.Accounts {
		a := *acc
		cp.Accounts = append(cp.Accounts, &a)
	}
	return &cp
}

func (m *MemoryStore) GetRepresentative(ctx context.Context, accountID int64) (*models.Representative, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reps[accountID]
	if !ok {
		return nil, ErrNotFound
	}
	return m.copyRepresentative(r), nil
}

func (m *MemoryStore) ListRepresentatives(ctx context.Context) ([]*models.Representative, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	reps := []*models.Representative{}
	for _, r := range m.reps {
		reps = append(reps, m.copyRepresentative(r))
	}
	sort.Slice(reps, func(i, j int) bool { return reps[i].ClassName < reps[j].ClassName })
	return reps, nil
}

func (m *MemoryStore) UpsertRepresentative(ctx context.Context, accountID int64, name string, accounts []models.BankAccount) (*models.Representative, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[accountID]; !ok {
		return nil, fmt.Errorf("upsert representative: account %d: %w", accountID, ErrNotFound)
	}

	now := m.now()
	r, ok := m.reps[accountID]
	if !ok {
		r = &models.Representative{ID: m.nextID(), AccountID: accountID, CreatedAt: now}
		m.reps[accountID] = r
	}
	r.RepresentativeName = name
	r.UpdatedAt = now

	r.Accounts = make([]*models.BankAccount, 0, len(accounts))
	for _, acc := range accounts {
		a := acc
		a.ID = m.nextID()
		a.RepresentativeID = r.ID
		a.CreatedAt = now
		a.UpdatedAt = now
		r.Accounts = append(r.Accounts, &a)
	}
	return m.copyRepresentative(r), nil
}

func (m *MemoryStore) DeleteRepresentative(ctx context.Context, accountID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reps[accountID]; !ok {
		return ErrNotFound
	}
	delete(m.reps, accountID)
	return nil
}

// students

func (m *MemoryStore) copyStudent(s *models.Student) *models.Student {
	cp := *s
	cp.ClassName = m.className(s.AccountID)
	return &cp
}

func (m *MemoryStore) CreateStudent(ctx context.Context, s *models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[s.AccountID]; !ok {
		return fmt.Errorf("create student: account %d: %w", s.AccountID, ErrNotFound)
	}
	s.ID = m.nextID()
	s.CreatedAt = m.now()
	s.UpdatedAt = s.CreatedAt
	s.ClassName = m.className(s.AccountID)
	cp := *s
	m.students[s.ID] = &cp
	return nil
}

func (m *MemoryStore) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.students[id]
	if !ok {
		return nil, ErrNotFound
	}
	return m.copyStudent(s), nil
}

func (m *MemoryStore) ListStudentsByAccount(ctx context.Context, accountID int64) ([]*models.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	students := []*models.Student{}
	for _, s := range m.students {
		if s.AccountID == accountID {
			students = append(students, m.copyStudent(s))
		}
	}
	sort.Slice(students, func(i, j int) bool {
		return newer(students[i].CreatedAt, students[i].ID, students[j].CreatedAt, students[j].ID)
	})
	return students, nil
}

func (m *MemoryStore) ListStudents(ctx context.Context) ([]*models.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	students := []*models.Student{}
	for _, s := range m.students {
		students = append(students, m.copyStudent(s))
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].ClassName != students[j].ClassName {
			return students[i].ClassName < students[j].ClassName
		}
		return students[i].FullName < students[j].FullName
	})
	return students, nil
}

func (m *MemoryStore) DeleteStudent(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.students[id]; !ok {
		return ErrNotFound
	}
	delete(m.students, id)
	return nil
}

func (m *MemoryStore) ListImagePaths(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var paths []string
	for _, s := range m.students {
		paths = append(paths, s.ImagePaths()...)
	}
	return paths, nil
}

// food

func (m *MemoryStore) CreateFoodItem(ctx context.Context, f *models.FoodItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[f.AccountID]; !ok {
		return fmt.Errorf("create food item: account %d: %w", f.AccountID, ErrNotFound)
	}
	if f.Price < 0 {
		return fmt.Errorf("create food item: negative price %d", f.Price)
	}
	f.ID = m.nextID()
	f.CreatedAt = m.now()
	f.UpdatedAt = f.CreatedAt
	f.ClassName = m.className(f.AccountID)
	cp := *f
	m.food[f.ID] = &cp
	return nil
}

func (m *MemoryStore) GetFoodItem(ctx context.Context, id int64) (*models.FoodItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.food[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *f
	cp.ClassName = m.className(f.AccountID)
	return &cp, nil
}

func (m *MemoryStore) ListFoodItemsByAccount(ctx context.Context, accountID int64) ([]*models.FoodItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := []*models.FoodItem{}
	for _, f := range m.food {
		if f.AccountID == accountID {
			cp := *f
			cp.ClassName = m.className(f.AccountID)
			items = append(items, &cp)
		}
	}
	sort.Slice(items, func(i, j int) bool { return newer(items[i].CreatedAt, items[i].ID, items[j].CreatedAt, items[j].ID) })
	return items, nil
}

func (m *MemoryStore) DeleteFoodItem(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.food[id]; !ok {
		return ErrNotFound
	}
	delete(m.food, id)
	return nil
}

// newer orders by creation time descending, then id descending.
func newer(at time.Time, id int64, bt time.Time, bid int64) bool {
	if !at.Equal(bt) {
		return at.After(bt)
	}
	return id > bid
}
