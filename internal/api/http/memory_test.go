package http_test

import (
	"context"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/backoffice/internal/domain"
)

type memoryStore struct {
	mu       sync.Mutex
	users    map[int64]domain.User
	depts    map[int64]domain.Department
	nextUser int64
	nextDept int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: map[int64]domain.User{}, depts: map[int64]domain.Department{}}
}

type memoryUsers struct{ s *memoryStore }

func (r memoryUsers) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextUser++
	u.ID = r.s.nextUser
	r.s.users[u.ID] = *u
	return nil
}

func (r memoryUsers) Update(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r memoryUsers) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.users, id)
	return nil
}

func (r memoryUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (r memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memoryUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r memoryUsers) List(context.Context) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.User
	for id := int64(1); id <= r.s.nextUser; id++ {
		if u, ok := r.s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r memoryUsers) ListByDepartment(ctx context.Context, departmentID int64) ([]domain.User, error) {
	all, _ := r.List(ctx)
	var out []domain.User
	for _, u := range all {
		if u.DepartmentID != nil && *u.DepartmentID == departmentID {
			out = append(out, u)
		}
	}
	return out, nil
}

type memoryDepartments struct{ s *memoryStore }

func (r memoryDepartments) Create(_ context.Context, d *domain.Department) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextDept++
	d.ID = r.s.nextDept
	r.s.depts[d.ID] = *d
	return nil
}

func (r memoryDepartments) Update(_ context.Context, d *domain.Department) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.depts[d.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.s.depts[d.ID] = *d
	return nil
}

func (r memoryDepartments) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.depts[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.depts, id)
	return nil
}

func (r memoryDepartments) GetByID(_ context.Context, id int64) (*domain.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.depts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &d, nil
}

func (r memoryDepartments) List(context.Context) ([]domain.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Department
	for id := int64(1); id <= r.s.nextDept; id++ {
		if d, ok := r.s.depts[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}
