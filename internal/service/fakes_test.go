package service

import (
	"context"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"library-api/internal/domain"
	"library-api/pkg/utils"
)

var testHasher = utils.NewBcryptHasher(bcrypt.MinCost)

type fakeBookRepo struct {
	mu     sync.Mutex
	books  map[string]*domain.Book
	writes int

	findErr error
}

func newFakeBookRepo() *fakeBookRepo { return &fakeBookRepo{books: map[string]*domain.Book{}} }

func (r *fakeBookRepo) Save(_ context.Context, b *domain.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	cp := *b
	r.books[b.ID] = &cp
	return nil
}

func (r *fakeBookRepo) FindByID(_ context.Context, id string) (*domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	b, ok := r.books[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookRepo) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	delete(r.books, id)
	return nil
}

func (r *fakeBookRepo) FindAll(_ context.Context) ([]domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Book, 0, len(r.books))
	for _, b := range r.books {
		out = append(out, *b)
	}
	return out, nil
}

func (r *fakeBookRepo) AssignBorrower(_ context.Context, bookID string, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	b, ok := r.books[bookID]
	if !ok || b.BorrowerID != nil {
		return false, nil
	}
	uid := userID
	b.BorrowerID = &uid
	return true, nil
}

func (r *fakeBookRepo) ClearBorrower(_ context.Context, bookID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	if b, ok := r.books[bookID]; ok {
		b.BorrowerID = nil
	}
	return nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int64]*domain.User
	nextID int64

	saveErr error
}

func newFakeUserRepo() *fakeUserRepo { return &fakeUserRepo{users: map[int64]*domain.User{}} }

func (r *fakeUserRepo) add(u domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == 0 {
		r.nextID++
		u.ID = r.nextID
	}
	r.users[u.ID] = &u
	return &u
}

func (r *fakeUserRepo) Save(_ context.Context, u *domain.User) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == 0 {
		r.nextID++
		u.ID = r.nextID
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) DeleteByID(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) FindAll(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) AddRole(_ context.Context, userID int64, role *domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.Roles = append(u.Roles, *role)
	}
	return nil
}

type fakeRoleRepo struct {
	roles map[string]*domain.Role
}

func (r *fakeRoleRepo) Ensure(_ context.Context, name string) (*domain.Role, error) {
	if r.roles == nil {
		r.roles = map[string]*domain.Role{}
	}
	if role, ok := r.roles[name]; ok {
		return role, nil
	}
	role := &domain.Role{ID: int64(len(r.roles) + 1), Name: name}
	r.roles[name] = role
	return role, nil
}

type recordingEvictor struct{ forgotten []string }

func (e *recordingEvictor) Forget(_ context.Context, username string) {
	e.forgotten = append(e.forgotten, username)
}
