package mocks

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"

	"github.com/usersync/users-service/internal/domain"
	"github.com/usersync/users-service/internal/store"
)

// MockUserStore is an in-memory store.UserStore. It is safe for concurrent
// use and enforces the same uniqueness rules as the users table, so races
// between callers behave as they do against PostgreSQL.
type MockUserStore struct {
	// Function fields override the in-memory behavior when set
	CreateFn          func(ctx context.Context, user *domain.User) error
	GetByExternalIDFn func(ctx context.Context, externalID string) (*domain.User, error)

	// Err, when set, is returned by every method.
	Err error

	mu          sync.Mutex
	users       map[int64]*domain.User
	nextID      int64
	createCalls int
	interests   *MockInterestStore
}

// NewMockUserStore creates an empty store.
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{users: make(map[int64]*domain.User)}
}

var _ store.UserStore = (*MockUserStore)(nil)

// Seed inserts users directly, assigning IDs to those without one.
func (m *MockUserStore) Seed(users ...*domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range users {
		if u.ID == 0 {
			m.nextID++
			u.ID = m.nextID
		} else if u.ID > m.nextID {
			m.nextID = u.ID
		}
		cp := *u
		m.users[u.ID] = &cp
	}
}

// CreateCalls returns how many times Create reached the in-memory store.
func (m *MockUserStore) CreateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCalls
}

// Len returns the number of stored users.
func (m *MockUserStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// Create implements store.UserStore.
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	if m.Err != nil {
		return m.Err
	}
	if err := user.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++

	if err := m.checkUnique(user, 0); err != nil {
		return err
	}
	m.nextID++
	user.ID = m.nextID
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

// checkUnique must be called with mu held.
func (m *MockUserStore) checkUnique(user *domain.User, selfID int64) error {
	for id, u := range m.users {
		if id == selfID {
			continue
		}
		switch {
		case selfID == 0 && u.ExternalID == user.ExternalID:
			return store.NewStoreError("user", "create", "insert failed", store.ErrExternalIDExists)
		case strings.EqualFold(u.Email, user.Email):
			return store.NewStoreError("user", "write", "unique violation", store.ErrEmailExists)
		case strings.EqualFold(u.Username, user.Username):
			return store.NewStoreError("user", "write", "unique violation", store.ErrUsernameExists)
		}
	}
	return nil
}

// GetByID implements store.UserStore.
func (m *MockUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return u.ID == id })
}

// GetByExternalID implements store.UserStore.
func (m *MockUserStore) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	if m.GetByExternalIDFn != nil {
		return m.GetByExternalIDFn(ctx, externalID)
	}
	return m.find(func(u *domain.User) bool { return u.ExternalID == externalID })
}

// GetByUsername implements store.UserStore.
func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return strings.EqualFold(u.Username, username) })
}

func (m *MockUserStore) find(match func(*domain.User) bool) (*domain.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// List implements store.UserStore.
func (m *MockUserStore) List(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return page(m.sorted(func(*domain.User) bool { return true }), offset, limit), nil
}

// Count implements store.UserStore.
func (m *MockUserStore) Count(ctx context.Context) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Len(), nil
}

// Search implements store.UserStore with the same matching rules as the
// SQL implementation.
func (m *MockUserStore) Search(ctx context.Context, query string, offset, limit int) ([]*domain.User, int, error) {
	if m.Err != nil {
		return nil, 0, m.Err
	}
	q := strings.ToLower(query)
	matches := m.sorted(func(u *domain.User) bool {
		return strings.Contains(strings.ToLower(u.Username), q) ||
			strings.Contains(strings.ToLower(u.FirstName), q) ||
			strings.Contains(strings.ToLower(u.LastName), q) ||
			strings.Contains(strings.ToLower(u.FirstName+" "+u.LastName), q)
	})
	return page(matches, offset, limit), len(matches), nil
}

func (m *MockUserStore) sorted(match func(*domain.User) bool) []*domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.User{}
	for _, u := range m.users {
		if match(u) {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func page(users []*domain.User, offset, limit int) []*domain.User {
	if offset >= len(users) {
		return []*domain.User{}
	}
	end := offset + limit
	if end > len(users) {
		end = len(users)
	}
	return users[offset:end]
}

// Update implements store.UserStore.
func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.Err != nil {
		return m.Err
	}
	if err := user.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.users[user.ID]
	if !ok {
		return store.ErrUserNotFound
	}
	if err := m.checkUnique(user, user.ID); err != nil {
		return err
	}
	cp := *user
	cp.ExternalID = current.ExternalID
	cp.CreatedAt = current.CreatedAt
	m.users[user.ID] = &cp
	return nil
}

// Delete implements store.UserStore and cascades to a linked MockInterestStore.
func (m *MockUserStore) Delete(ctx context.Context, id int64) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	_, ok := m.users[id]
	delete(m.users, id)
	interests := m.interests
	m.mu.Unlock()

	if !ok {
		return store.ErrUserNotFound
	}
	if interests != nil {
		interests.dropUser(id)
	}
	return nil
}

// WithTx implements store.UserStore; the in-memory store has no transactions.
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}

func (m *MockUserStore) exists(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[id]
	return ok
}
