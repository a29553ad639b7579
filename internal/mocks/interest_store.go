package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/usersync/users-service/internal/domain"
	"github.com/usersync/users-service/internal/store"
)

// MockInterestStore is an in-memory store.InterestStore linked to a
// MockUserStore for user existence and delete cascades.
type MockInterestStore struct {
	// Err, when set, is returned by every method.
	Err error

	mu      sync.Mutex
	users   *MockUserStore
	catalog map[int64]domain.Interest
	held    map[int64]map[int64]struct{}
}

// NewMockInterestStore creates a store with the given catalog.
func NewMockInterestStore(users *MockUserStore, catalog ...domain.Interest) *MockInterestStore {
	s := &MockInterestStore{
		users:   users,
		catalog: make(map[int64]domain.Interest, len(catalog)),
		held:    make(map[int64]map[int64]struct{}),
	}
	for _, in := range catalog {
		s.catalog[in.ID] = in
	}
	if users != nil {
		users.mu.Lock()
		users.interests = s
		users.mu.Unlock()
	}
	return s
}

var _ store.InterestStore = (*MockInterestStore)(nil)

// Catalog implements store.InterestStore.
func (s *MockInterestStore) Catalog(ctx context.Context) ([]domain.Interest, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Interest, 0, len(s.catalog))
	for _, in := range s.catalog {
		out = append(out, in)
	}
	sortInterests(out)
	return out, nil
}

// ListForUser implements store.InterestStore.
func (s *MockInterestStore) ListForUser(ctx context.Context, userID int64) ([]domain.Interest, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Interest{}
	for id := range s.held[userID] {
		out = append(out, s.catalog[id])
	}
	sortInterests(out)
	return out, nil
}

// Add implements store.InterestStore.
func (s *MockInterestStore) Add(ctx context.Context, userID int64, interestIDs []int64) (int, []int64, error) {
	if s.Err != nil {
		return 0, nil, s.Err
	}
	if s.users != nil && !s.users.exists(userID) {
		return 0, nil, store.NewStoreError("interest", "add", "insert failed", store.ErrUserNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	missing := []int64{}
	added := 0
	for _, id := range interestIDs {
		if _, ok := s.catalog[id]; !ok {
			missing = append(missing, id)
			continue
		}
		if s.held[userID] == nil {
			s.held[userID] = make(map[int64]struct{})
		}
		if _, ok := s.held[userID][id]; ok {
			continue
		}
		s.held[userID][id] = struct{}{}
		added++
	}
	return added, missing, nil
}

// Remove implements store.InterestStore.
func (s *MockInterestStore) Remove(ctx context.Context, userID, interestID int64) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.held[userID][interestID]; !ok {
		return false, nil
	}
	delete(s.held[userID], interestID)
	return true, nil
}

// WithTx implements store.InterestStore.
func (s *MockInterestStore) WithTx(tx *sql.Tx) store.InterestStore {
	return s
}

func (s *MockInterestStore) dropUser(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.held, userID)
}

func sortInterests(in []domain.Interest) {
	sort.Slice(in, func(i, j int) bool { return in[i].ID < in[j].ID })
}
