// Package memory provides mutex-guarded in-memory implementations of the
// domain repositories for the service and middleware tests. Uniqueness
// invariants match the postgres implementation.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/KaiWedekind/Portus/internal/domain"
)

// Store bundles the in-memory repositories behind the same accessor surface
// as the postgres store.
type Store struct {
	users      *UserRepo
	activities *ActivityRepo
}

func New() *Store {
	return &Store{
		users:      NewUserRepo(),
		activities: NewActivityRepo(),
	}
}

func (s *Store) Users() domain.UserRepository          { return s.users }
func (s *Store) Activities() domain.ActivityRepository { return s.activities }

func (s *Store) Close() {}

// --- Users ---

type UserRepo struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]*domain.User
	order []uuid.UUID
}

func NewUserRepo() *UserRepo {
	return &UserRepo{byID: make(map[uuid.UUID]*domain.User)}
}

func (r *UserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Uniqueness is checked and the record inserted under one lock, the
	// in-memory equivalent of the database's unique indexes.
	for _, existing := range r.byID {
		if existing.Username == u.Username {
			return domain.NewValidation("username", "has already been taken")
		}
		if existing.Email == u.Email {
			return domain.NewValidation("email", "has already been taken")
		}
	}

	clone := *u
	r.byID[u.ID] = &clone
	r.order = append(r.order, u.ID)

	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	clone := *u
	return &clone, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}

	return nil, domain.ErrNotFound
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}

	return nil, domain.ErrNotFound
}

func (r *UserRepo) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[u.ID]; !ok {
		return domain.ErrNotFound
	}

	for id, existing := range r.byID {
		if id == u.ID {
			continue
		}
		if existing.Username == u.Username {
			return domain.NewValidation("username", "has already been taken")
		}
		if existing.Email == u.Email {
			return domain.NewValidation("email", "has already been taken")
		}
	}

	clone := *u
	r.byID[u.ID] = &clone

	return nil
}

func (r *UserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*domain.User, 0, len(r.order))
	for _, id := range r.order {
		if u, ok := r.byID[id]; ok {
			clone := *u
			users = append(users, &clone)
		}
	}

	return users, nil
}

func (r *UserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}

	delete(r.byID, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return nil
}

func (r *UserRepo) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.byID)), nil
}

// --- Activities ---

type ActivityRepo struct {
	mu      sync.RWMutex
	entries []*domain.ActivityEntry
}

func NewActivityRepo() *ActivityRepo {
	return &ActivityRepo{}
}

func (r *ActivityRepo) Record(_ context.Context, entry *domain.ActivityEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *entry
	r.entries = append(r.entries, &clone)

	return nil
}

func (r *ActivityRepo) ReassignOwner(_ context.Context, ownerID uuid.UUID, ownerName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.OwnerID == ownerID {
			e.OwnerID = uuid.Nil
			e.OwnerName = ownerName
		}
	}

	return nil
}

func (r *ActivityRepo) List(_ context.Context, limit, offset int) ([]*domain.ActivityEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Newest first, matching the postgres ORDER BY created_at DESC.
	sorted := make([]*domain.ActivityEntry, len(r.entries))
	copy(sorted, r.entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	if offset >= len(sorted) {
		return nil, nil
	}
	sorted = sorted[offset:]
	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}

	out := make([]*domain.ActivityEntry, len(sorted))
	for i, e := range sorted {
		clone := *e
		out[i] = &clone
	}

	return out, nil
}

func (r *ActivityRepo) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.entries)), nil
}
