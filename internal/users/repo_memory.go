package users

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo used in development and tests.
type MemoryRepo struct {
	mu      sync.RWMutex
	byID    map[string]*User
	byEmail map[string]string
	results map[string][]ResultRecord
	nextID  int64
}

// NewMemoryRepo creates an empty in-memory repo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:    make(map[string]*User),
		byEmail: make(map[string]string),
		results: make(map[string][]ResultRecord),
	}
}

func (r *MemoryRepo) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[u.Email]; exists {
		return ErrDuplicateEmail
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	clone := cloneUser(u)
	r.byID[u.ID] = clone
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *MemoryRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *MemoryRepo) GetByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *MemoryRepo) Upsert(_ context.Context, u *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if id, ok := r.byEmail[u.Email]; ok {
		existing := r.byID[id]
		existing.Username = u.Username
		existing.UpdatedAt = now
		return cloneUser(existing), nil
	}
	clone := cloneUser(u)
	clone.CreatedAt = now
	clone.UpdatedAt = now
	r.byID[clone.ID] = clone
	r.byEmail[clone.Email] = clone.ID
	return cloneUser(clone), nil
}

func (r *MemoryRepo) UpdateSkills(_ context.Context, userID string, skills []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return ErrNotFound
	}
	u.Skills = append([]string(nil), skills...)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryRepo) AppendResults(_ context.Context, userID string, records []ResultRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for _, rec := range records {
		r.nextID++
		rec.ID = r.nextID
		rec.UserID = userID
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		r.results[userID] = append(r.results[userID], rec)
	}
	return nil
}

func (r *MemoryRepo) ListResults(_ context.Context, userID string, limit int) ([]ResultRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.results[userID]
	if limit <= 0 || limit > len(stored) {
		limit = len(stored)
	}
	// Newest first, matching the Postgres ordering.
	out := make([]ResultRecord, 0, limit)
	for i := len(stored) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, stored[i])
	}
	return out, nil
}

func cloneUser(u *User) *User {
	clone := *u
	clone.Skills = append([]string(nil), u.Skills...)
	return &clone
}
