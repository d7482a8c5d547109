// Package authtest provides an in-memory auth.UserStore for tests.
package authtest

import (
	"context"
	"strings"
	"sync"

	"GHXPortal/internal/auth"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps users in a map. Err, when set, is returned by every call.
type MemoryStore struct {
	mu      sync.Mutex
	users   map[primitive.ObjectID]*auth.User
	Err     error
	Creates int
	Updates int
}

func NewMemoryStore(users ...*auth.User) *MemoryStore {
	s := &MemoryStore{users: make(map[primitive.ObjectID]*auth.User)}
	for _, u := range users {
		s.put(u)
	}
	return s
}

func (s *MemoryStore) put(u *auth.User) {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	cp := *u
	s.users[u.ID] = &cp
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) FindByID(_ context.Context, id primitive.ObjectID) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) CreateUser(_ context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return auth.ErrDuplicateEmail
		}
	}
	s.Creates++
	s.put(user)
	return nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Updates++
	s.put(user)
	return nil
}

func (s *MemoryStore) ListUsers(_ context.Context, filter auth.UserFilter) ([]*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []*auth.User
	for _, u := range s.users {
		if matches(u, filter) {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) FindActiveByRoles(ctx context.Context, roles []auth.Role) ([]*auth.User, error) {
	active := true
	var out []*auth.User
	for _, r := range roles {
		users, err := s.ListUsers(ctx, auth.UserFilter{Role: r, Active: &active})
		if err != nil {
			return nil, err
		}
		out = append(out, users...)
	}
	return out, nil
}

func (s *MemoryStore) CountUsers(ctx context.Context, filter auth.UserFilter) (int64, error) {
	users, err := s.ListUsers(ctx, filter)
	return int64(len(users)), err
}

// Len is the number of stored users.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func matches(u *auth.User, f auth.UserFilter) bool {
	if f.Role != "" && u.Role != f.Role {
		return false
	}
	if f.Active != nil && u.IsActive != *f.Active {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		return strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(strings.ToLower(u.Email), q)
	}
	return true
}
