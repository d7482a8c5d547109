// Package programtest provides an in-memory program.Store for tests.
package programtest

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"GHXPortal/internal/program"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore mirrors the soft-delete semantics of the mongo repository.
// Err, when set, is returned by every call.
type MemoryStore struct {
	mu       sync.Mutex
	programs map[primitive.ObjectID]*program.Program
	Err      error
	Writes   int
}

func NewMemoryStore(programs ...*program.Program) *MemoryStore {
	s := &MemoryStore{programs: make(map[primitive.ObjectID]*program.Program)}
	for _, p := range programs {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		cp := *p
		s.programs[p.ID] = &cp
	}
	return s
}

func (s *MemoryStore) Create(_ context.Context, p *program.Program) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	cp := *p
	s.programs[p.ID] = &cp
	s.Writes++
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id primitive.ObjectID) (*program.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.programs[id]
	if !ok || p.IsDeleted {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) Find(_ context.Context, f program.Filter) ([]*program.Program, error) {
	return s.filter(func(p *program.Program) bool {
		if f.Category != "" && p.Category != f.Category {
			return false
		}
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, p.Status) {
			return false
		}
		if f.Query != "" {
			q := strings.ToLower(f.Query)
			return strings.Contains(strings.ToLower(p.Title), q) ||
				strings.Contains(strings.ToLower(p.ShortDescription), q) ||
				strings.Contains(strings.ToLower(p.Description), q)
		}
		return true
	})
}

func (s *MemoryStore) Update(_ context.Context, p *program.Program) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	existing, ok := s.programs[p.ID]
	if !ok || existing.IsDeleted {
		return false, nil
	}
	cp := *p
	s.programs[p.ID] = &cp
	s.Writes++
	return true, nil
}

func (s *MemoryStore) SoftDelete(_ context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	p, ok := s.programs[id]
	if !ok || p.IsDeleted {
		return false, nil
	}
	p.IsDeleted = true
	p.Status = program.StatusArchived
	p.DeletedAt = &at
	p.UpdatedAt = at
	s.Writes++
	return true, nil
}

func (s *MemoryStore) FindDeadlinesBetween(_ context.Context, from, to time.Time) ([]*program.Program, error) {
	return s.filter(func(p *program.Program) bool {
		if p.Status != program.StatusPublished && p.Status != program.StatusActive {
			return false
		}
		d := p.ApplicationDeadline
		return d != nil && !d.Before(from) && !d.After(to)
	})
}

func (s *MemoryStore) CountByStatus(ctx context.Context) (map[program.Status]int64, error) {
	all, err := s.filter(func(*program.Program) bool { return true })
	if err != nil {
		return nil, err
	}
	counts := map[program.Status]int64{}
	for _, p := range all {
		counts[p.Status]++
	}
	return counts, nil
}

// Raw returns the stored program including soft-deleted ones.
func (s *MemoryStore) Raw(id primitive.ObjectID) *program.Program {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.programs[id]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

func (s *MemoryStore) filter(keep func(p *program.Program) bool) ([]*program.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []*program.Program{}
	for _, p := range s.programs {
		if !p.IsDeleted && keep(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *program.Program) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}
