// Package bookingtest provides an in-memory booking.Store for tests.
package bookingtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"GHXPortal/internal/booking"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps bookings in a map. Err, when set, is returned by every call.
type MemoryStore struct {
	mu       sync.Mutex
	bookings map[primitive.ObjectID]*booking.Booking
	Err      error
}

func NewMemoryStore(bookings ...*booking.Booking) *MemoryStore {
	s := &MemoryStore{bookings: make(map[primitive.ObjectID]*booking.Booking)}
	for _, b := range bookings {
		if b.ID.IsZero() {
			b.ID = primitive.NewObjectID()
		}
		cp := *b
		s.bookings[b.ID] = &cp
	}
	return s
}

func (s *MemoryStore) Create(_ context.Context, b *booking.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if s.slotHeld(b.MentorID, b.Date, b.TimeSlot) {
		return booking.ErrSlotTaken
	}
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id primitive.ObjectID) (*booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	b, ok := s.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (s *MemoryStore) ListForUser(_ context.Context, userID primitive.ObjectID, from time.Time) ([]*booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []*booking.Booking{}
	for _, b := range s.bookings {
		if b.UserID != userID || (!from.IsZero() && b.Date.Before(from)) {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].TimeSlot < out[j].TimeSlot
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (s *MemoryStore) SlotTaken(_ context.Context, mentorID primitive.ObjectID, date time.Time, slot string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	return s.slotHeld(mentorID, date, slot), nil
}

// slotHeld mirrors the partial unique index on active bookings.
func (s *MemoryStore) slotHeld(mentorID primitive.ObjectID, date time.Time, slot string) bool {
	for _, b := range s.bookings {
		if b.MentorID == mentorID && b.Date.Equal(date) && b.TimeSlot == slot && b.Status != booking.StatusCancelled {
			return true
		}
	}
	return false
}

func (s *MemoryStore) SetStatus(_ context.Context, id primitive.ObjectID, status booking.Status, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	b, ok := s.bookings[id]
	if !ok {
		return false, nil
	}
	b.Status = status
	b.UpdatedAt = at
	return true, nil
}

func (s *MemoryStore) Count(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	return int64(len(s.bookings)), nil
}
