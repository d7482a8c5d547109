package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"GHXPortal/internal/apperr"
	"GHXPortal/internal/mentor"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	dateLayout    = "2006-01-02"
	notifyTimeout = 30 * time.Second
)

// MentorFinder looks mentors up by id; it returns nil, nil when none exists.
type MentorFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*mentor.Mentor, error)
}

// Notifier confirms a new booking to the member. Failures never undo the booking.
type Notifier interface {
	NotifySessionBooked(ctx context.Context, userID primitive.ObjectID, mentorName string, date time.Time, timeSlot string) error
}

type BookingService struct {
	repo     Store
	mentors  MentorFinder
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewBookingService(repo Store, mentors MentorFinder, notifier Notifier, logger *zap.Logger) *BookingService {
	return &BookingService{
		repo:     repo,
		mentors:  mentors,
		notifier: notifier,
		logger:   logger.Named("booking"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *BookingService) failed(op string, err error, fields ...zap.Field) error {
	s.logger.Error("failed to "+op+" booking", append(fields, zap.Error(err))...)
	return apperr.Internal("Failed to "+op+" booking: "+err.Error(), err)
}

func (s *BookingService) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// CreateBooking stores a pending session with an existing mentor. The session
// day may not lie in the past and a mentor slot holds one active booking;
// SlotTaken is only a fast path, the store's unique index decides races.
func (s *BookingService) CreateBooking(ctx context.Context, userID primitive.ObjectID, req CreateBookingRequest) (*Booking, error) {
	mentorID, err := primitive.ObjectIDFromHex(req.MentorID)
	if err != nil {
		return nil, apperr.BadRequest("Invalid mentorId")
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, apperr.Validation("Invalid date").WithDetails("date", req.Date)
	}
	if date.Before(s.today()) {
		return nil, apperr.Validation("Booking date cannot be in the past")
	}
	slot := strings.TrimSpace(req.TimeSlot)

	m, err := s.mentors.FindByID(ctx, mentorID)
	if err != nil {
		return nil, s.failed("create", err, zap.String("mentor_id", mentorID.Hex()))
	}
	if m == nil {
		return nil, apperr.NotFound("Mentor not found")
	}

	taken, err := s.repo.SlotTaken(ctx, mentorID, date, slot)
	if err != nil {
		return nil, s.failed("create", err, zap.String("mentor_id", mentorID.Hex()))
	}
	if taken {
		return nil, apperr.Conflict("Time slot is already booked")
	}

	now := s.now()
	b := &Booking{
		ID:         primitive.NewObjectID(),
		UserID:     userID,
		MentorID:   mentorID,
		MentorName: m.Name,
		Date:       date,
		TimeSlot:   slot,
		Topic:      strings.TrimSpace(req.Topic),
		Notes:      req.Notes,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			return nil, apperr.Conflict("Time slot is already booked")
		}
		return nil, s.failed("create", err, zap.String("mentor_id", mentorID.Hex()))
	}
	s.logger.Info("booking created",
		zap.String("booking_id", b.ID.Hex()),
		zap.String("user_id", userID.Hex()),
		zap.String("mentor_id", mentorID.Hex()))

	s.notifyBooked(ctx, b)
	return b, nil
}

func (s *BookingService) notifyBooked(ctx context.Context, b *Booking) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := s.notifier.NotifySessionBooked(ctx, b.UserID, b.MentorName, b.Date, b.TimeSlot); err != nil {
		s.logger.Warn("notification failed, booking kept",
			zap.String("booking_id", b.ID.Hex()),
			zap.Error(err))
	}
}

// ListMine returns the user's bookings; upcoming limits them to today onwards.
func (s *BookingService) ListMine(ctx context.Context, userID primitive.ObjectID, upcoming bool) ([]*Booking, error) {
	var from time.Time
	if upcoming {
		from = s.today()
	}
	items, err := s.repo.ListForUser(ctx, userID, from)
	if err != nil {
		return nil, s.failed("list", err, zap.String("user_id", userID.Hex()))
	}
	return items, nil
}

// CancelBooking cancels one of the user's own bookings. Other users' bookings
// report as not found.
func (s *BookingService) CancelBooking(ctx context.Context, userID, id primitive.ObjectID) (*Booking, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.failed("fetch", err, zap.String("booking_id", id.Hex()))
	}
	if b == nil || b.UserID != userID {
		return nil, apperr.NotFound("Booking not found")
	}
	if b.Status == StatusCancelled {
		return nil, apperr.Conflict("Booking is already cancelled")
	}

	now := s.now()
	found, err := s.repo.SetStatus(ctx, id, StatusCancelled, now)
	if err != nil {
		return nil, s.failed("cancel", err, zap.String("booking_id", id.Hex()))
	}
	if !found {
		return nil, apperr.NotFound("Booking not found")
	}
	b.Status = StatusCancelled
	b.UpdatedAt = now
	s.logger.Info("booking cancelled", zap.String("booking_id", id.Hex()))
	return b, nil
}

func (s *BookingService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
