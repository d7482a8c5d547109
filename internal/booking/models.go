package booking

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Booking is a mentoring session a member reserved on the calendar. The mentor
// name is copied at booking time so the calendar survives mentor edits.
type Booking struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     primitive.ObjectID `bson:"user_id"`
	MentorID   primitive.ObjectID `bson:"mentor_id"`
	MentorName string             `bson:"mentor_name"`
	Date       time.Time          `bson:"date"` // midnight UTC of the session day
	TimeSlot   string             `bson:"time_slot"`
	Topic      string             `bson:"topic,omitempty"`
	Notes      string             `bson:"notes,omitempty"`
	Status     Status             `bson:"status"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
}

type CreateBookingRequest struct {
	MentorID string `json:"mentorId" validate:"required,len=24,hexadecimal"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSlot string `json:"timeSlot" validate:"required,max=20"`
	Topic    string `json:"topic" validate:"omitempty,max=200"`
	Notes    string `json:"notes" validate:"omitempty,max=2000"`
}

type BookingResponse struct {
	ID         string    `json:"id"`
	MentorID   string    `json:"mentorId"`
	MentorName string    `json:"mentorName"`
	Date       string    `json:"date"`
	TimeSlot   string    `json:"timeSlot"`
	Topic      string    `json:"topic,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

func ToBookingResponse(b *Booking) BookingResponse {
	return BookingResponse{
		ID:         b.ID.Hex(),
		MentorID:   b.MentorID.Hex(),
		MentorName: b.MentorName,
		Date:       b.Date.Format(dateLayout),
		TimeSlot:   b.TimeSlot,
		Topic:      b.Topic,
		Notes:      b.Notes,
		Status:     b.Status,
		CreatedAt:  b.CreatedAt,
	}
}

func ToBookingResponses(items []*Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(items))
	for _, b := range items {
		out = append(out, ToBookingResponse(b))
	}
	return out
}
