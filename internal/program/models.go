package program

import (
	"encoding/json"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusActive, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// Public reports whether members can see programs in this status.
func (s Status) Public() bool {
	return s == StatusPublished || s == StatusActive
}

type Category string

const (
	CategoryAccelerator Category = "accelerator"
	CategoryIncubator   Category = "incubator"
	CategoryBootcamp    Category = "bootcamp"
	CategoryHackathon   Category = "hackathon"
	CategoryWorkshop    Category = "workshop"
	CategoryMentorship  Category = "mentorship"
	CategoryOther       Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryAccelerator, CategoryIncubator, CategoryBootcamp, CategoryHackathon,
		CategoryWorkshop, CategoryMentorship, CategoryOther:
		return true
	}
	return false
}

// Program is an innovation or accelerator offering. Deletion is soft: the row
// stays with IsDeleted set and status archived.
type Program struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	Title               string             `bson:"title"`
	ShortDescription    string             `bson:"short_description"`
	Description         string             `bson:"description"`
	Category            Category           `bson:"category"`
	Status              Status             `bson:"status"`
	StartDate           *time.Time         `bson:"start_date,omitempty"`
	EndDate             *time.Time         `bson:"end_date,omitempty"`
	ApplicationDeadline *time.Time         `bson:"application_deadline,omitempty"`
	MaxParticipants     int                `bson:"max_participants"`
	CurrentParticipants int                `bson:"current_participants"`
	Location            string             `bson:"location"`
	Requirements        []string           `bson:"requirements"`
	Benefits            []string           `bson:"benefits"`
	Tags                []string           `bson:"tags"`
	SelectedStartups    string             `bson:"selected_startups,omitempty"` // raw JSON document
	CreatedBy           primitive.ObjectID `bson:"created_by,omitempty"`
	IsDeleted           bool               `bson:"is_deleted"`
	DeletedAt           *time.Time         `bson:"deleted_at,omitempty"`
	CreatedAt           time.Time          `bson:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at"`
}

// DaysUntilDeadline rounds up partial days; it is negative once the deadline
// passed and ok is false when no deadline is set.
func (p *Program) DaysUntilDeadline(now time.Time) (days int, ok bool) {
	if p.ApplicationDeadline == nil {
		return 0, false
	}
	return int(math.Ceil(p.ApplicationDeadline.Sub(now).Hours() / 24)), true
}

// Filter narrows program listings. Soft-deleted programs are always excluded.
type Filter struct {
	Query    string
	Category Category
	Statuses []Status
}

type CreateProgramRequest struct {
	Title               string          `json:"title" validate:"required,min=3,max=200"`
	ShortDescription    string          `json:"shortDescription" validate:"omitempty,max=500"`
	Description         string          `json:"description" validate:"required"`
	Category            Category        `json:"programCategory" validate:"required,oneof=accelerator incubator bootcamp hackathon workshop mentorship other"`
	Status              Status          `json:"status" validate:"omitempty,oneof=draft published active completed archived"`
	StartDate           *time.Time      `json:"startDate"`
	EndDate             *time.Time      `json:"endDate"`
	ApplicationDeadline *time.Time      `json:"applicationDeadline"`
	MaxParticipants     int             `json:"maxParticipants" validate:"min=0"`
	CurrentParticipants int             `json:"currentParticipants" validate:"min=0"`
	Location            string          `json:"location" validate:"omitempty,max=200"`
	Requirements        []string        `json:"requirements"`
	Benefits            []string        `json:"benefits"`
	Tags                []string        `json:"tags"`
	SelectedStartups    json.RawMessage `json:"selectedStartups"`
}

// UpdateProgramRequest is a partial update; nil fields are left unchanged.
type UpdateProgramRequest struct {
	Title               *string         `json:"title" validate:"omitempty,min=3,max=200"`
	ShortDescription    *string         `json:"shortDescription" validate:"omitempty,max=500"`
	Description         *string         `json:"description" validate:"omitempty,min=1"`
	Category            *Category       `json:"programCategory" validate:"omitempty,oneof=accelerator incubator bootcamp hackathon workshop mentorship other"`
	Status              *Status         `json:"status" validate:"omitempty,oneof=draft published active completed archived"`
	StartDate           *time.Time      `json:"startDate"`
	EndDate             *time.Time      `json:"endDate"`
	ApplicationDeadline *time.Time      `json:"applicationDeadline"`
	MaxParticipants     *int            `json:"maxParticipants" validate:"omitempty,min=0"`
	CurrentParticipants *int            `json:"currentParticipants" validate:"omitempty,min=0"`
	Location            *string         `json:"location" validate:"omitempty,max=200"`
	Requirements        *[]string       `json:"requirements"`
	Benefits            *[]string       `json:"benefits"`
	Tags                *[]string       `json:"tags"`
	SelectedStartups    json.RawMessage `json:"selectedStartups"` // empty when absent, "null" clears
}

// UpdateResult tells the caller what an update changed so it can decide which
// notifications to send.
type UpdateResult struct {
	Program        *Program
	Changes        []string
	PreviousStatus Status
}

func (r *UpdateResult) StatusChanged() bool {
	return r.PreviousStatus != r.Program.Status
}

// ContentChanges are the changed fields other than status.
func (r *UpdateResult) ContentChanges() []string {
	out := make([]string, 0, len(r.Changes))
	for _, c := range r.Changes {
		if c != "status" {
			out = append(out, c)
		}
	}
	return out
}
