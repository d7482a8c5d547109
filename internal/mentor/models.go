package mentor

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mentor is an advisor profile managed from the admin back-office.
type Mentor struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Role        string             `bson:"role"` // job title, e.g. "Partner"
	Company     string             `bson:"company"`
	Photo       string             `bson:"photo"`
	LinkedInURL string             `bson:"linkedin_url"`
	Expertise   []string           `bson:"expertise"`
	Bio         string             `bson:"bio"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

type MentorRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=120"`
	Role        string   `json:"role" validate:"required,max=120"`
	Company     string   `json:"company" validate:"required,max=120"`
	Photo       string   `json:"photo" validate:"omitempty,max=500"`
	LinkedInURL string   `json:"linkedinUrl" validate:"omitempty,url"`
	Expertise   []string `json:"expertise" validate:"omitempty,max=30,dive,min=1,max=60"`
	Bio         string   `json:"bio" validate:"omitempty,max=4000"`
}

type MentorResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	Company     string    `json:"company"`
	Photo       string    `json:"photo"`
	LinkedInURL string    `json:"linkedinUrl"`
	Expertise   []string  `json:"expertise"`
	Bio         string    `json:"bio,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func ToMentorResponse(m *Mentor) MentorResponse {
	expertise := m.Expertise
	if expertise == nil {
		expertise = []string{}
	}
	return MentorResponse{
		ID:          m.ID.Hex(),
		Name:        m.Name,
		Role:        m.Role,
		Company:     m.Company,
		Photo:       m.Photo,
		LinkedInURL: m.LinkedInURL,
		Expertise:   expertise,
		Bio:         m.Bio,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func ToMentorResponses(mentors []*Mentor) []MentorResponse {
	out := make([]MentorResponse, 0, len(mentors))
	for _, m := range mentors {
		out = append(out, ToMentorResponse(m))
	}
	return out
}
