package program

import (
	"encoding/json"
	"time"
)

// ProgramResponse is the API shape. Storage field names differ (category is
// exposed as programCategory, _id as id).
type ProgramResponse struct {
	ID                  string          `json:"id"`
	Title               string          `json:"title"`
	ShortDescription    string          `json:"shortDescription"`
	Description         string          `json:"description"`
	Category            Category        `json:"programCategory"`
	Status              Status          `json:"status"`
	StartDate           *time.Time      `json:"startDate,omitempty"`
	EndDate             *time.Time      `json:"endDate,omitempty"`
	ApplicationDeadline *time.Time      `json:"applicationDeadline,omitempty"`
	MaxParticipants     int             `json:"maxParticipants"`
	CurrentParticipants int             `json:"currentParticipants"`
	Location            string          `json:"location"`
	Requirements        []string        `json:"requirements"`
	Benefits            []string        `json:"benefits"`
	Tags                []string        `json:"tags"`
	SelectedStartups    json.RawMessage `json:"selectedStartups,omitempty"`
	CreatedBy           string          `json:"createdBy,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

func ToProgramResponse(p *Program) ProgramResponse {
	resp := ProgramResponse{
		ID:                  p.ID.Hex(),
		Title:               p.Title,
		ShortDescription:    p.ShortDescription,
		Description:         p.Description,
		Category:            p.Category,
		Status:              p.Status,
		StartDate:           p.StartDate,
		EndDate:             p.EndDate,
		ApplicationDeadline: p.ApplicationDeadline,
		MaxParticipants:     p.MaxParticipants,
		CurrentParticipants: p.CurrentParticipants,
		Location:            p.Location,
		Requirements:        orEmpty(p.Requirements),
		Benefits:            orEmpty(p.Benefits),
		Tags:                orEmpty(p.Tags),
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
	if p.SelectedStartups != "" {
		resp.SelectedStartups = json.RawMessage(p.SelectedStartups)
	}
	if !p.CreatedBy.IsZero() {
		resp.CreatedBy = p.CreatedBy.Hex()
	}
	return resp
}

func ToProgramResponses(programs []*Program) []ProgramResponse {
	out := make([]ProgramResponse, 0, len(programs))
	for _, p := range programs {
		out = append(out, ToProgramResponse(p))
	}
	return out
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
