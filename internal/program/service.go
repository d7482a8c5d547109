package program

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"time"

	"GHXPortal/internal/apperr"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ProgramService implements program CRUD. Storage failures are logged and
// surfaced as opaque internal errors carrying the original message.
type ProgramService struct {
	repo   Store
	logger *zap.Logger
	now    func() time.Time
}

func NewProgramService(repo Store, logger *zap.Logger) *ProgramService {
	return &ProgramService{repo: repo, logger: logger.Named("program"), now: func() time.Time { return time.Now().UTC() }}
}

func (s *ProgramService) failed(op string, err error, fields ...zap.Field) error {
	s.logger.Error("failed to "+op+" program", append(fields, zap.Error(err))...)
	return apperr.Internal("Failed to "+op+" program: "+err.Error(), err)
}

func (s *ProgramService) GetAllPrograms(ctx context.Context) ([]*Program, error) {
	return s.ListPrograms(ctx, Filter{})
}

func (s *ProgramService) ListPrograms(ctx context.Context, filter Filter) ([]*Program, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	programs, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, s.failed("fetch", err)
	}
	return programs, nil
}

func (s *ProgramService) SearchPrograms(ctx context.Context, query string) ([]*Program, error) {
	return s.ListPrograms(ctx, Filter{Query: query})
}

// FilterPrograms narrows by category and/or status; empty values match all.
func (s *ProgramService) FilterPrograms(ctx context.Context, category Category, status Status) ([]*Program, error) {
	f := Filter{Category: category}
	if status != "" {
		f.Statuses = []Status{status}
	}
	return s.ListPrograms(ctx, f)
}

// ListPublicPrograms is the dashboard view: published and active programs only.
func (s *ProgramService) ListPublicPrograms(ctx context.Context, query string, category Category) ([]*Program, error) {
	return s.ListPrograms(ctx, Filter{Query: query, Category: category, Statuses: []Status{StatusPublished, StatusActive}})
}

func (s *ProgramService) GetProgramByID(ctx context.Context, id primitive.ObjectID) (*Program, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.failed("fetch", err, zap.String("program_id", id.Hex()))
	}
	if p == nil || p.IsDeleted {
		return nil, apperr.NotFound("Program not found")
	}
	return p, nil
}

func (s *ProgramService) CreateProgram(ctx context.Context, req CreateProgramRequest, createdBy primitive.ObjectID) (*Program, error) {
	now := s.now()
	p := &Program{
		ID:                  primitive.NewObjectID(),
		Title:               strings.TrimSpace(req.Title),
		ShortDescription:    req.ShortDescription,
		Description:         req.Description,
		Category:            req.Category,
		Status:              req.Status,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		ApplicationDeadline: req.ApplicationDeadline,
		MaxParticipants:     req.MaxParticipants,
		CurrentParticipants: req.CurrentParticipants,
		Location:            req.Location,
		Requirements:        req.Requirements,
		Benefits:            req.Benefits,
		Tags:                req.Tags,
		CreatedBy:           createdBy,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	if err := setSelectedStartups(p, req.SelectedStartups); err != nil {
		return nil, err
	}
	if err := validate(p); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, s.failed("create", err)
	}
	s.logger.Info("program created", zap.String("program_id", p.ID.Hex()), zap.String("status", string(p.Status)))
	return p, nil
}

// UpdateProgram applies a partial update and reports which fields changed.
func (s *ProgramService) UpdateProgram(ctx context.Context, id primitive.ObjectID, req UpdateProgramRequest) (*UpdateResult, error) {
	p, err := s.GetProgramByID(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := p.Status

	changes := applyUpdate(p, req)
	if len(req.SelectedStartups) > 0 {
		before := p.SelectedStartups
		if err := setSelectedStartups(p, req.SelectedStartups); err != nil {
			return nil, err
		}
		if before != p.SelectedStartups {
			changes = append(changes, "selectedStartups")
		}
	}
	if err := validate(p); err != nil {
		return nil, err
	}

	result := &UpdateResult{Program: p, Changes: changes, PreviousStatus: prev}
	if len(changes) == 0 {
		return result, nil
	}

	p.UpdatedAt = s.now()
	found, err := s.repo.Update(ctx, p)
	if err != nil {
		return nil, s.failed("update", err, zap.String("program_id", id.Hex()))
	}
	if !found {
		return nil, apperr.NotFound("Program not found")
	}
	s.logger.Info("program updated", zap.String("program_id", id.Hex()), zap.Strings("changes", changes))
	return result, nil
}

// DeleteProgram soft-deletes: the program is archived and hidden from listings.
func (s *ProgramService) DeleteProgram(ctx context.Context, id primitive.ObjectID) error {
	found, err := s.repo.SoftDelete(ctx, id, s.now())
	if err != nil {
		return s.failed("delete", err, zap.String("program_id", id.Hex()))
	}
	if !found {
		return apperr.NotFound("Program not found")
	}
	s.logger.Info("program deleted", zap.String("program_id", id.Hex()))
	return nil
}

// ProgramsWithDeadlineWithin returns public programs whose application deadline
// falls between now and now+days.
func (s *ProgramService) ProgramsWithDeadlineWithin(ctx context.Context, days int) ([]*Program, error) {
	if days < 0 {
		return nil, apperr.BadRequest("days must not be negative")
	}
	now := s.now()
	programs, err := s.repo.FindDeadlinesBetween(ctx, now, now.Add(time.Duration(days)*24*time.Hour))
	if err != nil {
		return nil, s.failed("fetch", err)
	}
	return programs, nil
}

func (s *ProgramService) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, s.failed("count", err)
	}
	return counts, nil
}

func validate(p *Program) error {
	if p.MaxParticipants > 0 && p.CurrentParticipants > p.MaxParticipants {
		return apperr.Validation("Current participants cannot exceed max participants").
			WithDetails("maxParticipants", p.MaxParticipants).
			WithDetails("currentParticipants", p.CurrentParticipants)
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return apperr.Validation("End date must not be before start date")
	}
	if !p.Status.Valid() {
		return apperr.Validation("Invalid program status")
	}
	if !p.Category.Valid() {
		return apperr.Validation("Invalid program category")
	}
	return nil
}

func setSelectedStartups(p *Program, raw json.RawMessage) error {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		p.SelectedStartups = ""
		return nil
	}
	if !json.Valid([]byte(trimmed)) {
		return apperr.BadRequest("selectedStartups must be valid JSON")
	}
	p.SelectedStartups = trimmed
	return nil
}

func applyUpdate(p *Program, req UpdateProgramRequest) []string {
	var changes []string
	setString := func(name string, dst *string, v *string) {
		if v != nil && *dst != *v {
			*dst = *v
			changes = append(changes, name)
		}
	}
	setInt := func(name string, dst *int, v *int) {
		if v != nil && *dst != *v {
			*dst = *v
			changes = append(changes, name)
		}
	}
	setTime := func(name string, dst **time.Time, v *time.Time) {
		if v == nil {
			return
		}
		if *dst == nil || !(*dst).Equal(*v) {
			t := *v
			*dst = &t
			changes = append(changes, name)
		}
	}
	setList := func(name string, dst *[]string, v *[]string) {
		if v != nil && !slices.Equal(*dst, *v) {
			*dst = *v
			changes = append(changes, name)
		}
	}

	setString("title", &p.Title, req.Title)
	setString("shortDescription", &p.ShortDescription, req.ShortDescription)
	setString("description", &p.Description, req.Description)
	if req.Category != nil && p.Category != *req.Category {
		p.Category = *req.Category
		changes = append(changes, "programCategory")
	}
	if req.Status != nil && p.Status != *req.Status {
		p.Status = *req.Status
		changes = append(changes, "status")
	}
	setTime("startDate", &p.StartDate, req.StartDate)
	setTime("endDate", &p.EndDate, req.EndDate)
	setTime("applicationDeadline", &p.ApplicationDeadline, req.ApplicationDeadline)
	setInt("maxParticipants", &p.MaxParticipants, req.MaxParticipants)
	setInt("currentParticipants", &p.CurrentParticipants, req.CurrentParticipants)
	setString("location", &p.Location, req.Location)
	setList("requirements", &p.Requirements, req.Requirements)
	setList("benefits", &p.Benefits, req.Benefits)
	setList("tags", &p.Tags, req.Tags)
	return changes
}
