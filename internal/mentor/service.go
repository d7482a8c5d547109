package mentor

import (
	"context"
	"strings"
	"time"

	"GHXPortal/internal/apperr"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type MentorService struct {
	repo   Store
	logger *zap.Logger
}

func NewMentorService(repo Store, logger *zap.Logger) *MentorService {
	return &MentorService{repo: repo, logger: logger.Named("mentor")}
}

func (s *MentorService) failed(op string, err error, fields ...zap.Field) error {
	s.logger.Error("failed to "+op+" mentor", append(fields, zap.Error(err))...)
	return apperr.Internal("Failed to "+op+" mentor: "+err.Error(), err)
}

func (s *MentorService) ListMentors(ctx context.Context, query string) ([]*Mentor, error) {
	mentors, err := s.repo.List(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, s.failed("list", err)
	}
	return mentors, nil
}

func (s *MentorService) GetMentor(ctx context.Context, id primitive.ObjectID) (*Mentor, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.failed("fetch", err, zap.String("mentor_id", id.Hex()))
	}
	if m == nil {
		return nil, apperr.NotFound("Mentor not found")
	}
	return m, nil
}

func (s *MentorService) CreateMentor(ctx context.Context, req MentorRequest) (*Mentor, error) {
	now := time.Now().UTC()
	m := &Mentor{
		ID:        primitive.NewObjectID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	apply(m, req)
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, s.failed("create", err)
	}
	s.logger.Info("mentor created", zap.String("mentor_id", m.ID.Hex()))
	return m, nil
}

func (s *MentorService) UpdateMentor(ctx context.Context, id primitive.ObjectID, req MentorRequest) (*Mentor, error) {
	m, err := s.GetMentor(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(m, req)
	found, err := s.repo.Update(ctx, m)
	if err != nil {
		return nil, s.failed("update", err, zap.String("mentor_id", id.Hex()))
	}
	if !found {
		return nil, apperr.NotFound("Mentor not found")
	}
	return m, nil
}

func (s *MentorService) DeleteMentor(ctx context.Context, id primitive.ObjectID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return s.failed("delete", err, zap.String("mentor_id", id.Hex()))
	}
	if !deleted {
		return apperr.NotFound("Mentor not found")
	}
	s.logger.Info("mentor deleted", zap.String("mentor_id", id.Hex()))
	return nil
}

func apply(m *Mentor, req MentorRequest) {
	m.Name = strings.TrimSpace(req.Name)
	m.Role = strings.TrimSpace(req.Role)
	m.Company = strings.TrimSpace(req.Company)
	m.Photo = req.Photo
	m.LinkedInURL = req.LinkedInURL
	m.Expertise = req.Expertise
	m.Bio = req.Bio
}
