package program_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"GHXPortal/internal/apperr"
	"GHXPortal/internal/program"
	"GHXPortal/internal/program/programtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newRequest(title string) program.CreateProgramRequest {
	start := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, 0)
	return program.CreateProgramRequest{
		Title:               title,
		ShortDescription:    "Twelve weeks of hands-on support",
		Description:         "A cohort-based accelerator for early stage teams.",
		Category:            program.CategoryAccelerator,
		Status:              program.StatusPublished,
		StartDate:           &start,
		EndDate:             &end,
		MaxParticipants:     20,
		CurrentParticipants: 4,
		Tags:                []string{"fintech"},
		SelectedStartups:    json.RawMessage(`[{"name":"Acme"}]`),
	}
}

func TestProgramRoundTrip(t *testing.T) {
	store := programtest.NewMemoryStore()
	svc := program.NewProgramService(store, zap.NewNop())
	ctx := context.Background()
	admin := primitive.NewObjectID()

	created, err := svc.CreateProgram(ctx, newRequest("  Fintech Accelerator "), admin)
	require.NoError(t, err)
	assert.Equal(t, "Fintech Accelerator", created.Title)
	assert.Equal(t, admin, created.CreatedBy)
	assert.Equal(t, `[{"name":"Acme"}]`, created.SelectedStartups)

	got, err := svc.GetProgramByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, program.CategoryAccelerator, got.Category)
	assert.Equal(t, 20, got.MaxParticipants)

	found, err := svc.SearchPrograms(ctx, "fintech")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = svc.FilterPrograms(ctx, program.CategoryBootcamp, "")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestCreateProgram_DefaultsToDraft(t *testing.T) {
	svc := program.NewProgramService(programtest.NewMemoryStore(), zap.NewNop())
	req := newRequest("Draft program")
	req.Status = ""
	p, err := svc.CreateProgram(context.Background(), req, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Equal(t, program.StatusDraft, p.Status)

	public, err := svc.ListPublicPrograms(context.Background(), "", "")
	require.NoError(t, err)
	assert.Empty(t, public)
}

func TestCreateProgram_Invariants(t *testing.T) {
	store := programtest.NewMemoryStore()
	svc := program.NewProgramService(store, zap.NewNop())
	ctx := context.Background()

	over := newRequest("Too many")
	over.MaxParticipants = 5
	over.CurrentParticipants = 6
	_, err := svc.CreateProgram(ctx, over, primitive.NewObjectID())
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	backwards := newRequest("Backwards")
	before := backwards.StartDate.AddDate(0, 0, -1)
	backwards.EndDate = &before
	_, err = svc.CreateProgram(ctx, backwards, primitive.NewObjectID())
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	badJSON := newRequest("Broken startups")
	badJSON.SelectedStartups = json.RawMessage(`{not json`)
	_, err = svc.CreateProgram(ctx, badJSON, primitive.NewObjectID())
	assert.True(t, apperr.HasCode(err, apperr.CodeBadRequest))

	assert.Equal(t, 0, store.Writes)
}

func TestUpdateProgram_ReportsChanges(t *testing.T) {
	store := programtest.NewMemoryStore()
	svc := program.NewProgramService(store, zap.NewNop())
	ctx := context.Background()
	p, err := svc.CreateProgram(ctx, newRequest("Original"), primitive.NewObjectID())
	require.NoError(t, err)
	writes := store.Writes

	title := "Renamed"
	status := program.StatusActive
	sameMax := 20
	result, err := svc.UpdateProgram(ctx, p.ID, program.UpdateProgramRequest{Title: &title, Status: &status, MaxParticipants: &sameMax})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"title", "status"}, result.Changes)
	assert.True(t, result.StatusChanged())
	assert.Equal(t, program.StatusPublished, result.PreviousStatus)
	assert.Equal(t, []string{"title"}, result.ContentChanges())
	assert.Equal(t, writes+1, store.Writes)

	result, err = svc.UpdateProgram(ctx, p.ID, program.UpdateProgramRequest{Title: &title})
	require.NoError(t, err)
	assert.Empty(t, result.Changes)
	assert.Equal(t, writes+1, store.Writes)

	current := 50
	_, err = svc.UpdateProgram(ctx, p.ID, program.UpdateProgramRequest{CurrentParticipants: &current})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

func TestDeleteProgram_IsSoft(t *testing.T) {
	store := programtest.NewMemoryStore()
	svc := program.NewProgramService(store, zap.NewNop())
	ctx := context.Background()
	p, err := svc.CreateProgram(ctx, newRequest("Short lived"), primitive.NewObjectID())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProgram(ctx, p.ID))

	all, err := svc.GetAllPrograms(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = svc.GetProgramByID(ctx, p.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	raw := store.Raw(p.ID)
	require.NotNil(t, raw)
	assert.True(t, raw.IsDeleted)
	assert.Equal(t, program.StatusArchived, raw.Status)
	assert.NotNil(t, raw.DeletedAt)

	err = svc.DeleteProgram(ctx, p.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

func TestStorageFailureIsOpaque(t *testing.T) {
	store := programtest.NewMemoryStore()
	store.Err = errors.New("connection reset")
	svc := program.NewProgramService(store, zap.NewNop())

	_, err := svc.GetAllPrograms(context.Background())
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeInternal, appErr.Code)
	assert.True(t, strings.HasPrefix(appErr.Message, "Failed to fetch program: "))
	assert.Contains(t, appErr.Message, "connection reset")
	assert.ErrorIs(t, err, store.Err)
}

func TestProgramsWithDeadlineWithin(t *testing.T) {
	now := time.Now().UTC()
	soon := now.Add(36 * time.Hour)
	later := now.Add(10 * 24 * time.Hour)
	store := programtest.NewMemoryStore(
		&program.Program{Title: "Soon", Status: program.StatusPublished, Category: program.CategoryWorkshop, ApplicationDeadline: &soon},
		&program.Program{Title: "Later", Status: program.StatusPublished, Category: program.CategoryWorkshop, ApplicationDeadline: &later},
		&program.Program{Title: "Draft", Status: program.StatusDraft, Category: program.CategoryWorkshop, ApplicationDeadline: &soon},
	)
	svc := program.NewProgramService(store, zap.NewNop())

	list, err := svc.ProgramsWithDeadlineWithin(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Soon", list[0].Title)

	days, ok := list[0].DaysUntilDeadline(now)
	assert.True(t, ok)
	assert.Equal(t, 2, days)

	_, err = svc.ProgramsWithDeadlineWithin(context.Background(), -1)
	assert.True(t, apperr.HasCode(err, apperr.CodeBadRequest))
}

func TestUpdateProgram_SelectedStartupsPresence(t *testing.T) {
	store := programtest.NewMemoryStore()
	svc := program.NewProgramService(store, zap.NewNop())
	ctx := context.Background()
	p, err := svc.CreateProgram(ctx, newRequest("Cohort"), primitive.NewObjectID())
	require.NoError(t, err)

	var absent program.UpdateProgramRequest
	require.NoError(t, json.Unmarshal([]byte(`{"location":"Accra"}`), &absent))
	result, err := svc.UpdateProgram(ctx, p.ID, absent)
	require.NoError(t, err)
	assert.Equal(t, []string{"location"}, result.Changes)
	assert.Equal(t, `[{"name":"Acme"}]`, result.Program.SelectedStartups)

	var cleared program.UpdateProgramRequest
	require.NoError(t, json.Unmarshal([]byte(`{"selectedStartups":null}`), &cleared))
	result, err = svc.UpdateProgram(ctx, p.ID, cleared)
	require.NoError(t, err)
	assert.Equal(t, []string{"selectedStartups"}, result.Changes)

	got, err := svc.GetProgramByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.SelectedStartups)
}
