package program

import (
	"context"
	"net/http"
	"time"

	"GHXPortal/internal/apperr"
	"GHXPortal/internal/auth"
	"GHXPortal/pkg/request"
	"GHXPortal/pkg/response"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Notifier receives program lifecycle events. Implementations deliver on a best
// effort basis; callers never roll back on a returned error.
type Notifier interface {
	NotifyProgramCreated(ctx context.Context, p *Program) error
	NotifyProgramUpdated(ctx context.Context, p *Program, changes []string) error
	NotifyProgramStatusChanged(ctx context.Context, p *Program, from, to Status) error
	NotifyProgramDeadlineApproaching(ctx context.Context, p *Program, daysLeft int) error
}

const notifyTimeout = 30 * time.Second

// ProgramHandler serves the member-facing program browser.
type ProgramHandler struct {
	service *ProgramService
}

func NewProgramHandler(service *ProgramService) *ProgramHandler {
	return &ProgramHandler{service: service}
}

func (h *ProgramHandler) ListPrograms(c echo.Context) error {
	category := Category(c.QueryParam("category"))
	if category != "" && !category.Valid() {
		return apperr.BadRequest("Invalid category")
	}
	programs, err := h.service.ListPublicPrograms(c.Request().Context(), c.QueryParam("q"), category)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, ToProgramResponses(programs), "")
}

func (h *ProgramHandler) GetProgram(c echo.Context) error {
	id, err := request.ObjectID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.service.GetProgramByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if !p.Status.Public() {
		return apperr.NotFound("Program not found")
	}
	return response.OK(c, http.StatusOK, ToProgramResponse(p), "")
}

// ProgramAdminHandler serves /api/admin/programs. Every write is followed by a
// notification whose failure is only logged.
type ProgramAdminHandler struct {
	service  *ProgramService
	notifier Notifier
	logger   *zap.Logger
}

func NewProgramAdminHandler(service *ProgramService, notifier Notifier, logger *zap.Logger) *ProgramAdminHandler {
	return &ProgramAdminHandler{service: service, notifier: notifier, logger: logger.Named("program.admin")}
}

func (h *ProgramAdminHandler) ListPrograms(c echo.Context) error {
	category := Category(c.QueryParam("category"))
	status := Status(c.QueryParam("status"))
	if category != "" && !category.Valid() {
		return apperr.BadRequest("Invalid category")
	}
	if status != "" && !status.Valid() {
		return apperr.BadRequest("Invalid status")
	}

	ctx := c.Request().Context()
	var (
		programs []*Program
		err      error
	)
	if q := c.QueryParam("q"); q != "" {
		f := Filter{Query: q, Category: category}
		if status != "" {
			f.Statuses = []Status{status}
		}
		programs, err = h.service.ListPrograms(ctx, f)
	} else if category != "" || status != "" {
		programs, err = h.service.FilterPrograms(ctx, category, status)
	} else {
		programs, err = h.service.GetAllPrograms(ctx)
	}
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, ToProgramResponses(programs), "")
}

func (h *ProgramAdminHandler) GetProgram(c echo.Context) error {
	id, err := request.ObjectID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.service.GetProgramByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, ToProgramResponse(p), "")
}

func (h *ProgramAdminHandler) CreateProgram(c echo.Context) error {
	actorID, err := auth.CurrentUserID(c)
	if err != nil {
		return err
	}
	var req CreateProgramRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	p, err := h.service.CreateProgram(c.Request().Context(), req, actorID)
	if err != nil {
		return err
	}

	h.notify(c, p, "program_created", func(ctx context.Context) error {
		return h.notifier.NotifyProgramCreated(ctx, p)
	})
	return response.OK(c, http.StatusCreated, ToProgramResponse(p), "Program created successfully")
}

func (h *ProgramAdminHandler) UpdateProgram(c echo.Context) error {
	id, err := request.ObjectID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateProgramRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	result, err := h.service.UpdateProgram(c.Request().Context(), id, req)
	if err != nil {
		return err
	}

	p := result.Program
	if result.StatusChanged() {
		h.notify(c, p, "program_status_changed", func(ctx context.Context) error {
			return h.notifier.NotifyProgramStatusChanged(ctx, p, result.PreviousStatus, p.Status)
		})
	}
	if changes := result.ContentChanges(); len(changes) > 0 {
		h.notify(c, p, "program_updated", func(ctx context.Context) error {
			return h.notifier.NotifyProgramUpdated(ctx, p, changes)
		})
	}
	return response.OK(c, http.StatusOK, ToProgramResponse(p), "Program updated successfully")
}

func (h *ProgramAdminHandler) DeleteProgram(c echo.Context) error {
	id, err := request.ObjectID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteProgram(c.Request().Context(), id); err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, nil, "Program deleted successfully")
}

// SendDeadlineReminder announces the application deadline of one program now.
// Unlike the CRUD side effects, delivery is the point here, so failures surface.
func (h *ProgramAdminHandler) SendDeadlineReminder(c echo.Context) error {
	id, err := request.ObjectID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.service.GetProgramByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	daysLeft, ok := p.DaysUntilDeadline(time.Now())
	if !ok {
		return apperr.Validation("Program has no application deadline")
	}
	if daysLeft < 0 {
		return apperr.Validation("Application deadline has already passed")
	}
	if err := h.notifier.NotifyProgramDeadlineApproaching(c.Request().Context(), p, daysLeft); err != nil {
		return apperr.Internal("Failed to send deadline reminder: "+err.Error(), err)
	}
	return response.OK(c, http.StatusOK, map[string]int{"daysLeft": daysLeft}, "Deadline reminder sent")
}

// notify runs a side effect detached from the request's cancellation and only
// logs a failure.
func (h *ProgramAdminHandler) notify(c echo.Context, p *Program, event string, send func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), notifyTimeout)
	defer cancel()
	if err := send(ctx); err != nil {
		h.logger.Warn("notification failed, program change kept",
			zap.String("event", event),
			zap.String("program_id", p.ID.Hex()),
			zap.Error(err))
	}
}
