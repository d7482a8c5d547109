package mentor

import (
	"net/http"

	"GHXPortal/pkg/request"
	"GHXPortal/pkg/response"

	"github.com/labstack/echo/v4"
)

// MentorHandler serves both the dashboard directory and the admin CRUD routes.
type MentorHandler struct {
	service *MentorService
}

func NewMentorHandler(service *MentorService) *MentorHandler {
	return &MentorHandler{service: service}
}

func (h *MentorHandler) ListMentors(c echo.Context) error {
	mentors, err := h.service.ListMentors(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, ToMentorResponses(mentors), "")
}

func (h *MentorHandler) GetMentor(c echo.Context) error {
	id, err := request.ObjectID(c, "id")
	if err != nil {
		return err
	}
	m, err := h.service.GetMentor(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, ToMentorResponse(m), "")
}

func (h *MentorHandler) CreateMentor(c echo.Context) error {
	var req MentorRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	m, err := h.service.CreateMentor(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusCreated, ToMentorResponse(m), "Mentor created successfully")
}

func (h *MentorHandler) UpdateMentor(c echo.Context) error {
	id, err := request.ObjectID(c, "id")
	if err != nil {
		return err
	}
	var req MentorRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	m, err := h.service.UpdateMentor(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, ToMentorResponse(m), "Mentor updated successfully")
}

func (h *MentorHandler) DeleteMentor(c echo.Context) error {
	id, err := request.ObjectID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteMentor(c.Request().Context(), id); err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, nil, "Mentor deleted successfully")
}
