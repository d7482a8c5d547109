package profile

import (
	"net/http"

	"GHXPortal/internal/apperr"
	"GHXPortal/internal/auth"
	"GHXPortal/pkg/request"
	"GHXPortal/pkg/response"

	"github.com/labstack/echo/v4"
)

type ProfileHandler struct {
	service *ProfileService
}

func NewProfileHandler(service *ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) GetProfile(c echo.Context) error {
	id, err := auth.CurrentUserID(c)
	if err != nil {
		return err
	}
	p, err := h.service.GetProfile(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, p, "")
}

func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	id, err := auth.CurrentUserID(c)
	if err != nil {
		return err
	}
	var req UpdateProfileRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	p, err := h.service.UpdateProfile(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, p, "Profile updated successfully")
}

func (h *ProfileHandler) GetCompletion(c echo.Context) error {
	id, err := auth.CurrentUserID(c)
	if err != nil {
		return err
	}
	completion, err := h.service.GetCompletion(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, completion, "")
}

// RequireCompleteProfile locks routes until the caller's profile reaches the
// configured threshold. Admins pass through.
func (h *ProfileHandler) RequireCompleteProfile(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := auth.ClaimsFrom(c)
		if !ok {
			return apperr.Unauthorized("Invalid or missing token")
		}
		if claims.Role == auth.RoleAdmin {
			return next(c)
		}
		id, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}
		completion, err := h.service.GetCompletion(c.Request().Context(), id)
		if err != nil {
			return err
		}
		if !completion.Complete {
			return apperr.New(http.StatusForbidden, apperr.CodeProfileIncomplete, "Complete your profile to access this feature").
				WithDetails("completion", completion)
		}
		return next(c)
	}
}
