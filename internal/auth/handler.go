package auth

import (
	"net/http"
	"strconv"

	"GHXPortal/internal/apperr"
	"GHXPortal/pkg/request"
	"GHXPortal/pkg/response"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContextKey is where the JWT middleware stores *JWTClaims.
const ContextKey = "user"

// ClaimsFrom returns the claims of the authenticated caller.
func ClaimsFrom(c echo.Context) (*JWTClaims, bool) {
	claims, ok := c.Get(ContextKey).(*JWTClaims)
	return claims, ok && claims != nil
}

// CurrentUserID returns the caller's id or a 401.
func CurrentUserID(c echo.Context) (primitive.ObjectID, error) {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return primitive.NilObjectID, apperr.Unauthorized("Invalid or missing token")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, apperr.Unauthorized("Invalid token subject")
	}
	return id, nil
}

type AuthHandler struct {
	service *UserService
}

func NewAuthHandler(service *UserService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	user, err := h.service.RegisterUser(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusCreated, ToUserResponse(user), "User registered successfully")
}

func (h *AuthHandler) Login(c echo.Context) error {
	var cred Credential
	if err := request.Bind(c, &cred); err != nil {
		return err
	}
	login, err := h.service.AuthenticateUser(c.Request().Context(), cred)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, login, "Login successful")
}

func (h *AuthHandler) Me(c echo.Context) error {
	id, err := CurrentUserID(c)
	if err != nil {
		return err
	}
	user, err := h.service.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, ToUserResponse(user), "")
}

func (h *AuthHandler) SetupAdmin(c echo.Context) error {
	var req SetupAdminRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	admin, err := h.service.SetupAdmin(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusCreated, ToUserResponse(admin), "Admin account ready")
}

// UserAdminHandler serves /api/admin/users.
type UserAdminHandler struct {
	service *UserService
}

func NewUserAdminHandler(service *UserService) *UserAdminHandler {
	return &UserAdminHandler{service: service}
}

func (h *UserAdminHandler) ListUsers(c echo.Context) error {
	filter := UserFilter{Role: Role(c.QueryParam("role")), Query: c.QueryParam("q")}
	if active := c.QueryParam("active"); active != "" {
		v, err := strconv.ParseBool(active)
		if err != nil {
			return apperr.BadRequest("Invalid active filter")
		}
		filter.Active = &v
	}
	if filter.Role != "" && !filter.Role.Valid() {
		return apperr.BadRequest("Invalid role filter")
	}
	users, err := h.service.ListUsers(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, ToUserResponses(users), "")
}

func (h *UserAdminHandler) GetUser(c echo.Context) error {
	id, err := request.ObjectID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.service.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, ToUserResponse(user), "")
}

func (h *UserAdminHandler) UpdateUser(c echo.Context) error {
	actorID, err := CurrentUserID(c)
	if err != nil {
		return err
	}
	id, err := request.ObjectID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateUserRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	user, err := h.service.UpdateUser(c.Request().Context(), actorID, id, req)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, ToUserResponse(user), "User updated successfully")
}

func (h *UserAdminHandler) DeleteUser(c echo.Context) error {
	actorID, err := CurrentUserID(c)
	if err != nil {
		return err
	}
	id, err := request.ObjectID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeactivateUser(c.Request().Context(), actorID, id); err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, nil, "User deactivated successfully")
}
