package notification

import (
	"net/http"
	"strconv"

	"GHXPortal/internal/apperr"
	"GHXPortal/internal/auth"
	"GHXPortal/pkg/request"
	"GHXPortal/pkg/response"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationHandler serves the signed-in user's inbox and the admin test endpoint.
type NotificationHandler struct {
	service     *NotificationService
	coordinator *Coordinator
}

func NewNotificationHandler(service *NotificationService, coordinator *Coordinator) *NotificationHandler {
	return &NotificationHandler{service: service, coordinator: coordinator}
}

func (h *NotificationHandler) List(c echo.Context) error {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return err
	}
	var limit int64
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || limit < 0 {
			return apperr.BadRequest("Invalid limit")
		}
	}
	unreadOnly := c.QueryParam("unread") == "true"

	items, err := h.service.ListMine(c.Request().Context(), userID, unreadOnly, limit)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, ToNotificationResponses(items), "")
}

func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return err
	}
	n, err := h.service.UnreadCount(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, map[string]int64{"count": n}, "")
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return err
	}
	id, err := request.ObjectID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.MarkRead(c.Request().Context(), userID, id); err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, nil, "Notification marked as read")
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return err
	}
	n, err := h.service.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return response.OK(c, http.StatusOK, map[string]int64{"updated": n}, "All notifications marked as read")
}

type TestNotificationRequest struct {
	RecipientID string `json:"recipientId"`
}

// TestNotification sends a test message to the given user, or to the calling
// admin when no recipient is named.
func (h *NotificationHandler) TestNotification(c echo.Context) error {
	senderID, err := auth.CurrentUserID(c)
	if err != nil {
		return err
	}
	var req TestNotificationRequest
	if err := request.Bind(c, &req); err != nil {
		return err
	}
	recipient := senderID
	if req.RecipientID != "" {
		recipient, err = primitive.ObjectIDFromHex(req.RecipientID)
		if err != nil {
			return apperr.BadRequest("Invalid recipientId")
		}
	}

	report, err := h.coordinator.SendTest(c.Request().Context(), recipient, senderID)
	if err != nil {
		return apperr.Internal("Failed to send test notification: "+err.Error(), err)
	}
	if report.Recipients == 0 {
		return apperr.NotFound("Recipient not found or inactive")
	}
	return response.OK(c, http.StatusOK, report, "Test notification sent")
}
