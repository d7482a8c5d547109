package response

import (
	"errors"
	"net/http"
	"time"

	"GHXPortal/internal/apperr"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Envelope is the JSON shape every API route answers with.
type Envelope struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorBody  `json:"error,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type ErrorBody struct {
	Code    apperr.Code            `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// OK writes a successful envelope.
func OK(c echo.Context, status int, data interface{}, message string) error {
	return c.JSON(status, Envelope{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

// Fail writes an error envelope for the given application error.
func Fail(c echo.Context, err *apperr.Error) error {
	return c.JSON(err.Status, Envelope{
		Success: false,
		Error: &ErrorBody{
			Code:    err.Code,
			Message: err.Message,
			Details: err.Details,
		},
		Message:   err.Message,
		Timestamp: time.Now().UTC(),
	})
}

// ErrorHandler turns anything a handler or middleware returned into the error
// envelope. Unknown errors are logged and hidden behind a generic 500.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		appErr := toAppError(err)
		if appErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Error(err))
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(appErr.Status)
		} else {
			writeErr = Fail(c, appErr)
		}
		if writeErr != nil {
			logger.Warn("failed to write error response", zap.Error(writeErr))
		}
	}
}

func toAppError(err error) *apperr.Error {
	if appErr, ok := apperr.As(err); ok {
		return appErr
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if m, ok := httpErr.Message.(string); ok && m != "" {
			message = m
		}
		return apperr.New(httpErr.Code, codeForStatus(httpErr.Code), message)
	}

	return apperr.Internal("Internal server error", err)
}

func codeForStatus(status int) apperr.Code {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return apperr.CodeBadRequest
	case http.StatusUnprocessableEntity:
		return apperr.CodeValidation
	case http.StatusUnauthorized:
		return apperr.CodeUnauthorized
	case http.StatusForbidden:
		return apperr.CodeForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return apperr.CodeNotFound
	case http.StatusConflict:
		return apperr.CodeConflict
	case http.StatusTooManyRequests:
		return apperr.CodeRateLimited
	default:
		return apperr.CodeInternal
	}
}
