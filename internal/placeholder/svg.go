package placeholder

import (
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"

	"GHXPortal/internal/apperr"

	"github.com/labstack/echo/v4"
)

const (
	minSide = 1
	maxSide = 2000
)

// ParseSize accepts "WxH" or "N" (square) and clamps both sides to 1..2000.
func ParseSize(raw string) (width, height int, err error) {
	parts := strings.SplitN(strings.ToLower(raw), "x", 2)
	width, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid width %q", parts[0])
	}
	height = width
	if len(parts) == 2 {
		height, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid height %q", parts[1])
		}
	}
	return clamp(width), clamp(height), nil
}

func clamp(v int) int {
	if v < minSide {
		return minSide
	}
	if v > maxSide {
		return maxSide
	}
	return v
}

// Render draws a grey box with the text centred in it.
func Render(width, height int, text string) string {
	fontSize := width
	if height < fontSize {
		fontSize = height
	}
	fontSize /= 8
	if fontSize < 8 {
		fontSize = 8
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
		`<rect width="100%%" height="100%%" fill="#e5e7eb"/>`+
		`<text x="50%%" y="50%%" font-family="Arial, sans-serif" font-size="%d" fill="#6b7280" text-anchor="middle" dominant-baseline="middle">%s</text>`+
		`</svg>`,
		width, height, width, height, fontSize, html.EscapeString(text))
}

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) Serve(c echo.Context) error {
	width, height, err := ParseSize(c.Param("size"))
	if err != nil {
		return apperr.BadRequest("Invalid size").WithDetails("size", c.Param("size"))
	}
	text := c.Param("text")
	if text == "" {
		text = fmt.Sprintf("%dx%d", width, height)
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Blob(http.StatusOK, "image/svg+xml", []byte(Render(width, height, text)))
}
