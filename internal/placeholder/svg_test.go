package placeholder

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	w, h, err := ParseSize("300x150")
	require.NoError(t, err)
	assert.Equal(t, 300, w)
	assert.Equal(t, 150, h)

	w, h, err = ParseSize("64")
	require.NoError(t, err)
	assert.Equal(t, 64, w)
	assert.Equal(t, 64, h)

	w, h, err = ParseSize("5000X0")
	require.NoError(t, err)
	assert.Equal(t, 2000, w)
	assert.Equal(t, 1, h)

	_, _, err = ParseSize("abc")
	assert.Error(t, err)
	_, _, err = ParseSize("10xfoo")
	assert.Error(t, err)
}

func TestRenderEscapesText(t *testing.T) {
	svg := Render(100, 100, `<script>alert("x")</script>`)
	assert.NotContains(t, svg, "<script>")
	assert.Contains(t, svg, "&lt;script&gt;")
	assert.Contains(t, svg, `width="100" height="100"`)
}

func TestServe(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/placeholder/200x100/Hello", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("size", "text")
	c.SetParamValues("200x100", "Hello")

	require.NoError(t, NewHandler().Serve(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Body.String(), ">Hello</text>")
}
