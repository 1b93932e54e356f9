package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/nephrolog-lt/nephrolog-api/internal/platform/timezone"
)

func TestLoggerRecordsTimezoneHeader(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/nutrition/screen", nil)
	req.Header.Set(timezone.HeaderName, "Europe/Vilnius")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("request_id", "rid-1")

	h := Logger(logger)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error = %v", err)
	}

	line := buf.String()
	if !strings.Contains(line, `"tz":"Europe/Vilnius"`) {
		t.Errorf("log line missing tz field: %s", line)
	}
	if !strings.Contains(line, `"request_id":"rid-1"`) {
		t.Errorf("log line missing request_id: %s", line)
	}
}

func TestRecoveryConvertsPanicToInternalError(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/products", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	h := Recovery(logger)(func(c echo.Context) error {
		panic("bad product row")
	})

	err := h(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusInternalServerError {
		t.Fatalf("err = %v, want 500 HTTPError", err)
	}
	if !strings.Contains(buf.String(), "bad product row") {
		t.Errorf("panic value not logged: %s", buf.String())
	}
}
