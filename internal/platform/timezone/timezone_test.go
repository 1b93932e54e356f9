package timezone

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func resolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := NewResolver("Europe/Vilnius")
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return r
}

func requestContext(header string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(HeaderName, header)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func TestFromRequestHeader(t *testing.T) {
	loc := resolver(t).FromRequest(requestContext("America/New_York"))
	if loc.String() != "America/New_York" {
		t.Errorf("zone = %s, want America/New_York", loc)
	}
}

func TestFromRequestFallsBack(t *testing.T) {
	r := resolver(t)
	for _, header := range []string{"", "Not/AZone"} {
		loc := r.FromRequest(requestContext(header))
		if loc.String() != "Europe/Vilnius" {
			t.Errorf("header %q: zone = %s, want Europe/Vilnius", header, loc)
		}
	}
}

func TestNewResolverUnknownZone(t *testing.T) {
	if _, err := NewResolver("Not/AZone"); err == nil {
		t.Fatal("expected error for unknown zone")
	}
}

func TestLocalDateCrossesMidnight(t *testing.T) {
	vilnius, err := time.LoadLocation("Europe/Vilnius")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 23:30 UTC is 01:30 next day in Vilnius (EET+2/EEST+3).
	instant := time.Date(2024, 3, 15, 23, 30, 0, 0, time.UTC)
	got := LocalDate(instant, vilnius)
	want := time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("LocalDate = %s, want %s", got, want)
	}

	if got := LocalDate(instant, time.UTC); !got.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("LocalDate UTC = %s, want 2024-03-15", got)
	}
}
