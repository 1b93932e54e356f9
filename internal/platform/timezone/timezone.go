// Package timezone resolves the caller's local timezone from the
// Time-Zone-Name request header, falling back to a configured default zone
// when the header is absent or names an unknown zone.
package timezone

import (
	"time"

	"github.com/labstack/echo/v4"
)

const HeaderName = "Time-Zone-Name"

type Resolver struct {
	fallback *time.Location
}

func NewResolver(defaultZone string) (*Resolver, error) {
	loc, err := time.LoadLocation(defaultZone)
	if err != nil {
		return nil, err
	}
	return &Resolver{fallback: loc}, nil
}

// FromRequest returns the caller's timezone, never an error: unknown or
// missing zone names resolve to the fallback.
func (r *Resolver) FromRequest(c echo.Context) *time.Location {
	name := c.Request().Header.Get(HeaderName)
	if name == "" {
		return r.fallback
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return r.fallback
	}
	return loc
}

// LocalDate converts an instant into a calendar date in loc.
func LocalDate(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
