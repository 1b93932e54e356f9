package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/nephrolog-lt/nephrolog-api/internal/platform/timezone"
)

// Logger emits one structured line per request. The caller's timezone
// header is included because day bucketing of intakes and dialysis
// sessions depends on it, which makes it the first thing to check when a
// record lands on the wrong date.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid, _ := c.Get("request_id").(string)

			err := next(c)

			evt := logger.Info()
			if err != nil {
				evt = logger.Error().Err(err)
			}

			evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Str("tz", req.Header.Get(timezone.HeaderName)).
				Msg("request")

			return err
		}
	}
}
