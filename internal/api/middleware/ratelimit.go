package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

const rateWindow = 15 * time.Minute

// AuthRateLimit gates the unauthenticated auth endpoints: 10 requests per
// 15 minutes per client IP.
func AuthRateLimit() echo.MiddlewareFunc {
	return rateLimiter(10, func(c echo.Context) (string, error) {
		return c.RealIP(), nil
	})
}

// AdminRateLimit gates the admin endpoints: 60 requests per 15 minutes keyed
// by IP plus acting subject, so one shared NAT cannot starve other admins.
func AdminRateLimit() echo.MiddlewareFunc {
	return rateLimiter(60, func(c echo.Context) (string, error) {
		subjectID, _ := c.Get(SubjectKey).(string)
		return c.RealIP() + "|" + subjectID, nil
	})
}

func rateLimiter(perWindow int, extractor echomiddleware.Extractor) echo.MiddlewareFunc {
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perWindow) / rateWindow.Seconds()),
		Burst:     perWindow,
		ExpiresIn: rateWindow,
	})
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store:               store,
		IdentifierExtractor: extractor,
	})
}
