package http

import (
	"log/slog"
	"net"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/porkdyn/porkdyn/geoip"
)

// LoggingMiddleware logs each HTTP request with method, path, status,
// and latency. When a GeoIP lookup is configured, the caller's country
// is included for auditing where updates come from. Health check
// requests are not logged to reduce noise.
func LoggingMiddleware(geo geoip.CountryLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		if path == "/health" {
			return
		}

		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client", c.ClientIP(),
		}

		if geo != nil {
			if ip := net.ParseIP(c.ClientIP()); ip != nil {
				if country, err := geo.Country(ip); err == nil && country != "" {
					attrs = append(attrs, "country", country)
				}
			}
		}

		slog.Info("http request", attrs...)
	}
}
