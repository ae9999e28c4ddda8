package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	httpdto "github.com/azafe/Bandidos-backend/app/dto/http"

	"github.com/go-chi/httprate"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// RateLimitByIP caps requests per client IP within window. A non-positive
// limit disables the check.
func RateLimitByIP(requests int, window time.Duration) echo.MiddlewareFunc {
	if requests <= 0 || window <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	limiter := httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			logrus.WithFields(logrus.Fields{
				"remote_addr": r.RemoteAddr,
				"uri":         r.URL.Path,
			}).Warn("Rate limit exceeded")
			w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(httpdto.ErrorResponse{Error: "too many requests"})
		}),
	)
	return echo.WrapMiddleware(limiter)
}
