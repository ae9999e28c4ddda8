package controller

import (
	"context"
	"net/http"
	"sort"
	"time"

	httpdto "github.com/azafe/Bandidos-backend/app/dto/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const readinessTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

func RedisPinger(client redis.UniversalClient) Pinger {
	return PingFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}

type HealthController struct {
	checks map[string]Pinger
}

func NewHealthController(checks map[string]Pinger) *HealthController {
	return &HealthController{checks: checks}
}

func (c *HealthController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, httpdto.OKResponse{OK: true})
}

// Ready pings every dependency and reports 503 if any of them fails.
func (c *HealthController) Ready(ctx echo.Context) error {
	reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), readinessTimeout)
	defer cancel()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := httpdto.ReadyResponse{OK: true, Checks: make(map[string]string, len(names))}
	for _, name := range names {
		if err := c.checks[name].Ping(reqCtx); err != nil {
			logrus.WithError(err).WithField("check", name).Warn("Readiness check failed")
			resp.OK = false
			resp.Checks[name] = "unavailable"
			continue
		}
		resp.Checks[name] = "ok"
	}

	if !resp.OK {
		return ctx.JSON(http.StatusServiceUnavailable, resp)
	}
	return ctx.JSON(http.StatusOK, resp)
}
