package http_handlers

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jiayou/auth-service/internal/logger"
	"github.com/jiayou/auth-service/internal/transport/http/response"
)

const readinessTimeout = 2 * time.Second

// Check is one dependency probed by /readyz. A failing non-critical check is
// reported but keeps the instance ready, since its callers fail open.
type Check struct {
	Name     string
	Ping     func(ctx context.Context) error
	Critical bool
}

type HealthHandler struct {
	checks []Check
}

// NewHealthHandler takes no checks when running fully in memory.
func NewHealthHandler(checks ...Check) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Healthz handles GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type readiness struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Readyz handles GET /readyz. Checks run concurrently under one deadline.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	errs := make([]error, len(h.checks))
	var g errgroup.Group
	for i, c := range h.checks {
		g.Go(func() error {
			errs[i] = c.Ping(ctx)
			return nil
		})
	}
	_ = g.Wait()

	out := readiness{Status: "ready"}
	status := http.StatusOK
	for i, c := range h.checks {
		if out.Checks == nil {
			out.Checks = make(map[string]string, len(h.checks))
		}
		if errs[i] == nil {
			out.Checks[c.Name] = "up"
			continue
		}
		out.Checks[c.Name] = "down"
		logger.WithCtx(r.Context()).Warn().Err(errs[i]).Str("check", c.Name).Bool("critical", c.Critical).Msg("readiness check failed")
		if c.Critical {
			out.Status = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}

	response.WriteJSON(w, status, out)
}
