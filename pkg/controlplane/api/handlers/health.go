package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/CodeArtisanRiz/media-blob-kit/internal/objectstore"
	"github.com/CodeArtisanRiz/media-blob-kit/pkg/controlplane/store"
)

// HealthCheckTimeout bounds how long a readiness probe waits on the database
// and object store before reporting unhealthy.
const HealthCheckTimeout = 5 * time.Second

// HealthHandler handles liveness/readiness endpoints. Both the database and
// object store dependencies are optional so the handler degrades gracefully
// if either is not yet wired.
type HealthHandler struct {
	cpStore   store.HealthStore
	objStore  *objectstore.Client
	startTime time.Time
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(cpStore store.HealthStore, objStore *objectstore.Client) *HealthHandler {
	return &HealthHandler{
		cpStore:   cpStore,
		objStore:  objStore,
		startTime: time.Now(),
	}
}

// Liveness handles GET /health - always succeeds while the process is up.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startTime)
	writeJSON(w, http.StatusOK, healthyResponse(map[string]interface{}{
		"service":    "mediakit",
		"started_at": h.startTime.UTC().Format(time.RFC3339),
		"uptime":     uptime.Round(time.Second).String(),
		"uptime_sec": int64(uptime.Seconds()),
	}))
}

// DependencyHealth reports the health of a single external dependency.
type DependencyHealth struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Readiness handles GET /health/ready - checks the database and object
// store bucket are both reachable. Returns 503 if either is not.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), HealthCheckTimeout)
	defer cancel()

	deps := make([]DependencyHealth, 0, 2)
	allHealthy := true

	if h.cpStore != nil {
		start := time.Now()
		err := h.cpStore.Healthcheck(ctx)
		dep := DependencyHealth{Name: "database", Latency: time.Since(start).String()}
		if err != nil {
			dep.Status = "unhealthy"
			dep.Error = err.Error()
			allHealthy = false
		} else {
			dep.Status = "healthy"
		}
		deps = append(deps, dep)
	}

	if h.objStore != nil {
		start := time.Now()
		err := h.objStore.HeadBucket(ctx)
		dep := DependencyHealth{Name: "object_store", Latency: time.Since(start).String()}
		if err != nil {
			dep.Status = "unhealthy"
			dep.Error = err.Error()
			allHealthy = false
		} else {
			dep.Status = "healthy"
		}
		deps = append(deps, dep)
	}

	if allHealthy {
		writeJSON(w, http.StatusOK, healthyResponse(map[string]interface{}{"dependencies": deps}))
	} else {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponseWithData(map[string]interface{}{"dependencies": deps}))
	}
}
