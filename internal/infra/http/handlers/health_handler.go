package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type ConnectionState interface {
	IsClosed() bool
}

// HealthHandler reports the registration store, the email queue and the duplicate guard.
// Nil dependencies are reported as "not configured".
type HealthHandler struct {
	Store     Pinger
	RabbitMQ  ConnectionState
	Guard     Pinger
	StartTime time.Time
	Version   string
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(store Pinger, rabbitMQ ConnectionState, guard Pinger, version string) *HealthHandler {
	return &HealthHandler{
		Store:     store,
		RabbitMQ:  rabbitMQ,
		Guard:     guard,
		StartTime: time.Now(),
		Version:   version,
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	deps := map[string]string{
		"store": ping(ctx, h.Store),
		"redis": ping(ctx, h.Guard),
	}

	if h.RabbitMQ != nil {
		if h.RabbitMQ.IsClosed() {
			deps["rabbitmq"] = "unhealthy: connection closed"
		} else {
			deps["rabbitmq"] = "healthy"
		}
	} else {
		deps["rabbitmq"] = "not configured"
	}

	status := "healthy"
	for _, v := range deps {
		if v != "healthy" && v != "not configured" {
			status = "degraded"
			break
		}
	}

	response := HealthResponse{
		Status:       status,
		Version:      h.Version,
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	}

	w.Header().Set("Content-Type", "application/json")
	if status == "degraded" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

func ping(ctx context.Context, p Pinger) string {
	if p == nil {
		return "not configured"
	}
	if err := p.Ping(ctx); err != nil {
		return fmt.Sprintf("unhealthy: %v", err)
	}
	return "healthy"
}
