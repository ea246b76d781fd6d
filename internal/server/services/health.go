package services

import (
	"context"
	"time"
)

const healthTimeout = 3 * time.Second

// Pinger is anything that can report whether its backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Component is one named dependency checked by HealthService.
type Component struct {
	Name   string
	Pinger Pinger
}

// HealthReport is the outcome of one health check.
type HealthReport struct {
	Healthy    bool              `json:"healthy"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	components []Component
}

func NewHealthService(components ...Component) *HealthService {
	return &HealthService{components: components}
}

// Check pings every component. Failure details are not reported, only "down".
func (h *HealthService) Check(ctx context.Context) HealthReport {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	r := HealthReport{Healthy: true, Components: make(map[string]string, len(h.components))}
	for _, c := range h.components {
		if err := c.Pinger.Ping(ctx); err != nil {
			r.Healthy = false
			r.Components[c.Name] = "down"
			continue
		}
		r.Components[c.Name] = "ok"
	}
	return r
}
