package services

import (
	"context"

	"github.com/rs/zerolog/log"
)

// HealthResult is the body of GET /health
type HealthResult struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Version  string `json:"version"`
	Database string `json:"database"`
}

// Healthy reports whether every dependency is up
func (h *HealthResult) Healthy() bool {
	return h.Status == "healthy"
}

// HealthService implements the health service
type HealthService struct {
	service string
	version string
	ping    func(ctx context.Context) error
}

// NewHealthService creates a new health service. ping checks the database;
// nil skips the check.
func NewHealthService(service, version string, ping func(ctx context.Context) error) *HealthService {
	return &HealthService{service: service, version: version, ping: ping}
}

// Check implements the health check method
func (s *HealthService) Check(ctx context.Context) (*HealthResult, error) {
	res := &HealthResult{
		Status:   "healthy",
		Service:  s.service,
		Version:  s.version,
		Database: "up",
	}
	if s.ping != nil {
		if err := s.ping(ctx); err != nil {
			log.Warn().Str("component", "health").Err(err).Msg("Database health check failed")
			res.Status = "degraded"
			res.Database = "down"
		}
	}
	return res, nil
}
