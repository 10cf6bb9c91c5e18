// Package grpc exposes the storefront health over the standard gRPC health protocol.
package grpc

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported next to the overall ("") status.
const ServiceName = "storefront.v1.Catalog"

// Prober checks whether the catalog source answers.
type Prober interface {
	ListCategories(ctx context.Context) ([]string, error)
}

// HealthReporter keeps a health.Server in sync with the catalog source.
type HealthReporter struct {
	server  *health.Server
	prober  Prober
	timeout time.Duration
	logger  *slog.Logger
}

// NewHealthReporter returns a reporter whose server starts NOT_SERVING until the first successful probe.
func NewHealthReporter(prober Prober, timeout time.Duration, logger *slog.Logger) *HealthReporter {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthReporter{
		server:  hs,
		prober:  prober,
		timeout: timeout,
		logger:  logger.With("component", "grpc-health"),
	}
}

func (h *HealthReporter) Server() *health.Server {
	return h.server
}

// Probe queries the catalog once and publishes the result.
func (h *HealthReporter) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	status := healthpb.HealthCheckResponse_SERVING
	if _, err := h.prober.ListCategories(ctx); err != nil {
		h.logger.WarnContext(ctx, "Catalog probe failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
	return status
}

// Run probes every interval until ctx is done, then marks the server as shutting down.
func (h *HealthReporter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	h.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.C:
			h.Probe(ctx)
		}
	}
}
