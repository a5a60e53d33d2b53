package services

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"leadexport/pkg/contracts"
)

// ReadinessCheck reports whether one dependency can serve requests
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthService provides health check functionality
type HealthService struct {
	version   contracts.VersionInfo
	checks    []ReadinessCheck
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service answering readiness with checks
func NewHealthService(logger *slog.Logger, checks ...ReadinessCheck) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	sort.SliceStable(checks, func(i, j int) bool { return checks[i].Name < checks[j].Name })

	return &HealthService{
		version:   contracts.GetVersionInfo(),
		checks:    checks,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version.Version,
	}
}

// ReadinessCheck runs every registered check. Ready reports whether all
// of them passed.
func (hs *HealthService) ReadinessCheck(ctx context.Context) (status HealthStatus, ready bool) {
	status = HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version.Version,
		Services:  make(map[string]ServiceHealth, len(hs.checks)),
	}

	ready = true
	for _, c := range hs.checks {
		if err := c.Check(ctx); err != nil {
			ready = false
			status.Services[c.Name] = ServiceHealth{Status: "not_ready", Message: err.Error()}
			hs.logger.WarnContext(ctx, "readiness check failed",
				slog.String("check", c.Name),
				slog.String("error", err.Error()))
			continue
		}
		status.Services[c.Name] = ServiceHealth{Status: "ready"}
	}

	if !ready {
		status.Status = "not_ready"
	}
	return status, ready
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version.Version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version.Version,
		"api_version":  hs.version.APIVersion,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	if hs.version.BuildTime != "" {
		result["build_time"] = hs.version.BuildTime
	}
	if hs.version.GitCommit != "" {
		result["git_commit"] = hs.version.GitCommit
	}

	return result
}
