package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"leadexport/pkg/contracts"
)

func TestHealthService_ReadinessCheck(t *testing.T) {
	ok := ReadinessCheck{Name: "exporter", Check: func(context.Context) error { return nil }}
	failing := ReadinessCheck{Name: "telemetry", Check: func(context.Context) error { return errors.New("meter provider shut down") }}

	t.Run("all ready", func(t *testing.T) {
		hs := NewHealthService(nil, ok)
		status, ready := hs.ReadinessCheck(context.Background())
		assert.True(t, ready)
		assert.Equal(t, "ready", status.Status)
		assert.Equal(t, "ready", status.Services["exporter"].Status)
	})

	t.Run("one failing", func(t *testing.T) {
		hs := NewHealthService(nil, ok, failing)
		status, ready := hs.ReadinessCheck(context.Background())
		assert.False(t, ready)
		assert.Equal(t, "not_ready", status.Status)
		assert.Equal(t, "meter provider shut down", status.Services["telemetry"].Message)
	})
}

func TestHealthService_Liveness(t *testing.T) {
	hs := NewHealthService(nil)
	status := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", status.Status)
	assert.Equal(t, contracts.Version, status.Version)
	assert.Contains(t, status.Runtime, "goroutines")
}

func TestHealthService_Version(t *testing.T) {
	v := NewHealthService(nil).Version()
	assert.Equal(t, contracts.Version, v["version"])
	assert.Equal(t, contracts.APIVersion, v["api_version"])
}
