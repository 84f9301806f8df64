package service

import (
	"context"

	"heater_bridge"
	"heater_bridge/internal/repository"
)

const (
	defaultReadingsLimit = 50
	maxReadingsLimit     = 500
)

// StateSource is the read side of the poller.
type StateSource interface {
	State() heater_bridge.ControllerState
}

type MonitoringService struct {
	source   StateSource
	readings repository.ReadingRepo
}

func NewMonitoringService(source StateSource, readings repository.ReadingRepo) *MonitoringService {
	return &MonitoringService{source: source, readings: readings}
}

// GetState returns the controller's current snapshot. Before the first
// successful poll Status is nil; after a failed poll the last good Status
// is still present alongside LastError.
func (s *MonitoringService) GetState(ctx context.Context) (heater_bridge.ControllerState, error) {
	return s.source.State(), nil
}

// ListReadings returns the most recent telemetry samples, newest first.
func (s *MonitoringService) ListReadings(ctx context.Context, limit int) ([]heater_bridge.Reading, error) {
	if limit <= 0 {
		limit = defaultReadingsLimit
	}
	if limit > maxReadingsLimit {
		limit = maxReadingsLimit
	}
	return s.readings.ListRecent(ctx, limit)
}
