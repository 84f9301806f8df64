package service

import (
	"context"
	"fmt"
	"time"

	"heater_bridge"
	"heater_bridge/internal/repository"

	"github.com/google/uuid"
)

// Target temperature bounds supported by the heater, in °C.
const (
	MinTargetC = 16.0
	MaxTargetC = 32.0
)

// Refresher is the piece of the poller commands need: an out-of-cycle poll.
type Refresher interface {
	TriggerRefresh()
}

// CommandService validates and forwards user commands to the device, then
// requests a forced refresh. Commands never mutate controller state
// directly; the refresh is what makes the new truth visible.
type CommandService struct {
	device    DeviceClient
	refresher Refresher
	eventRepo repository.EventRepo
}

func NewCommandService(dev DeviceClient, refresher Refresher, eventRepo repository.EventRepo) *CommandService {
	return &CommandService{device: dev, refresher: refresher, eventRepo: eventRepo}
}

// SetPower turns the heater on or off. The refresh fires even when the
// command errors: the device may have toggled despite a failed response,
// and the follow-up poll is the only way to learn the truth.
func (s *CommandService) SetPower(ctx context.Context, on bool) error {
	defer s.refresher.TriggerRefresh()

	var err error
	if on {
		err = s.device.PowerOn(ctx)
	} else {
		err = s.device.PowerOff(ctx)
	}

	s.appendCommandEvent(ctx, fmt.Sprintf("Power set to %v", on), map[string]any{
		"command": "set_power",
		"on":      on,
		"ok":      err == nil,
	})
	return err
}

// SetTargetTemperature forwards a new setpoint. Out-of-range values are
// rejected locally with ValidationError and never reach the device — and
// trigger no refresh, since nothing can have changed.
func (s *CommandService) SetTargetTemperature(ctx context.Context, celsius float64) error {
	if celsius < MinTargetC || celsius > MaxTargetC {
		return &ValidationError{
			Field:  "target_temp_c",
			Reason: fmt.Sprintf("%.1f is outside [%.0f, %.0f]", celsius, MinTargetC, MaxTargetC),
		}
	}

	defer s.refresher.TriggerRefresh()

	err := s.device.SetTargetTemperature(ctx, celsius)

	s.appendCommandEvent(ctx, fmt.Sprintf("Target temperature set to %.1f°C", celsius), map[string]any{
		"command":  "set_target_temperature",
		"target_c": celsius,
		"ok":       err == nil,
	})
	return err
}

// appendCommandEvent logs the command best-effort; a full event log must
// never block or fail a command.
func (s *CommandService) appendCommandEvent(ctx context.Context, desc string, meta map[string]any) {
	_ = s.eventRepo.Append(ctx, heater_bridge.HeaterEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        EventCommand,
		Description: desc,
		Metadata:    meta,
	})
}
