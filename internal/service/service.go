package service

import (
	"context"
	"time"

	"heater_bridge"
	"heater_bridge/internal/logger"
	"heater_bridge/internal/repository"
)

// DeviceClient is the heater's remote status/command API. Every call is a
// blocking network round-trip and must run off the poll loop's hot path.
type DeviceClient interface {
	Status(ctx context.Context) (heater_bridge.DeviceStatus, error)
	PowerOn(ctx context.Context) error
	PowerOff(ctx context.Context) error
	SetTargetTemperature(ctx context.Context, celsius float64) error
}

// Commands exposes the write side: power mode and target temperature.
// Every command is followed by a forced refresh; state is never mutated
// optimistically.
type Commands interface {
	SetPower(ctx context.Context, on bool) error
	SetTargetTemperature(ctx context.Context, celsius float64) error
}

// Monitoring exposes read-only controller state and telemetry history.
type Monitoring interface {
	GetState(ctx context.Context) (heater_bridge.ControllerState, error)
	ListReadings(ctx context.Context, limit int) ([]heater_bridge.Reading, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]heater_bridge.HeaterEvent, error)
}

// Poller owns the poll loop for one heater endpoint.
// Probe is the setup-time connectivity check; Run is the periodic loop,
// stopped via context cancellation in main() for graceful shutdown.
type Poller interface {
	Probe(ctx context.Context) error
	Run(ctx context.Context, interval time.Duration)
	TriggerRefresh()
	State() heater_bridge.ControllerState
	Subscribe() (<-chan heater_bridge.ControllerState, func())
}

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "STARTUP", "COMMAND", "STATUS_CHANGE", "POLL_ERROR"
}

// AuthConfig carries token-signing settings from configuration.
type AuthConfig struct {
	SigningKey string
	TokenTTL   time.Duration
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Commands
	Monitoring
	EventLog
	Poller
	Authorization
}

// NewService wires the device client and repository layer into concrete
// services. The poller is shared: commands push forced refreshes into it,
// monitoring reads its snapshot.
func NewService(repos *repository.Repository, dev DeviceClient, log *logger.Logger, auth AuthConfig) *Service {
	poller := NewPollerService(dev, repos.EventRepo, repos.ReadingRepo, log)
	return &Service{
		Commands:      NewCommandService(dev, poller, repos.EventRepo),
		Monitoring:    NewMonitoringService(poller, repos.ReadingRepo),
		EventLog:      NewEventLogService(repos.EventRepo),
		Poller:        poller,
		Authorization: NewAuthService(repos.Auth, auth),
	}
}
