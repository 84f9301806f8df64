package heater_bridge

import "time"

// DeviceStatus is one snapshot read from the heater. A successful poll
// replaces the previous snapshot wholesale; readers never see a partial one.
type DeviceStatus struct {
	IsOn         bool    `json:"is_on"`
	CurrentTempC float64 `json:"current_temp_c"` // °C
	TargetTempC  float64 `json:"target_temp_c"`  // °C
}

// ControllerState is what the polling controller knows about the heater.
// Status holds the last successful snapshot and survives poll failures
// (stale-but-available); LastError is non-empty only while the most recent
// poll failed. Rebuilt from the first poll after every restart.
type ControllerState struct {
	Status    *DeviceStatus `json:"status,omitempty"`
	LastError string        `json:"last_error,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// HeaterEvent is a single log entry.
type HeaterEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // STARTUP | COMMAND | STATUS_CHANGE | POLL_ERROR
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}

// Reading is one telemetry sample, recorded on every successful poll.
type Reading struct {
	ID           int64     `json:"id"`
	RecordedAt   time.Time `json:"recorded_at"`
	IsOn         bool      `json:"is_on"`
	CurrentTempC float64   `json:"current_temp_c"`
	TargetTempC  float64   `json:"target_temp_c"`
}

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // don't expose hash
}
