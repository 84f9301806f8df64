package service

import (
	"context"
	"sync"
	"time"

	"heater_bridge"
	"heater_bridge/internal/logger"
	"heater_bridge/internal/repository"

	"github.com/google/uuid"
)

// Event types recorded by the controller.
const (
	EventStartup      = "STARTUP"
	EventCommand      = "COMMAND"
	EventStatusChange = "STATUS_CHANGE"
	EventPollError    = "POLL_ERROR"
)

// DefaultPollInterval is used when configuration provides no interval.
const DefaultPollInterval = 30 * time.Second

// PollerService owns the poll loop for one heater endpoint. The loop
// goroutine is the only writer of the controller state, which makes every
// fetch single-flight by construction: forced refreshes arriving while a
// poll is in flight coalesce into the 1-buffered refresh channel.
type PollerService struct {
	device    DeviceClient
	eventRepo repository.EventRepo
	readings  repository.ReadingRepo
	log       *logger.Logger

	refreshCh chan struct{}

	mu    sync.RWMutex
	state heater_bridge.ControllerState

	subMu   sync.Mutex
	subs    map[int]chan heater_bridge.ControllerState
	nextSub int
}

func NewPollerService(dev DeviceClient, eventRepo repository.EventRepo, readings repository.ReadingRepo, log *logger.Logger) *PollerService {
	return &PollerService{
		device:    dev,
		eventRepo: eventRepo,
		readings:  readings,
		log:       log,
		refreshCh: make(chan struct{}, 1),
		subs:      make(map[int]chan heater_bridge.ControllerState),
	}
}

// Probe performs the setup-time connectivity check. Unlike steady-state
// polls there is no fallback snapshot to show yet, so a failure is not
// absorbed: it surfaces as NotReadyError and the caller must not start the
// periodic loop.
func (s *PollerService) Probe(ctx context.Context) error {
	status, err := s.device.Status(ctx)
	if err != nil {
		return &NotReadyError{Err: err}
	}
	s.applySuccess(ctx, status, time.Now().UTC())
	_ = s.appendEvent(ctx, EventStartup, "Initial probe succeeded", map[string]any{
		"is_on":  status.IsOn,
		"temp_c": status.CurrentTempC,
	})
	return nil
}

// TriggerRefresh requests an out-of-cycle poll. Non-blocking: while a poll
// is already pending or in flight, concurrent requests collapse into one.
func (s *PollerService) TriggerRefresh() {
	select {
	case s.refreshCh <- struct{}{}:
	default:
	}
}

// Run polls on the given interval until ctx is canceled. The ticker keeps
// its phase for the life of the loop, so forced refreshes do not shift the
// scheduled tick times.
func (s *PollerService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		case <-s.refreshCh:
		}
		// a tick or refresh may have been queued alongside cancellation;
		// never poll after teardown
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.pollOnce(ctx)
	}
}

// State returns a read-only snapshot of the controller state.
func (s *PollerService) State() heater_bridge.ControllerState {
	s.mu.RLock()
	st := s.state
	s.mu.RUnlock()
	if st.Status != nil {
		cp := *st.Status
		st.Status = &cp
	}
	return st
}

// Subscribe registers a state listener. The returned cancel func must be
// called to release it. Each subscriber gets a 1-buffered channel; a slow
// consumer misses intermediate snapshots rather than blocking the loop.
func (s *PollerService) Subscribe() (<-chan heater_bridge.ControllerState, func()) {
	ch := make(chan heater_bridge.ControllerState, 1)
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
	return ch, cancel
}

func (s *PollerService) pollOnce(ctx context.Context) {
	now := time.Now().UTC()
	status, err := s.device.Status(ctx)
	if err != nil {
		s.applyFailure(ctx, err, now)
		return
	}
	s.applySuccess(ctx, status, now)
}

// applySuccess replaces the snapshot wholesale and clears the error flag.
func (s *PollerService) applySuccess(ctx context.Context, status heater_bridge.DeviceStatus, now time.Time) {
	s.mu.Lock()
	prev := s.state.Status
	changed := prev == nil || *prev != status || s.state.LastError != ""
	statusChanged := prev == nil || *prev != status
	s.state = heater_bridge.ControllerState{
		Status:    &status,
		UpdatedAt: now,
	}
	s.mu.Unlock()

	_ = s.readings.Append(ctx, heater_bridge.Reading{
		RecordedAt:   now,
		IsOn:         status.IsOn,
		CurrentTempC: status.CurrentTempC,
		TargetTempC:  status.TargetTempC,
	})

	if statusChanged && prev != nil {
		_ = s.appendEvent(ctx, EventStatusChange, "Heater status changed", map[string]any{
			"is_on":    status.IsOn,
			"temp_c":   status.CurrentTempC,
			"target_c": status.TargetTempC,
		})
	}
	if changed {
		s.notify()
	}
}

// applyFailure flags the error but keeps the last good snapshot
// (stale-but-available): subscribers keep seeing the previous status.
func (s *PollerService) applyFailure(ctx context.Context, err error, now time.Time) {
	s.mu.Lock()
	changed := s.state.LastError != err.Error()
	s.state.LastError = err.Error()
	s.state.UpdatedAt = now
	s.mu.Unlock()

	if s.log != nil {
		s.log.Errorw("heater_poll_failed", "err", err)
	}
	_ = s.appendEvent(ctx, EventPollError, "Poll failed", map[string]any{"error": err.Error()})

	if changed {
		s.notify()
	}
}

func (s *PollerService) notify() {
	st := s.State()
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- st:
		default:
		}
	}
}

func (s *PollerService) appendEvent(ctx context.Context, typ, desc string, meta map[string]any) error {
	return s.eventRepo.Append(ctx, heater_bridge.HeaterEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        typ,
		Description: desc,
		Metadata:    meta,
	})
}
