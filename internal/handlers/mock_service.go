package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"heater_bridge"
	"heater_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockCommands struct {
	setPowerErr error
	setTempErr  error

	setPowerCalls int
	setTempCalls  int
	lastPowerOn   bool
	lastTargetC   float64
}

func (m *mockCommands) SetPower(ctx context.Context, on bool) error {
	m.setPowerCalls++
	m.lastPowerOn = on
	return m.setPowerErr
}
func (m *mockCommands) SetTargetTemperature(ctx context.Context, celsius float64) error {
	m.setTempCalls++
	m.lastTargetC = celsius
	return m.setTempErr
}

type mockMonitoring struct {
	state       heater_bridge.ControllerState
	stateErr    error
	readings    []heater_bridge.Reading
	readingsErr error
	lastLimit   int
}

func (m *mockMonitoring) GetState(ctx context.Context) (heater_bridge.ControllerState, error) {
	return m.state, m.stateErr
}
func (m *mockMonitoring) ListReadings(ctx context.Context, limit int) ([]heater_bridge.Reading, error) {
	m.lastLimit = limit
	return m.readings, m.readingsErr
}

type mockEventLog struct {
	resp     []heater_bridge.HeaterEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]heater_bridge.HeaterEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// mockPoller satisfies service.Poller for websocket and state routes.
type mockPoller struct {
	mu    sync.Mutex
	state heater_bridge.ControllerState

	refreshes int
	updates   chan heater_bridge.ControllerState
}

func newMockPoller(st heater_bridge.ControllerState) *mockPoller {
	return &mockPoller{state: st, updates: make(chan heater_bridge.ControllerState, 8)}
}

func (m *mockPoller) Probe(ctx context.Context) error                 { return nil }
func (m *mockPoller) Run(ctx context.Context, interval time.Duration) {}
func (m *mockPoller) TriggerRefresh() {
	m.mu.Lock()
	m.refreshes++
	m.mu.Unlock()
}
func (m *mockPoller) State() heater_bridge.ControllerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
func (m *mockPoller) Subscribe() (<-chan heater_bridge.ControllerState, func()) {
	return m.updates, func() {}
}

// push feeds an update to websocket subscribers.
func (m *mockPoller) push(st heater_bridge.ControllerState) {
	m.mu.Lock()
	m.state = st
	m.mu.Unlock()
	m.updates <- st
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
