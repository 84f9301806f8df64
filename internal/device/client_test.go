package device

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type recordedCommand struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
}

// newDeviceServer fakes the heater's local control API: GET /status and
// POST /command, both guarded by the token header.
func newDeviceServer(t *testing.T, token string, status map[string]any, commands *[]recordedCommand) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Heater-Token") != token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(status)
	})
	mux.HandleFunc("/command", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Heater-Token") != token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var cmd recordedCommand
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		*commands = append(*commands, cmd)
		_ = json.NewEncoder(w).Encode(map[string]string{"result": "ok"})
	})
	return httptest.NewServer(mux)
}

func TestClient_Status(t *testing.T) {
	var commands []recordedCommand
	srv := newDeviceServer(t, "secret", map[string]any{
		"power":              true,
		"temperature":        21.5,
		"target_temperature": 23.0,
	}, &commands)
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Second)
	st, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !st.IsOn || st.CurrentTempC != 21.5 || st.TargetTempC != 23.0 {
		t.Fatalf("unexpected status: %+v", st)
	}
}

func TestClient_Status_WrongToken(t *testing.T) {
	var commands []recordedCommand
	srv := newDeviceServer(t, "secret", map[string]any{"power": false}, &commands)
	defer srv.Close()

	c := NewClient(srv.URL, "wrong", time.Second)
	_, err := c.Status(context.Background())
	if err == nil {
		t.Fatalf("expected error for rejected token")
	}
	if !IsConnectivity(err) {
		t.Fatalf("expected ConnectivityError, got %T: %v", err, err)
	}
}

func TestClient_Status_ServerUnreachable(t *testing.T) {
	var commands []recordedCommand
	srv := newDeviceServer(t, "secret", map[string]any{"power": false}, &commands)
	srv.Close() // connection refused from here on

	c := NewClient(srv.URL, "secret", time.Second)
	_, err := c.Status(context.Background())
	if !IsConnectivity(err) {
		t.Fatalf("expected ConnectivityError, got %T: %v", err, err)
	}
}

func TestClient_Status_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Second)
	_, err := c.Status(context.Background())
	if !IsConnectivity(err) {
		t.Fatalf("expected ConnectivityError, got %T: %v", err, err)
	}
}

func TestClient_Commands(t *testing.T) {
	var commands []recordedCommand
	srv := newDeviceServer(t, "secret", map[string]any{"power": true}, &commands)
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Second)

	if err := c.PowerOn(context.Background()); err != nil {
		t.Fatalf("PowerOn: %v", err)
	}
	if err := c.PowerOff(context.Background()); err != nil {
		t.Fatalf("PowerOff: %v", err)
	}
	if err := c.SetTargetTemperature(context.Background(), 22.5); err != nil {
		t.Fatalf("SetTargetTemperature: %v", err)
	}

	if len(commands) != 3 {
		t.Fatalf("expected 3 commands, got %d", len(commands))
	}
	if commands[0].Method != "set_power" || commands[0].Params[0] != "on" {
		t.Fatalf("unexpected first command: %+v", commands[0])
	}
	if commands[1].Method != "set_power" || commands[1].Params[0] != "off" {
		t.Fatalf("unexpected second command: %+v", commands[1])
	}
	if commands[2].Method != "set_target_temperature" {
		t.Fatalf("unexpected third command: %+v", commands[2])
	}
	// JSON numbers decode as float64
	if got, ok := commands[2].Params[0].(float64); !ok || got != 22.5 {
		t.Fatalf("target temperature forwarded as %v, want 22.5", commands[2].Params[0])
	}
}

func TestClient_Command_DeviceRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"result": "error"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Second)
	err := c.PowerOn(context.Background())
	if !IsConnectivity(err) {
		t.Fatalf("expected ConnectivityError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "set_power") {
		t.Fatalf("error should name the failing op: %v", err)
	}
}

func TestNewClient_DefaultsSchemeAndTimeout(t *testing.T) {
	c := NewClient("192.168.1.40:8080/", "tok", 0)
	if c.baseURL != "http://192.168.1.40:8080" {
		t.Fatalf("baseURL = %q", c.baseURL)
	}
	if c.httpClient.Timeout != defaultTimeout {
		t.Fatalf("timeout = %v, want %v", c.httpClient.Timeout, defaultTimeout)
	}

	c = NewClient("https://heater.local", "tok", 3*time.Second)
	if c.baseURL != "https://heater.local" {
		t.Fatalf("baseURL = %q", c.baseURL)
	}
	if c.httpClient.Timeout != 3*time.Second {
		t.Fatalf("timeout = %v", c.httpClient.Timeout)
	}
}
