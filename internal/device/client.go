package device

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"heater_bridge"
)

const (
	tokenHeader    = "X-Heater-Token"
	defaultTimeout = 10 * time.Second
)

// Client talks to the heater's local HTTP control API. One Client per
// physical appliance; host and token are fixed after construction.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient builds a client for the heater at host (host[:port], scheme
// optional) authenticating with token. timeout bounds every round-trip;
// zero or negative selects the default.
func NewClient(host, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	base := strings.TrimRight(host, "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{
		baseURL:    base,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// statusResponse mirrors the device's status payload.
type statusResponse struct {
	Power             bool    `json:"power"`
	Temperature       float64 `json:"temperature"`
	TargetTemperature float64 `json:"target_temperature"`
}

type commandRequest struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
}

type commandResponse struct {
	Result string `json:"result"`
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set(tokenHeader, c.token)
	req.Header.Set("Accept", "application/json")
}

// Status fetches the current device snapshot. Any transport, auth or
// malformed-response failure is reported as a ConnectivityError.
func (c *Client) Status(ctx context.Context) (heater_bridge.DeviceStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return heater_bridge.DeviceStatus{}, fmt.Errorf("create status request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return heater_bridge.DeviceStatus{}, &ConnectivityError{Op: "status", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return heater_bridge.DeviceStatus{}, &ConnectivityError{
			Op:  "status",
			Err: fmt.Errorf("unexpected status code %d", resp.StatusCode),
		}
	}

	var sr statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return heater_bridge.DeviceStatus{}, &ConnectivityError{
			Op:  "status",
			Err: fmt.Errorf("decode status response: %w", err),
		}
	}

	return heater_bridge.DeviceStatus{
		IsOn:         sr.Power,
		CurrentTempC: sr.Temperature,
		TargetTempC:  sr.TargetTemperature,
	}, nil
}

// PowerOn turns the heater on.
func (c *Client) PowerOn(ctx context.Context) error {
	return c.command(ctx, "set_power", "on")
}

// PowerOff turns the heater off.
func (c *Client) PowerOff(ctx context.Context) error {
	return c.command(ctx, "set_power", "off")
}

// SetTargetTemperature forwards a new target setpoint in °C. Range checks
// belong to the command layer; the client sends the value as given.
func (c *Client) SetTargetTemperature(ctx context.Context, celsius float64) error {
	return c.command(ctx, "set_target_temperature", celsius)
}

// command posts one RPC-style write to the device and checks the ack.
func (c *Client) command(ctx context.Context, method string, params ...any) error {
	body, err := json.Marshal(commandRequest{Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/command", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ConnectivityError{Op: method, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ConnectivityError{Op: method, Err: fmt.Errorf("unexpected status code %d", resp.StatusCode)}
	}

	var cr commandResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return &ConnectivityError{Op: method, Err: fmt.Errorf("decode command response: %w", err)}
	}
	if cr.Result != "ok" {
		return &ConnectivityError{Op: method, Err: fmt.Errorf("device replied %q", cr.Result)}
	}
	return nil
}
