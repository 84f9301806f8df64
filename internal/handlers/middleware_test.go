package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"heater_bridge"
	"heater_bridge/internal/service"
)

func TestUserIdMiddleware(t *testing.T) {
	cases := []struct {
		name     string
		header   string
		parseErr error
		want     int
	}{
		{"missing header", "", nil, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc123", nil, http.StatusUnauthorized},
		{"no token part", "Bearer", nil, http.StatusUnauthorized},
		{"invalid token", "Bearer bad", errors.New("signature invalid"), http.StatusUnauthorized},
		{"valid token", "Bearer good", nil, http.StatusOK},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			auth := &mockAuth{parseID: 42, parseErr: tc.parseErr}
			mon := &mockMonitoring{state: heater_bridge.ControllerState{}}
			s := &service.Service{Authorization: auth, Monitoring: mon}
			r := newTestRouter(s)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/heater/state", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("status=%d, want %d (body=%s)", w.Code, tc.want, w.Body.String())
			}
			if tc.want == http.StatusOK && auth.lastParseToken != "good" {
				t.Fatalf("token not forwarded to parser: %q", auth.lastParseToken)
			}
		})
	}
}
