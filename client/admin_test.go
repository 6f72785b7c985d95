package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugMux_State(t *testing.T) {
	s, _, _ := ready(t)
	s.handleMessage(frame(t, "rs", scenarioRoomState))
	mux := NewDebugMux(s)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/state", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var body struct {
		Player   string       `json:"player"`
		State    string       `json:"state"`
		Players  []Player     `json:"players"`
		Course   *Course      `json:"course"`
		Messages MessageTable `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "me", body.Player)
	assert.Equal(t, "ready", body.State)
	require.Len(t, body.Players, 1)
	assert.Equal(t, "a", body.Players[0].ID)
	require.NotNil(t, body.Course)
	assert.Len(t, body.Course.Walls, 1)
	assert.Equal(t, testTable, body.Messages)
}

func TestDebugMux_Metrics(t *testing.T) {
	s, _, _ := ready(t)
	s.handleMessage(frame(t, "gs", `{"players":[]}`))
	s.handleMessage(frame(t, "nope", nil))
	mux := NewDebugMux(s)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Metrics map[string]float64 `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, float64(3), body.Metrics["messages_received"])
	assert.Equal(t, float64(1), body.Metrics["decode_errors"])
	assert.Equal(t, float64(1), body.Metrics["unknown_tags"])
	assert.Equal(t, float64(2), body.Metrics["events_emitted"])
}

func TestDebugMux_MethodNotAllowed(t *testing.T) {
	s, _, _ := ready(t)
	mux := NewDebugMux(s)

	for _, path := range []string{"/state", "/metrics"} {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code, path)
	}

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, "ok", rr.Body.String())
}
