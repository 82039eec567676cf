package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treeline/internal/config"
	"treeline/internal/operations"
)

func testServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	hub := NewHub()
	srv := New(nil, config.New(), nil, nil, nil, nil, hub)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func TestHealthEndpoint(t *testing.T) {
	_, ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "not configured", health.Database)
}

func TestListRunsWithoutDatabase(t *testing.T) {
	_, ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/runs")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHubBroadcastWithoutClients(t *testing.T) {
	hub := NewHub()
	assert.NotPanics(t, func() {
		hub.Broadcast(operations.Event{Type: operations.EventRunStarted})
	})
	assert.Equal(t, 0, hub.ClientCount())
}

func TestWebSocketReceivesBroadcastEvents(t *testing.T) {
	srv, ts := testServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return srv.hub.ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	srv.hub.Broadcast(operations.Event{
		Type:         operations.EventContextCompleted,
		RunID:        "run-1",
		WorktreeName: "feature-1",
		ExitCode:     0,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event operations.Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, operations.EventContextCompleted, event.Type)
	assert.Equal(t, "feature-1", event.WorktreeName)
}

func TestHubDropsClosedClients(t *testing.T) {
	srv, ts := testServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return srv.hub.ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	conn.Close()

	// The next broadcast notices the dead connection and evicts it
	require.Eventually(t, func() bool {
		srv.hub.Broadcast(operations.Event{Type: operations.EventRunStarted})
		return srv.hub.ClientCount() == 0
	}, 2*time.Second, 50*time.Millisecond)
}
