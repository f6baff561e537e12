package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tommytrillva/midnight-sub001/pkg/core"
	"github.com/tommytrillva/midnight-sub001/pkg/streaming"
)

// messageLog records envelopes received by the test server.
type messageLog struct {
	mu   sync.Mutex
	msgs []streaming.Envelope
}

func (ml *messageLog) add(env streaming.Envelope) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	ml.msgs = append(ml.msgs, env)
}

func (ml *messageLog) types() []string {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	out := make([]string, 0, len(ml.msgs))
	for _, m := range ml.msgs {
		out = append(out, m.Type)
	}
	return out
}

// testServer creates an httptest server that upgrades to WebSocket,
// records received messages, and acks start_session/end_session.
func testServer(t *testing.T) (*httptest.Server, *messageLog) {
	t.Helper()
	ml := &messageLog{}

	upgrader := ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer c.Close()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}

			var env streaming.Envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				continue
			}
			ml.add(env)

			if env.Type == streaming.TypeStartSession || env.Type == streaming.TypeEndSession {
				ack := streaming.AckMessage{Type: "ack", For: env.Type}
				data, _ := json.Marshal(ack)
				if err := c.WriteMessage(ws.TextMessage, data); err != nil {
					return
				}
			}
		}
	}))
	return srv, ml
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestSessionLifecycle(t *testing.T) {
	srv, ml := testServer(t)
	defer srv.Close()

	b := New(Config{URL: wsURL(srv), Secret: "hush"})
	require.NoError(t, b.Init())
	defer b.Close()

	sess := &core.Session{Name: "Midnight Run", TickRate: 60}
	track := &core.Track{Name: "Shutoko Docks"}
	require.NoError(t, b.StartSession(sess, track))

	require.NoError(t, b.AddVehicle(&core.Vehicle{ID: 1, DisplayName: "Raven GT"}))
	require.NoError(t, b.RecordSample(&core.VehicleSample{VehicleID: 1, CaptureFrame: 6}))
	require.NoError(t, b.RecordEvent(&core.RaceEvent{VehicleID: 1, Kind: "gear_shift", Value: 2}))

	require.NoError(t, b.EndSession())

	// Wait briefly for fire-and-forget messages to land.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(ml.types()) >= 5 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	types := ml.types()
	assert.Contains(t, types, streaming.TypeStartSession)
	assert.Contains(t, types, streaming.TypeAddVehicle)
	assert.Contains(t, types, streaming.TypeVehicleSample)
	assert.Contains(t, types, streaming.TypeRaceEvent)
	assert.Contains(t, types, streaming.TypeEndSession)
}

func TestStartSessionPayload(t *testing.T) {
	srv, ml := testServer(t)
	defer srv.Close()

	b := New(Config{URL: wsURL(srv), Secret: "hush"})
	require.NoError(t, b.Init())
	defer b.Close()

	require.NoError(t, b.StartSession(&core.Session{Name: "Dock Sprint"}, &core.Track{Name: "Shutoko Docks"}))

	var payload streaming.StartSessionPayload
	ml.mu.Lock()
	require.NotEmpty(t, ml.msgs)
	require.NoError(t, json.Unmarshal(ml.msgs[0].Payload, &payload))
	ml.mu.Unlock()

	assert.Equal(t, "Dock Sprint", payload.Session.Name)
	assert.Equal(t, "Shutoko Docks", payload.Track.Name)
}

func TestAddDriftRun_AssignsIncrementingIDs(t *testing.T) {
	srv, _ := testServer(t)
	defer srv.Close()

	b := New(Config{URL: wsURL(srv), Secret: "hush"})
	require.NoError(t, b.Init())
	defer b.Close()

	id1, err := b.AddDriftRun(&core.DriftRun{VehicleID: 1})
	require.NoError(t, err)
	id2, err := b.AddDriftRun(&core.DriftRun{VehicleID: 2})
	require.NoError(t, err)

	assert.Equal(t, uint(1), id1)
	assert.Equal(t, uint(2), id2)
}

func TestStartSession_AckTimeoutWithoutServerAck(t *testing.T) {
	// Server that never acks.
	upgrader := ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	b := New(Config{URL: wsURL(srv), Secret: "hush"})
	require.NoError(t, b.Init())
	defer b.Close()

	data, err := marshalEnvelope(streaming.TypeStartSession, nil)
	require.NoError(t, err)
	err = b.conn.sendAndWait(data, streaming.TypeStartSession, 100*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout waiting for ack")
}

func TestInit_DialFailure(t *testing.T) {
	b := New(Config{URL: "ws://127.0.0.1:1", Secret: ""})
	err := b.Init()
	require.Error(t, err)
}
