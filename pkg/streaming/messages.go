// Package streaming defines the wire messages the websocket storage
// backend exchanges with the replay web server.
package streaming

import (
	"encoding/json"

	"github.com/tommytrillva/midnight-sub001/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartSession  = "start_session"
	TypeEndSession    = "end_session"
	TypeAddVehicle    = "add_vehicle"
	TypeVehicleSample = "vehicle_sample"
	TypeRaceEvent     = "race_event"
	TypeDriftRunStart = "drift_run_start"
	TypeDriftRunEnd   = "drift_run_end"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartSessionPayload carries session and track data.
type StartSessionPayload struct {
	Session *core.Session `json:"session"`
	Track   *core.Track   `json:"track"`
}
