// Package diagram serves an interactive ER diagram over a WebSocket. A
// client loads a legacy form once, then requests layouts as it toggles
// external entities. A newer layout request cancels the one in flight, and
// results of superseded requests are never sent.
package diagram

import (
	"encoding/json"

	"github.com/matthewbaird/formforge/internal/diagnostic"
	"github.com/matthewbaird/formforge/internal/er"
)

// Message types.
const (
	TypeLoad    = "load"
	TypeLayout  = "layout"
	TypePing    = "ping"
	TypeSession = "session"
	TypeGraph   = "graph"
	TypeResult  = "result"
	TypeError   = "error"
	TypePong    = "pong"
)

// ── Client → Server messages ────────────────────────────────────────────────

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string          `json:"type"` // "load", "layout", "ping"
	ID   string          `json:"id"`   // Client-assigned request ID
	Data json.RawMessage `json:"data,omitempty"`
}

// LoadData carries the legacy form document to diagram.
type LoadData struct {
	Document string `json:"document"`
}

// LayoutData requests a layout. Seq orders requests; zero means the next
// number after the latest request.
type LayoutData struct {
	ShowExternal bool  `json:"show_external"`
	Seq          int64 `json:"seq,omitempty"`
}

// ── Server → Client messages ────────────────────────────────────────────────

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type      string `json:"type"` // "session", "graph", "result", "error", "pong"
	RequestID string `json:"request_id,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// SessionData carries session information.
type SessionData struct {
	SessionID string `json:"session_id"`
}

// GraphData summarises a loaded graph.
type GraphData struct {
	Entities      int                    `json:"entities"`
	Relationships int                    `json:"relationships"`
	Diagnostics   diagnostic.Diagnostics `json:"diagnostics"`
}

// ResultData is the layout produced for one request.
type ResultData struct {
	Seq     int64      `json:"seq"`
	Diagram er.Diagram `json:"diagram"`
	Elapsed string     `json:"elapsed"`
}

// ErrorData carries an error message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Seq     int64  `json:"seq,omitempty"`
}
