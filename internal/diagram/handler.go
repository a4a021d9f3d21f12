package diagram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/matthewbaird/formforge/internal/er"
	"github.com/matthewbaird/formforge/internal/fmb"
)

// DefaultTimeout bounds one layout.
const DefaultTimeout = 5 * time.Second

// Options configures a Handler.
type Options struct {
	FMB      fmb.Options
	Layouter er.Layouter
	Timeout  time.Duration
}

// Handler manages WebSocket connections for diagram sessions.
type Handler struct {
	sessions *Manager
	opts     Options
}

// NewHandler creates a WebSocket handler.
func NewHandler(sessions *Manager, opts Options) *Handler {
	if opts.Layouter == nil {
		opts.Layouter = er.Sugiyama{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Handler{sessions: sessions, opts: opts}
}

// Sessions returns the session manager.
func (h *Handler) Sessions() *Manager { return h.sessions }

// ServeHTTP upgrades to WebSocket and runs the message loop.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := zerolog.Ctx(r.Context())
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Warn().Err(err).Msg("diagram: websocket accept")
		return
	}
	defer conn.CloseNow()

	sess := h.sessions.Create()
	defer h.sessions.Remove(sess.ID)

	var wg sync.WaitGroup
	defer wg.Wait()
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := &client{conn: conn, log: log}

	c.send(ctx, ServerMessage{Type: TypeSession, Data: SessionData{SessionID: sess.ID}})

	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				log.Debug().Err(err).Msg("diagram: read")
			}
			return
		}

		switch msg.Type {
		case TypeLoad:
			h.handleLoad(ctx, c, sess, msg)
		case TypeLayout:
			h.handleLayout(ctx, c, sess, msg, &wg)
		case TypePing:
			c.send(ctx, ServerMessage{Type: TypePong, RequestID: msg.ID})
		default:
			c.sendError(ctx, msg.ID, ErrorData{Code: "unknown_type", Message: fmt.Sprintf("unknown message type: %s", msg.Type)})
		}
	}
}

func (h *Handler) handleLoad(ctx context.Context, c *client, sess *Session, msg ClientMessage) {
	var data LoadData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		c.sendError(ctx, msg.ID, ErrorData{Code: "invalid_data", Message: "invalid load data"})
		return
	}
	if data.Document == "" {
		c.sendError(ctx, msg.ID, ErrorData{Code: "empty_document", Message: "empty document"})
		return
	}

	g := er.Derive(fmb.Parse(data.Document, h.opts.FMB))
	sess.Load(g)
	c.send(ctx, ServerMessage{
		Type:      TypeGraph,
		RequestID: msg.ID,
		Data: GraphData{
			Entities:      len(g.Entities),
			Relationships: len(g.Relationships),
			Diagnostics:   g.Diagnostics,
		},
	})
}

// handleLayout starts the layout in the background so that the read loop
// can accept the request that supersedes it.
func (h *Handler) handleLayout(ctx context.Context, c *client, sess *Session, msg ClientMessage, wg *sync.WaitGroup) {
	var data LayoutData
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(ctx, msg.ID, ErrorData{Code: "invalid_data", Message: "invalid layout data"})
			return
		}
	}

	seq, g, lctx, err := sess.Begin(ctx, data.Seq, h.opts.Timeout)
	switch {
	case errors.Is(err, ErrNoGraph):
		c.sendError(ctx, msg.ID, ErrorData{Code: "no_graph", Message: err.Error()})
		return
	case errors.Is(err, ErrStale):
		c.sendError(ctx, msg.ID, ErrorData{Code: "stale_request", Message: err.Error(), Seq: seq})
		return
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		start := time.Now()
		d, err := er.Arrange(lctx, g, data.ShowExternal, h.opts.Layouter)
		delivered := sess.Deliver(seq, func() {
			if err != nil {
				c.sendError(ctx, msg.ID, ErrorData{Code: "layout_error", Message: err.Error(), Seq: seq})
				return
			}
			c.send(ctx, ServerMessage{
				Type:      TypeResult,
				RequestID: msg.ID,
				Data:      ResultData{Seq: seq, Diagram: d, Elapsed: time.Since(start).String()},
			})
		})
		if !delivered {
			c.log.Debug().Int64("seq", seq).Msg("diagram: dropped superseded layout")
		}
	}()
}

type client struct {
	conn *websocket.Conn
	log  *zerolog.Logger
}

func (c *client) send(ctx context.Context, msg ServerMessage) {
	if err := wsjson.Write(ctx, c.conn, msg); err != nil {
		c.log.Debug().Err(err).Msg("diagram: write")
	}
}

func (c *client) sendError(ctx context.Context, requestID string, data ErrorData) {
	c.send(ctx, ServerMessage{Type: TypeError, RequestID: requestID, Data: data})
}
