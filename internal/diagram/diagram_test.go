package diagram

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/formforge/internal/er"
	"github.com/matthewbaird/formforge/internal/fmb"
)

func TestSession_Begin(t *testing.T) {
	s := NewSession()
	ctx := context.Background()

	_, _, _, err := s.Begin(ctx, 0, time.Second)
	assert.ErrorIs(t, err, ErrNoGraph)

	s.Load(er.Graph{Entities: []er.Entity{{ID: "A"}}})
	seq1, g, ctx1, err := s.Begin(ctx, 0, time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq1)
	assert.Len(t, g.Entities, 1)

	seq2, _, ctx2, err := s.Begin(ctx, 0, time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq2)
	assert.ErrorIs(t, ctx1.Err(), context.Canceled, "a newer request cancels the older one")
	assert.NoError(t, ctx2.Err())

	seq, _, _, err := s.Begin(ctx, 2, time.Second)
	assert.ErrorIs(t, err, ErrStale)
	assert.Equal(t, int64(2), seq)

	assert.False(t, s.Deliver(1, func() { t.Fatal("superseded result sent") }))
	sent := 0
	assert.True(t, s.Deliver(2, func() { sent++ }))
	assert.False(t, s.Deliver(2, func() { sent++ }), "a result is delivered once")
	assert.Equal(t, 1, sent)

	seq5, _, _, err := s.Begin(ctx, 5, time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(5), seq5)
	seq6, _, _, err := s.Begin(ctx, 0, time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(6), seq6)
}

func TestSession_LoadCancels(t *testing.T) {
	s := NewSession()
	s.Load(er.Graph{})
	seq, _, lctx, err := s.Begin(context.Background(), 0, time.Second)
	require.NoError(t, err)

	s.Load(er.Graph{Entities: []er.Entity{{ID: "B"}}})
	assert.ErrorIs(t, lctx.Err(), context.Canceled)
	assert.False(t, s.Deliver(seq, func() {}))

	next, g, _, err := s.Begin(context.Background(), 0, time.Second)
	require.NoError(t, err)
	assert.Equal(t, seq+1, next, "numbering carries over a load")
	assert.Equal(t, "B", g.Entities[0].ID)
}

func TestSession_Timeout(t *testing.T) {
	s := NewSession()
	s.Load(er.Graph{})
	_, _, lctx, err := s.Begin(context.Background(), 0, time.Millisecond)
	require.NoError(t, err)
	<-lctx.Done()
	assert.ErrorIs(t, lctx.Err(), context.DeadlineExceeded)
}

func TestManager(t *testing.T) {
	m := NewManager()
	s := m.Create()
	assert.Equal(t, 1, m.Len())
	assert.Same(t, s, m.Get(s.ID))
	assert.Nil(t, m.Get("nope"))

	s.Load(er.Graph{})
	_, _, lctx, err := s.Begin(context.Background(), 0, time.Second)
	require.NoError(t, err)

	m.Remove(s.ID)
	assert.Equal(t, 0, m.Len())
	assert.ErrorIs(t, lctx.Err(), context.Canceled)
	m.Remove(s.ID)
}

// externalBlocks lays out normally unless external entities are shown, in
// which case it waits for cancellation.
type externalBlocks struct {
	started chan struct{}
}

func (b externalBlocks) Layout(ctx context.Context, nodes []er.Node, edges []er.Edge) ([]er.Node, error) {
	if lo.SomeBy(nodes, func(n er.Node) bool { return strings.HasPrefix(n.ID, "ext:") }) {
		b.started <- struct{}{}
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return er.Layered{}.Layout(ctx, nodes, edges)
}

type envelope struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
}

type wsClient struct {
	t    *testing.T
	ctx  context.Context
	conn *websocket.Conn
}

func dial(t *testing.T, h *Handler) *wsClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return &wsClient{t: t, ctx: ctx, conn: conn}
}

func (c *wsClient) send(typ, id string, data any) {
	c.t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(c.t, err)
	require.NoError(c.t, wsjson.Write(c.ctx, c.conn, ClientMessage{Type: typ, ID: id, Data: raw}))
}

func (c *wsClient) read() envelope {
	c.t.Helper()
	var env envelope
	require.NoError(c.t, wsjson.Read(c.ctx, c.conn, &env))
	return env
}

func (c *wsClient) readError() ErrorData {
	c.t.Helper()
	env := c.read()
	require.Equal(c.t, TypeError, env.Type, string(env.Data))
	var e ErrorData
	require.NoError(c.t, json.Unmarshal(env.Data, &e))
	return e
}

func orders(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("..", "fmb", "testdata", "orders.xml"))
	require.NoError(t, err)
	return string(b)
}

func TestHandler_Supersede(t *testing.T) {
	started := make(chan struct{}, 1)
	h := NewHandler(NewManager(), Options{Layouter: externalBlocks{started: started}, Timeout: 5 * time.Second})
	c := dial(t, h)

	env := c.read()
	require.Equal(t, TypeSession, env.Type)
	var sd SessionData
	require.NoError(t, json.Unmarshal(env.Data, &sd))
	assert.NotEmpty(t, sd.SessionID)
	assert.NotNil(t, h.Sessions().Get(sd.SessionID))

	c.send(TypeLayout, "early", LayoutData{})
	assert.Equal(t, "no_graph", c.readError().Code)

	c.send(TypeLoad, "l1", LoadData{Document: orders(t)})
	env = c.read()
	require.Equal(t, TypeGraph, env.Type)
	assert.Equal(t, "l1", env.RequestID)
	var gd GraphData
	require.NoError(t, json.Unmarshal(env.Data, &gd))
	assert.Positive(t, gd.Entities)
	assert.Positive(t, gd.Relationships)

	c.send(TypeLayout, "a", LayoutData{ShowExternal: true, Seq: 1})
	select {
	case <-started:
	case <-c.ctx.Done():
		t.Fatal("layout with externals never started")
	}
	c.send(TypeLayout, "b", LayoutData{ShowExternal: false, Seq: 2})

	env = c.read()
	require.Equal(t, TypeResult, env.Type, string(env.Data))
	assert.Equal(t, "b", env.RequestID)
	var rd ResultData
	require.NoError(t, json.Unmarshal(env.Data, &rd))
	assert.Equal(t, int64(2), rd.Seq)
	assert.False(t, rd.Diagram.Graph.ShowExternal)
	assert.NotEmpty(t, rd.Diagram.Nodes)
	for _, n := range rd.Diagram.Nodes {
		assert.False(t, strings.HasPrefix(n.ID, "ext:"), n.ID)
	}

	c.send(TypeLayout, "c", LayoutData{Seq: 1})
	stale := c.readError()
	assert.Equal(t, "stale_request", stale.Code)
	assert.Equal(t, int64(1), stale.Seq)

	c.send(TypePing, "p", nil)
	env = c.read()
	assert.Equal(t, TypePong, env.Type)
	assert.Equal(t, "p", env.RequestID)
}

func TestHandler_Errors(t *testing.T) {
	c := dial(t, NewHandler(NewManager(), Options{}))
	require.Equal(t, TypeSession, c.read().Type)

	c.send("render", "x", nil)
	assert.Equal(t, "unknown_type", c.readError().Code)

	c.send(TypeLoad, "y", "not an object")
	assert.Equal(t, "invalid_data", c.readError().Code)

	c.send(TypeLoad, "z", LoadData{})
	assert.Equal(t, "empty_document", c.readError().Code)
}

func TestHandler_LayoutError(t *testing.T) {
	h := NewHandler(NewManager(), Options{Layouter: externalBlocks{started: make(chan struct{}, 1)}, Timeout: 10 * time.Millisecond})
	c := dial(t, h)
	require.Equal(t, TypeSession, c.read().Type)

	c.send(TypeLoad, "l", LoadData{Document: orders(t)})
	require.Equal(t, TypeGraph, c.read().Type)

	c.send(TypeLayout, "a", LayoutData{ShowExternal: true})
	e := c.readError()
	assert.Equal(t, "layout_error", e.Code)
	assert.Equal(t, int64(1), e.Seq)
}

func TestHandler_RemovesSessionOnClose(t *testing.T) {
	m := NewManager()
	c := dial(t, NewHandler(m, Options{FMB: fmb.Options{}}))
	require.Equal(t, TypeSession, c.read().Type)
	assert.Equal(t, 1, m.Len())

	require.NoError(t, c.conn.Close(websocket.StatusNormalClosure, ""))
	assert.Eventually(t, func() bool { return m.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}
