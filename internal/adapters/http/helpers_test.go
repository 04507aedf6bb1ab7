package http

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/hangout-mates/signaling/internal/app"
	"github.com/hangout-mates/signaling/internal/config"
	"github.com/hangout-mates/signaling/internal/metrics"
)

const readWait = 3 * time.Second

func newTestServer(t *testing.T, policy string, joinLimit int) (*httptest.Server, *metrics.Metrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Mode:         "test",
		StaticPath:   t.TempDir(),
		ReadLimit:    32768,
		WriteTimeout: 5 * time.Second,
		SendBuffer:   32,
		RoomPolicy:   policy,
		JoinLimit:    joinLimit,
		JoinInterval: time.Minute,
		Secret:       "test-secret",
	}

	m := metrics.New()
	bc := app.NewBroadcaster(m)
	dir := app.NewDirectory(app.RoomPolicy(policy), bc)
	orch := app.NewOrchestrator(app.NewRegistry(), dir, bc, m)

	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(SetupRouter(ctx, cfg, orch, m))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv, m
}

// event is the union of every relay->client frame shape.
type event struct {
	Type         string `json:"type"`
	UserID       string `json:"userId"`
	UserName     string `json:"userName"`
	Participants []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"participants"`
	SignalData json.RawMessage `json:"signalData"`
	Name       string          `json:"name"`
	Message    string          `json:"message"`
	Code       string          `json:"code"`
}

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
	// ID is the connection id announced by the relay at connect time.
	ID string
}

func dialWS(t *testing.T, srv *httptest.Server) *wsClient {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	c := &wsClient{t: t, conn: conn}
	t.Cleanup(func() { conn.Close() })

	hello := c.expect("connected")
	require.NotEmpty(t, hello.UserID)
	c.ID = hello.UserID
	return c
}

func (c *wsClient) send(v any) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteJSON(v))
}

// next reads one frame or fails the test on timeout.
func (c *wsClient) next() event {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(readWait)))
	_, data, err := c.conn.ReadMessage()
	require.NoError(c.t, err, "expected a frame")
	var e event
	require.NoError(c.t, json.Unmarshal(data, &e))
	return e
}

// expect reads one frame and asserts its type.
func (c *wsClient) expect(typ string) event {
	c.t.Helper()
	e := c.next()
	require.Equal(c.t, typ, e.Type)
	return e
}

// expectSilence asserts no frame arrives for a short while. Gorilla treats a
// read error as fatal for the connection, so this must be the last read a
// test performs on this client.
func (c *wsClient) expectSilence(d time.Duration) {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(d)))
	_, data, err := c.conn.ReadMessage()
	if err == nil {
		c.t.Fatalf("expected silence, got frame %s", data)
	}
	var nerr net.Error
	if !errors.As(err, &nerr) || !nerr.Timeout() {
		c.t.Fatalf("expected read timeout, got %v", err)
	}
}

func (c *wsClient) join(roomID, name string) {
	c.t.Helper()
	c.send(map[string]string{"type": "join-room", "roomId": roomID, "userName": name})
}

func mintRoom(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/rooms", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		RoomID string `json:"roomId"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.RoomID, 4)
	return body.RoomID
}

func ids(e event) []string {
	out := make([]string, 0, len(e.Participants))
	for _, p := range e.Participants {
		out = append(out, p.ID)
	}
	return out
}
