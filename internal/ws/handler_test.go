package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DoyleJ11/seat-roulette/internal/engine"
	"github.com/DoyleJ11/seat-roulette/internal/roster"
	"github.com/DoyleJ11/seat-roulette/internal/session"
	"github.com/DoyleJ11/seat-roulette/internal/store"
	"github.com/DoyleJ11/seat-roulette/internal/store/kv"
	"github.com/DoyleJ11/seat-roulette/internal/types"
	"github.com/DoyleJ11/seat-roulette/internal/wheel"
	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// readUntil reads server messages until match returns true.
func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, match func(types.ServerMessage) bool) types.ServerMessage {
	t.Helper()
	for {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		var m types.ServerMessage
		require.NoError(t, json.Unmarshal(data, &m))
		if match(m) {
			return m
		}
	}
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, m types.ClientMessage) {
	t.Helper()
	payload, err := json.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, payload))
}

func TestHandler_SelectAndDraw(t *testing.T) {
	log := zap.NewNop()
	r, err := roster.Sequential(4, 2)
	require.NoError(t, err)
	alloc, err := engine.NewAllocator(r, engine.Layout{Rows: 4, Columns: 1, GroupARows: 2}, func(int) int { return 1 })
	require.NoError(t, err)
	s, err := session.New(context.Background(), session.Config{
		Allocator: alloc,
		Store:     store.New(kv.NewMemory(), "", log),
		Spin:      wheel.Options{Ticks: 2, Interval: time.Millisecond},
		Log:       log,
	})
	require.NoError(t, err)
	defer s.Close()

	srv := httptest.NewServer(Handler(s, log))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	first := readUntil(t, ctx, conn, func(m types.ServerMessage) bool { return m.Type == "StateSnapshot" })
	assert.Equal(t, []string{"1", "2"}, first.Labels)

	send(t, ctx, conn, types.ClientMessage{Type: "Nope"})
	bad := readUntil(t, ctx, conn, func(m types.ServerMessage) bool { return m.Type == "Error" })
	assert.Equal(t, "unknown type", bad.Error)

	send(t, ctx, conn, types.ClientMessage{Type: "Draw"})
	noSeat := readUntil(t, ctx, conn, func(m types.ServerMessage) bool { return m.Type == "Error" })
	assert.Contains(t, noSeat.Error, "no seat selected")

	send(t, ctx, conn, types.ClientMessage{Type: "SelectSeat", Row: 2, Column: 0})
	send(t, ctx, conn, types.ClientMessage{Type: "Draw"})

	stop := readUntil(t, ctx, conn, func(m types.ServerMessage) bool {
		return m.Type == "Frame" && m.Frame.Kind == wheel.FrameStop
	})
	assert.Equal(t, "4", stop.Frame.Winner)

	done := readUntil(t, ctx, conn, func(m types.ServerMessage) bool {
		return m.Type == "StateSnapshot" && m.State.Seats[2].Content != ""
	})
	assert.Equal(t, "Member 4", done.State.Seats[2].Content)
}
