package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DoyleJ11/seat-roulette/internal/engine"
	"github.com/DoyleJ11/seat-roulette/internal/roster"
	"github.com/DoyleJ11/seat-roulette/internal/session"
	"github.com/DoyleJ11/seat-roulette/internal/store"
	"github.com/DoyleJ11/seat-roulette/internal/store/kv"
	"github.com/DoyleJ11/seat-roulette/internal/wheel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := zaptest.NewLogger(t)

	r, err := roster.Sequential(4, 2)
	require.NoError(t, err)
	alloc, err := engine.NewAllocator(r, engine.Layout{Rows: 4, Columns: 1, GroupARows: 2}, func(int) int { return 0 })
	require.NoError(t, err)

	s, err := session.New(context.Background(), session.Config{
		Allocator: alloc,
		Store:     store.New(kv.NewMemory(), "", log),
		Spin:      wheel.Options{Ticks: 2, Interval: time.Millisecond},
		Log:       log,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(SetupRoutes(s, log))
	t.Cleanup(func() {
		srv.Close()
		s.Close()
	})
	return srv
}

func do(t *testing.T, method, url, body string) (int, stateResponse, errorResponse) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var st stateResponse
	var er errorResponse
	if res.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(res.Body).Decode(&st))
	} else {
		require.NoError(t, json.NewDecoder(res.Body).Decode(&er))
	}
	return res.StatusCode, st, er
}

func TestRoutes_DrawCycle(t *testing.T) {
	srv := newServer(t)

	status, _, _ := do(t, http.MethodGet, srv.URL+"/healthz", "")
	require.Equal(t, http.StatusOK, status)

	status, _, er := do(t, http.MethodPost, srv.URL+"/api/draw", "")
	require.Equal(t, http.StatusConflict, status)
	assert.Contains(t, er.Error, "no seat selected")

	status, st, _ := do(t, http.MethodPost, srv.URL+"/api/seats/0/0/select", "")
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, st.State.Selected)
	assert.Equal(t, []string{"1", "2"}, st.Labels)

	status, st, _ = do(t, http.MethodPost, srv.URL+"/api/draw", "")
	require.Equal(t, http.StatusAccepted, status)

	deadline := time.Now().Add(2 * time.Second)
	for st.State.Phase == engine.PhaseDrawing && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
		_, st, _ = do(t, http.MethodGet, srv.URL+"/api/state", "")
	}
	assert.Equal(t, "Member 1", st.State.Seats[0].Content)
	assert.Equal(t, []int{2}, st.State.Pools[roster.GroupA])

	status, _, _ = do(t, http.MethodPost, srv.URL+"/api/seats/0/0/select", "")
	assert.Equal(t, http.StatusConflict, status)
}

func TestRoutes_BadSeat(t *testing.T) {
	srv := newServer(t)

	status, _, _ := do(t, http.MethodPost, srv.URL+"/api/seats/9/0/select", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _, _ = do(t, http.MethodPost, srv.URL+"/api/seats/x/0/select", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRoutes_ResetNeedsConfirmation(t *testing.T) {
	srv := newServer(t)

	status, _, _ := do(t, http.MethodPost, srv.URL+"/api/reset", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _, _ = do(t, http.MethodPost, srv.URL+"/api/reset", `{"confirm":false}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, st, _ := do(t, http.MethodPost, srv.URL+"/api/reset", `{"confirm":true}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, engine.MsgReset, st.State.Message)
	assert.Equal(t, []int{3, 4}, st.State.Pools[roster.GroupB])
}
