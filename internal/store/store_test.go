package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DoyleJ11/seat-roulette/internal/store/kv"
	"github.com/DoyleJ11/seat-roulette/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newStore(t *testing.T) (*Store, *kv.Memory, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.WarnLevel)
	mem := kv.NewMemory()
	return New(mem, "", zap.New(core)), mem, logs
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _, logs := newStore(t)

	cases := []types.Record{
		{Cells: []string{"Member 1", "", "", ""}, AvailableGroupA: []int{2}, AvailableGroupB: []int{3, 4}},
		{Cells: []string{"Member 1", "Member 2", "", ""}, AvailableGroupA: []int{}, AvailableGroupB: []int{4, 3}},
		{Cells: []string{"", "", "", ""}, AvailableGroupA: []int{1, 2}, AvailableGroupB: []int{3, 4}},
	}
	for _, rec := range cases {
		require.NoError(t, s.Save(ctx, rec))
		snap, ok, err := s.Load(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, types.Complete(rec), snap)
	}
	assert.Zero(t, logs.Len())
}

func TestSave_UsesFixedKeyAndShape(t *testing.T) {
	ctx := context.Background()
	s, mem, _ := newStore(t)

	require.NoError(t, s.Save(ctx, types.Record{Cells: []string{"a", ""}}))
	raw, err := mem.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"cells":["a",""],"availableGroupA":[],"availableGroupB":[]}`, string(raw))
}

func TestLoad_Absent(t *testing.T) {
	s, _, _ := newStore(t)
	_, ok, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoad_CorruptRecordIsNoState(t *testing.T) {
	ctx := context.Background()

	for _, raw := range []string{`{not json`, `[1,2,3]`, `"cells"`} {
		s, mem, logs := newStore(t)
		require.NoError(t, mem.Set(ctx, DefaultKey, []byte(raw)))

		_, ok, err := s.Load(ctx)
		require.NoError(t, err, raw)
		assert.False(t, ok, raw)
		assert.Equal(t, 1, logs.FilterMessage("stored record unreadable, starting fresh").Len(), raw)
	}
}

func TestLoad_PartialRecord(t *testing.T) {
	ctx := context.Background()
	s, mem, logs := newStore(t)

	raw := `{"cells":["Member 1",null,"",""],"availableGroupA":"oops","availableGroupB":[3,4.5]}`
	require.NoError(t, mem.Set(ctx, DefaultKey, []byte(raw)))

	snap, ok, err := s.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	assert.True(t, snap.HasCells)
	assert.Equal(t, []string{"Member 1", "", "", ""}, snap.Cells)
	assert.False(t, snap.HasGroupA)
	assert.False(t, snap.HasGroupB, "non-integer id spoils the pool")
	assert.Equal(t, []string{"availableGroupA", "availableGroupB"}, snap.Missing())
	assert.Equal(t, 2, logs.Len())
}

func TestDecode(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    types.Snapshot
		wantErr bool
	}{
		{
			name: "missing pools",
			raw:  `{"cells":[]}`,
			want: types.Snapshot{Cells: []string{}, HasCells: true},
		},
		{
			name: "cells with a number",
			raw:  `{"cells":["a",1],"availableGroupA":[],"availableGroupB":[2]}`,
			want: types.Snapshot{GroupA: []int{}, HasGroupA: true, GroupB: []int{2}, HasGroupB: true},
		},
		{
			name:    "truncated",
			raw:     `{"cells":[`,
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode([]byte(tc.raw))
			if tc.wantErr {
				require.True(t, errors.Is(err, ErrCorruptRecord), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s, mem, _ := newStore(t)

	require.NoError(t, s.Save(ctx, types.Record{}))
	require.NoError(t, s.Clear(ctx))
	_, err := mem.Get(ctx, DefaultKey)
	assert.True(t, errors.Is(err, kv.ErrNotFound))

	require.NoError(t, s.Clear(ctx), "clearing twice is fine")
}
