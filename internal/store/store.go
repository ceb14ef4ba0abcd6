// Package store saves and restores the allocation record under one key.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DoyleJ11/seat-roulette/internal/store/kv"
	"github.com/DoyleJ11/seat-roulette/pkg/types"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// DefaultKey is the storage key of the record.
const DefaultKey = "roulette_group_state_v2"

// ErrCorruptRecord marks a stored value that is not a JSON object. It is
// logged and treated as "no prior state"; callers never see it from Load.
var ErrCorruptRecord = errors.New("corrupt stored record")

type Store struct {
	kv  kv.Store
	key string
	log *zap.Logger
}

func New(backend kv.Store, key string, log *zap.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{kv: backend, key: key, log: log.With(zap.String("key", key))}
}

func (s *Store) Key() string { return s.key }

// Save overwrites the stored record.
func (s *Store) Save(ctx context.Context, r types.Record) error {
	// Empty pools must round-trip as [] rather than null.
	if r.Cells == nil {
		r.Cells = []string{}
	}
	if r.AvailableGroupA == nil {
		r.AvailableGroupA = []int{}
	}
	if r.AvailableGroupB == nil {
		r.AvailableGroupB = []int{}
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

// Load reads the stored record. ok is false when nothing usable is stored;
// err is only set for backend failures.
func (s *Store) Load(ctx context.Context) (snap types.Snapshot, ok bool, err error) {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, kv.ErrNotFound) {
		return types.Snapshot{}, false, nil
	}
	if err != nil {
		return types.Snapshot{}, false, fmt.Errorf("load record: %w", err)
	}

	snap, err = Decode(data)
	if err != nil {
		s.log.Warn("stored record unreadable, starting fresh", zap.Error(err))
		return types.Snapshot{}, false, nil
	}
	for _, field := range snap.Missing() {
		s.log.Warn("stored field missing or malformed, using fresh value", zap.String("field", field))
	}
	return snap, true, nil
}

// Clear removes the stored record.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear record: %w", err)
	}
	return nil
}

// Decode parses a stored record field by field. Only a value that is not a
// JSON object at all fails as a whole.
func Decode(data []byte) (types.Snapshot, error) {
	if !gjson.ValidBytes(data) {
		return types.Snapshot{}, fmt.Errorf("%w: invalid json", ErrCorruptRecord)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return types.Snapshot{}, fmt.Errorf("%w: not an object", ErrCorruptRecord)
	}

	var snap types.Snapshot
	snap.Cells, snap.HasCells = decodeCells(root.Get("cells"))
	snap.GroupA, snap.HasGroupA = decodeIDs(root.Get("availableGroupA"))
	snap.GroupB, snap.HasGroupB = decodeIDs(root.Get("availableGroupB"))
	return snap, nil
}

// decodeCells accepts strings and nulls (read as empty seats).
func decodeCells(v gjson.Result) ([]string, bool) {
	if !v.IsArray() {
		return nil, false
	}
	cells := []string{}
	ok := true
	v.ForEach(func(_, c gjson.Result) bool {
		switch c.Type {
		case gjson.String:
			cells = append(cells, c.Str)
		case gjson.Null:
			cells = append(cells, "")
		default:
			ok = false
		}
		return ok
	})
	if !ok {
		return nil, false
	}
	return cells, true
}

func decodeIDs(v gjson.Result) ([]int, bool) {
	if !v.IsArray() {
		return nil, false
	}
	ids := []int{}
	ok := true
	v.ForEach(func(_, n gjson.Result) bool {
		if n.Type != gjson.Number || n.Num != float64(int(n.Num)) {
			ok = false
			return false
		}
		ids = append(ids, int(n.Num))
		return true
	})
	if !ok {
		return nil, false
	}
	return ids, true
}
