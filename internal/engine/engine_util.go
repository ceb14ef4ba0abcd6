package engine

import (
	"fmt"

	"github.com/DoyleJ11/seat-roulette/internal/roster"
	"github.com/DoyleJ11/seat-roulette/pkg/types"
)

// Status lines shown next to the wheel.
const (
	MsgChooseSeat   = "choose a seat"
	MsgSpin         = "spin the wheel"
	MsgNoCandidates = "no candidates left"
	MsgPicked       = "picked: "
	MsgReset        = "reset done"
)

type View struct {
	Phase    Phase                  `json:"phase"`
	Rows     int                    `json:"rows"`
	Columns  int                    `json:"columns"`
	Seats    []Seat                 `json:"seats"`
	Selected *Seat                  `json:"selected,omitempty"`
	Pools    map[roster.Group][]int `json:"pools"`
	Message  string                 `json:"message"`
}

func (a *Allocator) View() View {
	l := a.grid.Layout()
	v := View{
		Phase:   a.phase,
		Rows:    l.Rows,
		Columns: l.Columns,
		Seats:   a.grid.Seats(),
		Pools: map[roster.Group][]int{
			roster.GroupA: a.pools.Remaining(roster.GroupA),
			roster.GroupB: a.pools.Remaining(roster.GroupB),
		},
		Message: a.message,
	}
	if seat, ok := a.selection.Current(); ok {
		v.Selected = &seat
	}
	return v
}

// Record is the persisted form of the current grid and pools.
func (a *Allocator) Record() types.Record {
	return types.Record{
		Cells:           a.grid.Cells(),
		AvailableGroupA: a.pools.Remaining(roster.GroupA),
		AvailableGroupB: a.pools.Remaining(roster.GroupB),
	}
}

// Restore overwrites grid and pools from a snapshot, one field at a time.
// Fields that are missing or do not fit the roster/layout keep their fresh
// value; their names are returned so the caller can log them.
func (a *Allocator) Restore(s types.Snapshot) []string {
	a.grid.ResetAll()
	a.pools.Reset()
	a.selection.Clear()
	a.pending = nil
	a.phase = PhaseIdle
	a.message = MsgChooseSeat

	var fellBack []string
	if !s.HasCells || a.grid.Restore(s.Cells) != nil {
		fellBack = append(fellBack, "cells")
	}
	if !s.HasGroupA || a.pools.Restore(roster.GroupA, s.GroupA) != nil {
		fellBack = append(fellBack, "availableGroupA")
	}
	if !s.HasGroupB || a.pools.Restore(roster.GroupB, s.GroupB) != nil {
		fellBack = append(fellBack, "availableGroupB")
	}
	return fellBack
}

// CheckPartition verifies that, per group, the pool, the seated names and
// any in-flight draw together cover every member exactly once.
func (a *Allocator) CheckPartition() error {
	for _, g := range roster.Groups {
		inPool := map[int]bool{}
		for _, id := range a.pools.Remaining(g) {
			inPool[id] = true
		}

		// Labels of members that must be accounted for outside the pool.
		outside := map[string]int{}
		for _, id := range a.roster.Members(g) {
			if !inPool[id] {
				outside[a.roster.Label(id)]++
			}
		}
		if len(inPool) != a.pools.Len(g) {
			return fmt.Errorf("%w: duplicate ids in %s pool", ErrPartitionBroken, g)
		}

		if a.pending != nil && a.pending.seat.Group == g {
			name := a.roster.Label(a.pending.id)
			if outside[name] == 0 {
				return fmt.Errorf("%w: drawn id %d still in %s pool", ErrPartitionBroken, a.pending.id, g)
			}
			outside[name]--
		}

		for _, name := range a.grid.Seated(g) {
			if outside[name] == 0 {
				return fmt.Errorf("%w: %q seated in %s but not drawn", ErrPartitionBroken, name, g)
			}
			outside[name]--
		}

		for name, n := range outside {
			if n > 0 {
				return fmt.Errorf("%w: %q missing from %s", ErrPartitionBroken, name, g)
			}
		}
	}
	return nil
}
