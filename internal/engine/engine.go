package engine

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/DoyleJ11/seat-roulette/internal/roster"
)

var ErrNoSeatSelected = errors.New("no seat selected")
var ErrSeatAlreadyAssigned = errors.New("seat already assigned")
var ErrEmptyPool = errors.New("no candidates left")
var ErrDrawInProgress = errors.New("draw in progress")
var ErrNoDrawPending = errors.New("no draw pending")
var ErrSeatOutOfRange = errors.New("seat out of range")
var ErrInvalidLayout = errors.New("invalid layout")
var ErrInvalidPool = errors.New("invalid pool")
var ErrInvalidCells = errors.New("invalid cells")
var ErrUnsupportedCommand = errors.New("unsupported command")
var ErrPartitionBroken = errors.New("partition invariant broken")

type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseSelected Phase = "selected"
	PhaseDrawing  Phase = "drawing"
)

type CommandType string

const (
	CmdSelectSeat CommandType = "SelectSeat"
	CmdDraw       CommandType = "Draw"
	CmdResolve    CommandType = "Resolve"
	CmdReset      CommandType = "Reset"
)

/*
	CmdSelectSeat -> EvtSeatSelected (+ EvtPoolExhausted when the group has nobody left)
	CmdDraw       -> EvtDrawStarted; the winner is already out of the pool here
	CmdResolve    -> EvtSeatAssigned, sent once the spin finishes
	CmdReset      -> EvtStateReset
*/

type Command struct {
	Type   CommandType
	Row    int
	Column int
}

type EventType string

const (
	EvtSeatSelected  EventType = "SeatSelected"
	EvtPoolExhausted EventType = "PoolExhausted"
	EvtDrawStarted   EventType = "DrawStarted"
	EvtSeatAssigned  EventType = "SeatAssigned"
	EvtStateReset    EventType = "StateReset"
)

type Event struct {
	Type  EventType
	Seat  Seat
	Group roster.Group
	ID    int
	Name  string
	Pool  []int
}

// pendingDraw is the outcome decided by CmdDraw and applied by CmdResolve.
type pendingDraw struct {
	seat Seat
	id   int
}

// Allocator is the draw-cycle state machine. Apply leaves state untouched
// when it returns an error; the one exception is a Resolve whose seat can no
// longer be filled, which aborts the cycle and puts the id back.
type Allocator struct {
	roster    *roster.Roster
	pools     *Pools
	grid      *Grid
	selection Selection
	phase     Phase
	pending   *pendingDraw
	message   string
}

func NewAllocator(r *roster.Roster, l Layout, pick Picker) (*Allocator, error) {
	grid, err := NewGrid(l)
	if err != nil {
		return nil, err
	}
	return &Allocator{
		roster:  r,
		pools:   NewPools(r, pick),
		grid:    grid,
		phase:   PhaseIdle,
		message: MsgChooseSeat,
	}, nil
}

func (a *Allocator) Phase() Phase { return a.phase }
func (a *Allocator) Pools() *Pools { return a.pools }
func (a *Allocator) Grid() *Grid { return a.grid }
func (a *Allocator) Roster() *roster.Roster { return a.roster }

func (a *Allocator) Apply(cmd Command) ([]Event, error) {
	switch cmd.Type {
	case CmdSelectSeat:
		if a.phase == PhaseDrawing {
			return nil, ErrDrawInProgress
		}
		seat, err := a.grid.SeatAt(cmd.Row, cmd.Column)
		if err != nil {
			return nil, err
		}
		if err := a.selection.Select(seat); err != nil {
			return nil, fmt.Errorf("select (%d,%d): %w", cmd.Row, cmd.Column, err)
		}

		a.phase = PhaseSelected
		pool := a.pools.Remaining(seat.Group)
		events := []Event{{Type: EvtSeatSelected, Seat: seat, Group: seat.Group, Pool: pool}}
		if len(pool) == 0 {
			a.message = MsgNoCandidates
			events = append(events, Event{Type: EvtPoolExhausted, Seat: seat, Group: seat.Group})
		} else {
			a.message = MsgSpin
		}
		return events, nil

	case CmdDraw:
		if a.phase == PhaseDrawing {
			return nil, ErrDrawInProgress
		}
		seat, ok := a.selection.Current()
		if !ok {
			return nil, ErrNoSeatSelected
		}
		// The grid is the source of truth; the selection copy may be stale
		// after a restore.
		current, err := a.grid.SeatAt(seat.Row, seat.Column)
		if err != nil {
			return nil, err
		}
		if !current.Empty() {
			return nil, ErrSeatAlreadyAssigned
		}

		id, err := a.pools.Draw(current.Group)
		if err != nil {
			return nil, err
		}

		a.pending = &pendingDraw{seat: current, id: id}
		a.phase = PhaseDrawing
		return []Event{{Type: EvtDrawStarted, Seat: current, Group: current.Group, ID: id}}, nil

	case CmdResolve:
		if a.phase != PhaseDrawing || a.pending == nil {
			return nil, ErrNoDrawPending
		}
		p := a.pending
		name := a.roster.Label(p.id)
		if err := a.grid.Assign(p.seat.Row, p.seat.Column, name); err != nil {
			// Keep the partition intact: the id goes back where it came from.
			a.pools.PutBack(p.seat.Group, p.id)
			a.pending = nil
			a.selection.Clear()
			a.phase = PhaseIdle
			return nil, err
		}

		a.pending = nil
		a.selection.Clear()
		a.phase = PhaseIdle
		a.message = MsgPicked + name

		seat := p.seat
		seat.Content = name
		return []Event{{Type: EvtSeatAssigned, Seat: seat, Group: seat.Group, ID: p.id, Name: name}}, nil

	case CmdReset:
		if a.phase == PhaseDrawing {
			return nil, ErrDrawInProgress
		}
		a.pools.Reset()
		a.grid.ResetAll()
		a.selection.Clear()
		a.phase = PhaseIdle
		a.message = MsgReset
		return []Event{{Type: EvtStateReset, Group: roster.GroupA, Pool: a.pools.Remaining(roster.GroupA)}}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCommand, cmd.Type)
	}
}

// Labels turns a pool into wheel slice labels.
func Labels(ids []int) []string {
	labels := make([]string, len(ids))
	for i, id := range ids {
		labels[i] = strconv.Itoa(id)
	}
	return labels
}
