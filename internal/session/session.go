// Package session runs the allocator behind a single event loop. Every user
// action, spin completion and client join arrives as a message on the inbox
// and runs to completion before the next one is read.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/DoyleJ11/seat-roulette/internal/engine"
	"github.com/DoyleJ11/seat-roulette/internal/roster"
	"github.com/DoyleJ11/seat-roulette/internal/wheel"
	"github.com/DoyleJ11/seat-roulette/pkg/types"
	"go.uber.org/zap"
)

var ErrResetNotConfirmed = errors.New("reset not confirmed")
var ErrClosed = errors.New("session closed")

// Visualizer draws the candidate slices. AnimateTo must call done exactly
// once, after which the drawn seat is filled.
type Visualizer interface {
	Render(labels []string)
	AnimateTo(winner string, done func())
}

// Persister is the durable record store.
type Persister interface {
	Save(ctx context.Context, r types.Record) error
	Load(ctx context.Context) (types.Snapshot, bool, error)
	Clear(ctx context.Context) error
}

type Msg interface{ isSessionMsg() }

type SelectSeat struct {
	Row, Column int
	Reply       chan error
}

func (SelectSeat) isSessionMsg() {}

type Draw struct {
	Reply chan error
}

func (Draw) isSessionMsg() {}

type Reset struct {
	Confirmed bool
	Reply     chan error
}

func (Reset) isSessionMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Update // where this client wants to receive updates
}

func (Join) isSessionMsg() {}

type Leave struct{ ClientID string }

func (Leave) isSessionMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

// animationDone is posted by the visualizer when a spin ends.
type animationDone struct{ cycle int }

func (animationDone) isSessionMsg() {}

// Update is pushed to every joined client.
type Update struct {
	Version int
	State   engine.View
	Labels  []string     // slices the wheel currently shows
	Frame   *wheel.Frame // set for visualizer frames only
}

type View struct {
	Version    int
	NumClients int
	State      engine.View
	Labels     []string
}

type Config struct {
	Allocator *engine.Allocator
	Store     Persister
	Spin      wheel.Options
	Log       *zap.Logger

	// NewVisualizer overrides the default wheel. emit forwards frames to
	// joined clients.
	NewVisualizer func(ctx context.Context, emit func(wheel.Frame)) Visualizer
}

type Session struct {
	inbox   chan Msg
	frames  chan wheel.Frame
	alloc   *engine.Allocator
	store   Persister
	vis     Visualizer
	log     *zap.Logger
	version int
	cycle   int
	labels  []string
	clients map[string]chan Update
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// New restores the stored record (if any), renders the group A pool and
// starts the loop.
func New(parent context.Context, cfg Config) (*Session, error) {
	if cfg.Allocator == nil || cfg.Store == nil {
		return nil, fmt.Errorf("session: allocator and store are required")
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		inbox:   make(chan Msg, 64),
		frames:  make(chan wheel.Frame, 256),
		alloc:   cfg.Allocator,
		store:   cfg.Store,
		log:     log,
		clients: make(map[string]chan Update),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	if cfg.NewVisualizer != nil {
		s.vis = cfg.NewVisualizer(ctx, s.emitFrame)
	} else {
		s.vis = wheel.New(ctx, cfg.Spin, s.emitFrame, log.Named("wheel"))
	}

	if err := s.restore(); err != nil {
		cancel()
		return nil, err
	}
	s.render(s.alloc.Pools().Remaining(roster.GroupA))

	go s.loop()
	return s, nil
}

func (s *Session) restore() error {
	ctx, cancel := s.storeCtx()
	defer cancel()

	snap, ok, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if !ok {
		s.log.Info("no saved progress, starting fresh")
		return nil
	}

	for _, field := range s.alloc.Restore(snap) {
		s.log.Warn("restored field rejected, using fresh value", zap.String("field", field))
	}
	if err := s.alloc.CheckPartition(); err != nil {
		s.log.Warn("restored state is inconsistent", zap.Error(err))
	}
	s.log.Info("progress restored",
		zap.Int("poolA", s.alloc.Pools().Len(roster.GroupA)),
		zap.Int("poolB", s.alloc.Pools().Len(roster.GroupB)),
	)
	return nil
}

func (s *Session) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case f := <-s.frames:
			s.broadcastFrame(f)

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Join:
				// new clients start from a full snapshot
				s.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- s.update()

			case Leave:
				delete(s.clients, msg.ClientID)

			case SelectSeat:
				reply(msg.Reply, s.apply(engine.Command{Type: engine.CmdSelectSeat, Row: msg.Row, Column: msg.Column}))

			case Draw:
				reply(msg.Reply, s.apply(engine.Command{Type: engine.CmdDraw}))

			case Reset:
				if !msg.Confirmed {
					reply(msg.Reply, ErrResetNotConfirmed)
					break
				}
				reply(msg.Reply, s.apply(engine.Command{Type: engine.CmdReset}))

			case animationDone:
				// Every frame of the spin, stop included, was queued before
				// this message; clients must see them before the filled seat.
				s.flushFrames()
				if msg.cycle != s.cycle {
					s.log.Warn("stale spin completion dropped", zap.Int("cycle", msg.cycle))
					break
				}
				if err := s.apply(engine.Command{Type: engine.CmdResolve}); err != nil {
					s.log.Error("resolve draw", zap.Error(err))
				}

			case GetState:
				msg.Reply <- View{
					Version:    s.version,
					NumClients: len(s.clients),
					State:      s.alloc.View(),
					Labels:     s.labels,
				}

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

// apply runs one command and its side effects. The returned error is what
// the user sees.
func (s *Session) apply(cmd engine.Command) error {
	events, err := s.alloc.Apply(cmd)
	if err != nil {
		if errors.Is(err, engine.ErrEmptyPool) {
			s.render(nil)
			s.bump()
		}
		s.log.Debug("command rejected", zap.String("cmd", string(cmd.Type)), zap.Error(err))
		return err
	}

	var userErr error
	for _, ev := range events {
		switch ev.Type {
		case engine.EvtSeatSelected:
			s.render(ev.Pool)

		case engine.EvtPoolExhausted:
			s.log.Info("pool exhausted", zap.Stringer("group", ev.Group))
			userErr = fmt.Errorf("%s: %w", ev.Group, engine.ErrEmptyPool)

		case engine.EvtDrawStarted:
			s.cycle++
			cycle := s.cycle
			s.log.Debug("draw started",
				zap.Int("row", ev.Seat.Row), zap.Int("column", ev.Seat.Column), zap.Int("id", ev.ID))
			s.vis.AnimateTo(strconv.Itoa(ev.ID), func() { s.post(animationDone{cycle: cycle}) })

		case engine.EvtSeatAssigned:
			s.log.Info("seat assigned",
				zap.Int("row", ev.Seat.Row), zap.Int("column", ev.Seat.Column), zap.String("name", ev.Name))
			s.save()

		case engine.EvtStateReset:
			s.clear()
			s.render(ev.Pool)
			s.log.Info("state reset")
		}
	}

	s.bump()
	return userErr
}

func (s *Session) render(pool []int) {
	s.labels = engine.Labels(pool)
	if len(s.labels) == 0 {
		s.labels = []string{wheel.Placeholder}
	}
	s.vis.Render(engine.Labels(pool))
}

func (s *Session) save() {
	ctx, cancel := s.storeCtx()
	defer cancel()
	if err := s.store.Save(ctx, s.alloc.Record()); err != nil {
		s.log.Error("save progress", zap.Error(err))
	}
}

func (s *Session) clear() {
	ctx, cancel := s.storeCtx()
	defer cancel()
	if err := s.store.Clear(ctx); err != nil {
		s.log.Error("clear saved progress", zap.Error(err))
	}
}

// storeCtx outlives the session context so a final save during shutdown
// still reaches storage.
func (s *Session) storeCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(s.ctx), 5*time.Second)
}

func (s *Session) bump() {
	s.version++
	s.broadcast(s.update())
}

func (s *Session) update() Update {
	return Update{Version: s.version, State: s.alloc.View(), Labels: s.labels}
}

// shutdown applies a draw still spinning; its outcome is already decided.
func (s *Session) shutdown() {
	if s.alloc.Phase() == engine.PhaseDrawing {
		if err := s.apply(engine.Command{Type: engine.CmdResolve}); err != nil {
			s.log.Error("resolve draw on shutdown", zap.Error(err))
		}
	}
	for id, ch := range s.clients {
		close(ch)
		delete(s.clients, id)
	}
	s.cancel()
}

func (s *Session) broadcast(u Update) {
	for id, ch := range s.clients {
		select {
		case ch <- u:
		default:
			s.log.Warn("dropping slow client", zap.String("client", id))
			close(ch)
			delete(s.clients, id)
		}
	}
}

// emitFrame may run on the wheel goroutine. Spin frames are dropped when the
// buffer is full; the stop frame carries the winner and waits for room.
func (s *Session) emitFrame(f wheel.Frame) {
	if f.Kind == wheel.FrameStop {
		select {
		case s.frames <- f:
		case <-s.done:
		}
		return
	}
	select {
	case s.frames <- f:
	default:
		s.log.Debug("frame dropped", zap.String("kind", string(f.Kind)))
	}
}

func (s *Session) broadcastFrame(f wheel.Frame) {
	s.broadcast(Update{Version: s.version, State: s.alloc.View(), Labels: s.labels, Frame: &f})
}

func (s *Session) flushFrames() {
	for {
		select {
		case f := <-s.frames:
			s.broadcastFrame(f)
		default:
			return
		}
	}
}

func (s *Session) post(m Msg) {
	select {
	case s.inbox <- m:
	case <-s.done:
	}
}

func reply(ch chan error, err error) {
	if ch != nil {
		ch <- err
	}
}

// Expose the inbox so the transport layer can send messages.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Done is closed once the loop has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) Close() {
	s.post(Shutdown{})
	<-s.done
}
