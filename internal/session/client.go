package session

import "context"

// call sends m and waits for its reply.
func (s *Session) call(ctx context.Context, m Msg, replyCh chan error) error {
	select {
	case s.inbox <- m:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrClosed
	}
	select {
	case err := <-replyCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrClosed
	}
}

func (s *Session) SelectSeat(ctx context.Context, row, column int) error {
	r := make(chan error, 1)
	return s.call(ctx, SelectSeat{Row: row, Column: column, Reply: r}, r)
}

// Draw starts a spin. The seat is filled once the spin ends.
func (s *Session) Draw(ctx context.Context) error {
	r := make(chan error, 1)
	return s.call(ctx, Draw{Reply: r}, r)
}

func (s *Session) Reset(ctx context.Context, confirmed bool) error {
	r := make(chan error, 1)
	return s.call(ctx, Reset{Confirmed: confirmed, Reply: r}, r)
}

func (s *Session) State(ctx context.Context) (View, error) {
	r := make(chan View, 1)
	select {
	case s.inbox <- GetState{Reply: r}:
	case <-ctx.Done():
		return View{}, ctx.Err()
	case <-s.done:
		return View{}, ErrClosed
	}
	select {
	case v := <-r:
		return v, nil
	case <-ctx.Done():
		return View{}, ctx.Err()
	case <-s.done:
		return View{}, ErrClosed
	}
}
