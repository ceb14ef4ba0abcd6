package engine

// Selection holds at most one selected, still empty seat.
type Selection struct {
	seat *Seat
}

func (s *Selection) Select(seat Seat) error {
	if !seat.Empty() {
		return ErrSeatAlreadyAssigned
	}
	s.seat = &seat
	return nil
}

func (s *Selection) Current() (Seat, bool) {
	if s.seat == nil {
		return Seat{}, false
	}
	return *s.seat, true
}

func (s *Selection) Clear() { s.seat = nil }
