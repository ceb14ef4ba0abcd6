package types

import (
	"github.com/DoyleJ11/seat-roulette/internal/engine"
	"github.com/DoyleJ11/seat-roulette/internal/wheel"
)

type ClientMessage struct {
	Type    string `json:"type"` // "SelectSeat" | "Draw" | "Reset"
	Row     int    `json:"row,omitempty"`
	Column  int    `json:"column,omitempty"`
	Confirm bool   `json:"confirm,omitempty"`
}

type ServerMessage struct {
	Type    string       `json:"type"` // "StateSnapshot" | "Frame" | "Error"
	Version int          `json:"version,omitempty"`
	State   *engine.View `json:"state,omitempty"`
	Labels  []string     `json:"labels,omitempty"`
	Frame   *wheel.Frame `json:"frame,omitempty"`
	Error   string       `json:"error,omitempty"`
}
