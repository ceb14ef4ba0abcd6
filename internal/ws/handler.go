package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/DoyleJ11/seat-roulette/internal/session"
	"github.com/DoyleJ11/seat-roulette/internal/types"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errUnknownType = errors.New("unknown type")

func Handler(s *session.Session, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Cross-origin pages are refused; the UI is served from the same host.
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			log.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan session.Update, 64)
		clientID := uuid.NewString()
		clog := log.With(zap.String("client", clientID))

		select {
		case s.Inbox() <- session.Join{ClientID: clientID, Outbox: out}:
		case <-s.Done():
			return
		}
		defer func() {
			select {
			case s.Inbox() <- session.Leave{ClientID: clientID}:
			case <-s.Done():
			}
		}()
		clog.Debug("client joined")

		// updates are written in order on one goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for u := range out {
				payload, _ := json.Marshal(toServerMessage(u))
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
			// outbox closed: session ended or dropped us
			writeCancel()
		}()

		for {
			_, data, err := conn.Read(writeCtx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					clog.Debug("client left")
				default:
					clog.Debug("read failed", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(writeCtx, conn, "bad json")
				continue
			}

			if err := dispatch(writeCtx, s, cm); err != nil {
				writeError(writeCtx, conn, err.Error())
			}
		}
	}
}

func dispatch(ctx context.Context, s *session.Session, m types.ClientMessage) error {
	switch m.Type {
	case "SelectSeat":
		return s.SelectSeat(ctx, m.Row, m.Column)
	case "Draw":
		return s.Draw(ctx)
	case "Reset":
		return s.Reset(ctx, m.Confirm)
	default:
		return errUnknownType
	}
}

func toServerMessage(u session.Update) types.ServerMessage {
	if u.Frame != nil {
		return types.ServerMessage{Type: "Frame", Version: u.Version, Frame: u.Frame}
	}
	state := u.State
	return types.ServerMessage{Type: "StateSnapshot", Version: u.Version, State: &state, Labels: u.Labels}
}

func writeError(ctx context.Context, conn *websocket.Conn, msg string) {
	payload, _ := json.Marshal(types.ServerMessage{Type: "Error", Error: msg})
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_ = conn.Write(ctx, websocket.MessageText, payload)
}
