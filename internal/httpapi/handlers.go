package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/DoyleJ11/seat-roulette/internal/engine"
	"github.com/DoyleJ11/seat-roulette/internal/session"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type stateResponse struct {
	Version int         `json:"version"`
	State   engine.View `json:"state"`
	Labels  []string    `json:"labels"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type resetRequest struct {
	Confirm bool `json:"confirm"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps session and engine errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrSeatOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrNoSeatSelected),
		errors.Is(err, engine.ErrSeatAlreadyAssigned),
		errors.Is(err, engine.ErrEmptyPool),
		errors.Is(err, engine.ErrDrawInProgress):
		return http.StatusConflict
	case errors.Is(err, session.ErrResetNotConfirmed):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeErr(w http.ResponseWriter, log *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeState(w http.ResponseWriter, r *http.Request, s *session.Session, log *zap.Logger, status int) {
	v, err := s.State(r.Context())
	if err != nil {
		writeErr(w, log, err)
		return
	}
	writeJSON(w, status, stateResponse{Version: v.Version, State: v.State, Labels: v.Labels})
}

func GetState(s *session.Session, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeState(w, r, s, log, http.StatusOK)
	}
}

func SelectSeat(s *session.Session, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		row, errRow := strconv.Atoi(chi.URLParam(r, "row"))
		col, errCol := strconv.Atoi(chi.URLParam(r, "column"))
		if errRow != nil || errCol != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "row and column must be integers"})
			return
		}

		if err := s.SelectSeat(r.Context(), row, col); err != nil {
			writeErr(w, log, err)
			return
		}
		writeState(w, r, s, log, http.StatusOK)
	}
}

// Draw answers 202: the seat is filled when the spin ends.
func Draw(s *session.Session, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Draw(r.Context()); err != nil {
			writeErr(w, log, err)
			return
		}
		writeState(w, r, s, log, http.StatusAccepted)
	}
}

func Reset(s *session.Session, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad json"})
				return
			}
		}

		if err := s.Reset(r.Context(), req.Confirm); err != nil {
			writeErr(w, log, err)
			return
		}
		writeState(w, r, s, log, http.StatusOK)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
