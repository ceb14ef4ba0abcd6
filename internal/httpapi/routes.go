package httpapi

import (
	"net/http"

	"github.com/DoyleJ11/seat-roulette/internal/session"
	"github.com/DoyleJ11/seat-roulette/internal/ws"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func SetupRoutes(s *session.Session, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(s, log.Named("ws")))

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", GetState(s, log))
		r.Post("/seats/{row}/{column}/select", SelectSeat(s, log))
		r.Post("/draw", Draw(s, log))
		r.Post("/reset", Reset(s, log))
	})
	return r
}
