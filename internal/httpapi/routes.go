package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/lol-draft-series/internal/ws"
)

func SetupRoutes(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(d.log()))
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/champions", Champions(d))
	r.Get("/order", PickBanOrder)
	r.Get("/ws", ws.Handler(d.Hub, d.log(), d.OriginPatterns...))

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", CreateSession(d))
		r.Get("/", ListSessions(d))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", GetSession(d))
			r.Patch("/config", UpdateConfig(d))
			r.Post("/ready", SetReady(d))
			r.Post("/ban", BanChampion(d))
			r.Post("/pick", PickChampion(d))
			r.Post("/complete", CompleteGame(d))
			r.Post("/used", MarkUsed(d))
			r.Get("/champions", AvailableChampions(d))
			r.Get("/results", GameResults(d))
		})
	})
	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
