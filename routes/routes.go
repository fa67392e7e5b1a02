package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Dosada05/championship-draw/docs"
	"github.com/Dosada05/championship-draw/handlers"
	"github.com/Dosada05/championship-draw/middleware"
	"github.com/Dosada05/championship-draw/models"
)

type Deps struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	Tokens         middleware.TokenParser
	Recorder       middleware.HTTPRecorder
	Metrics        http.Handler

	AuthHandler      *handlers.AuthHandler
	DrawHandler      *handlers.DrawHandler
	MatchHandler     *handlers.MatchHandler
	TeamHandler      *handlers.TeamHandler
	WebSocketHandler *handlers.WebSocketHandler
}

func SetupRoutes(router *chi.Mux, d Deps) {
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.Logging(d.Logger, d.Recorder))
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if d.Metrics != nil {
		router.Handle("/metrics", d.Metrics)
	}
	router.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(docs.OpenAPI)
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Post("/auth/login", d.AuthHandler.Login)

	router.Get("/ws/tournaments/{tournamentID}", d.WebSocketHandler.ServeWs)

	router.Route("/tournaments/{tournamentID}", func(r chi.Router) {
		r.With(chiMiddleware.Timeout(15 * time.Second)).Group(func(r chi.Router) {
			r.Get("/draw", d.DrawHandler.Session)
			r.Get("/draw/bracket", d.DrawHandler.Bracket)
			r.Get("/draw/qr", d.DrawHandler.QRCode)
			r.Get("/matches", d.MatchHandler.List)
		})

		// only the admin drives the presenter, so each draw has one writer
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(d.Tokens))
			r.Use(middleware.Authorize(models.RoleAdmin))

			r.Post("/draw/open", d.DrawHandler.Open)
			r.Post("/draw/start", d.DrawHandler.Start)
			r.Post("/draw/redraw", d.DrawHandler.Redraw)
			r.Post("/draw/save", d.DrawHandler.Save)
			r.Delete("/draw", d.DrawHandler.Close)
			r.Post("/matches/generate", d.MatchHandler.Generate)
			r.Post("/teams", d.TeamHandler.Register)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(d.Tokens))
		r.Use(middleware.Authorize(models.RoleAdmin))
		r.Patch("/teams/{teamID}/status", d.TeamHandler.SetStatus)
	})
}
