package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/DoyleJ11/hotseat/internal/auth"
	"github.com/DoyleJ11/hotseat/internal/hub"
	"github.com/DoyleJ11/hotseat/internal/ws"
)

type Deps struct {
	Hub          *hub.Hub
	Users        UserStore
	Tokens       *auth.Tokens
	Google       GoogleVerifier
	Apple        AppleVerifier
	Log          *zap.Logger
	ClientOrigin string
	// Dev exposes the lobby dump and relaxes socket origin checks.
	Dev bool
}

func SetupRoutes(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log.Named("http")))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{d.ClientOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.NotFound(notFound)

	var wsOpts ws.Options
	if d.Dev {
		wsOpts.OriginPatterns = []string{"*"}
	}

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(d.Hub, d.Tokens, log, wsOpts))

	games := gameHandlers{hub: d.Hub, clientOrigin: d.ClientOrigin, log: log}
	users := userHandlers{users: d.Users, log: log}
	sessions := authHandlers{users: d.Users, tokens: d.Tokens, google: d.Google, apple: d.Apple, log: log}
	requireSignin := RequireSignin(d.Tokens)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))

		if d.Dev {
			r.Get("/lobbies", games.lobbies)
		}
		r.Get("/lobby/{name}/player/{id}", games.playerActive)
		r.Get("/lobby/{name}/qr", games.qr)

		r.Route("/user", func(r chi.Router) {
			r.Post("/", users.create)
			r.Get("/", users.list)
			r.Get("/{id}", users.show)
			r.With(requireSignin, HasAuthorization).Put("/{id}", users.update)
			r.With(requireSignin, HasAuthorization).Delete("/{id}", users.remove)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signin", sessions.signin)
			r.Get("/signout", sessions.signout)
			r.Get("/signout/{accessToken}", sessions.signout)
			r.Post("/google/{type}", sessions.loginGoogle)
			r.Post("/apple", sessions.loginApple)
		})
	})
	return r
}
