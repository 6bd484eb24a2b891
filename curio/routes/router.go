package routes

import (
	"curio/curio/controllers"
	"curio/curio/middlewares"
	"curio/curio/services/session"
	"curio/curio/utils/logging"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Deps struct {
	Health   *controllers.HealthController
	Auth     *controllers.AuthController
	Chat     *controllers.ChatController
	Text     *controllers.TextController
	User     *controllers.UserController
	Verifier middlewares.TokenVerifier
	Limiter  *middlewares.RateLimiter
	Session  session.Deps
	// WSOrigins lists extra browser origins accepted on /ws
	WSOrigins []string
}

func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestMiddleware)
	r.Use(middleware.Recoverer)

	r.Group(func(api chi.Router) {
		api.Use(middleware.Timeout(60 * time.Second))
		api.Mount("/health", HealthRoutes(d.Health))
		api.Mount("/auth", AuthRoutes(d.Auth, d.Verifier))
		api.Mount("/chat", ChatRoutes(d.Chat, d.Verifier, d.Limiter))
		api.Mount("/text", TextRoutes(d.Text, d.Verifier))
		api.Mount("/users", UserRoutes(d.User, d.Verifier))
	})

	// long-lived; outside the request timeout
	r.Get("/ws", WSHandler(d.Session, d.WSOrigins))
	return r
}
