package app

import (
	"net/http"
	"time"

	"taskBoard/internal/auth"
	"taskBoard/internal/config"
	"taskBoard/internal/handlers"
	"taskBoard/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Deps is everything the HTTP surface needs; the limiter is optional.
type Deps struct {
	Config      *config.Config
	Tasks       handlers.TaskService
	Auth        handlers.AuthService
	Tokens      SessionTokens
	Revoker     auth.Revoker
	RateLimiter *middleware.RateLimiter
}

// SessionTokens parses session cookies and knows how long an issued session lives.
type SessionTokens interface {
	middleware.TokenParser
	TTL() time.Duration
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	taskHandler := handlers.NewTaskHandler(d.Tasks)
	authHandler := handlers.NewAuthHandler(d.Auth, handlers.CookieConfig{
		Name:   cfg.Auth.CookieName,
		TTL:    d.Tokens.TTL(),
		Secure: cfg.IsProduction(),
	})

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recover)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Origins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "authtoken", "X-Request-ID"},
		ExposedHeaders:   []string{"Set-Cookie", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           int((12 * time.Hour).Seconds()),
	}))
	if d.RateLimiter != nil {
		r.Use(d.RateLimiter.Middleware)
	}
	if cfg.Server.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	}

	r.Get("/health", taskHandler.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/google-login", authHandler.GoogleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(d.Tokens, d.Revoker, cfg.Auth.CookieName))

			r.Get("/auth/profile", authHandler.Profile)
			r.Post("/auth/logout", authHandler.Logout)

			r.Route("/task", func(r chi.Router) {
				r.Post("/create", taskHandler.CreateTask)     // POST /task/create
				r.Get("/get", taskHandler.ListTasks)          // GET /task/get
				r.Get("/users/getall", taskHandler.ListUsers) // GET /task/users/getall

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", taskHandler.GetTask)        // GET /task/{id}
					r.Patch("/", taskHandler.ChangeStatus) // PATCH /task/{id}
					r.Put("/", taskHandler.UpdateTask)     // PUT /task/{id}
					r.Delete("/", taskHandler.DeleteTask)  // DELETE /task/{id}
				})
			})
		})
	})

	return otelhttp.NewHandler(r, "task-board",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}))
}
