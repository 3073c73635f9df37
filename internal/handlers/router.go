package handlers

import (
	"net/http"
	"time"

	"weekTracker/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterOptions struct {
	AllowedOrigins []string
	RateLimitRPM   int
	RequestTimeout time.Duration
	Registry       *prometheus.Registry
}

// NewRouter собирает все маршруты API; auth-маршруты кроме signup/signin требуют токен
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	metrics := middleware.NewMetrics(opts.Registry)

	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(metrics.Handler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if opts.RequestTimeout > 0 {
		r.Use(chimw.Timeout(opts.RequestTimeout))
	}

	r.Get("/health", h.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.RateLimitRPM))

		r.Post("/auth/signup", h.SignUp)
		r.Post("/auth/signin", h.SignIn)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(h.Auth))

			r.Post("/auth/signout", h.SignOut)
			r.Get("/auth/me", h.Me)

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", h.GetProfile)
				r.Put("/", h.UpdateProfile)
				r.Get("/username-available", h.UsernameAvailable)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", h.ListTasks)       // GET /tasks?week=
				r.Post("/", h.CreateTask)     // POST /tasks
				r.Get("/all", h.ListAllTasks) // GET /tasks/all

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.GetTask)       // GET /tasks/{id}
					r.Put("/", h.UpdateTask)    // PUT /tasks/{id}
					r.Delete("/", h.DeleteTask) // DELETE /tasks/{id}

					r.Get("/progress", h.GetTaskProgress)
					r.Get("/stats", h.TaskStats)
					r.Get("/total-time", h.LineageTotal)

					r.Get("/time-logs", h.ListTimeLogs)
					r.Post("/time-logs", h.CreateTimeLog)
					r.Post("/time-logs/start", h.StartTimeLog)
					r.Get("/time-logs/active", h.GetActiveTimeLog)
					r.Post("/sessions", h.AddSession)

					r.Get("/quantity-logs", h.ListQuantityLogs)
					r.Post("/quantity-logs", h.AddQuantity)
					r.Get("/quantity-logs/total", h.QuantityTotal)
				})
			})

			r.Post("/time-logs/{id}/end", h.EndTimeLog)
			r.Delete("/time-logs/{id}", h.DeleteTimeLog)
			r.Delete("/quantity-logs/{id}", h.DeleteQuantityLog)

			r.Get("/progress", h.ListProgress)
			r.Get("/dashboard", h.Dashboard)
			r.Get("/stats/weekly", h.WeeklyStats)
			r.Get("/stats/user", h.UserStats)

			r.Route("/groups", func(r chi.Router) {
				r.Get("/", h.ListGroups)     // GET /groups
				r.Post("/", h.CreateGroup)   // POST /groups
				r.Post("/join", h.JoinGroup) // POST /groups/join

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.GetGroup)
					r.Put("/", h.UpdateGroup)
					r.Delete("/", h.DeleteGroup)
					r.Post("/leave", h.LeaveGroup)
					r.Post("/transfer", h.TransferOwnership)

					r.Put("/members/{userID}/role", h.ChangeMemberRole)
					r.Delete("/members/{userID}", h.RemoveMember)

					r.Get("/shared-tasks", h.ListSharedTasks)
					r.Post("/shared-tasks", h.ShareTask)

					r.Get("/dashboard", h.GroupDashboard)
					r.Get("/progress", h.GroupProgress)
					r.Get("/stats", h.GroupStats)
				})
			})
		})
	})

	return otelhttp.NewHandler(r, "weektracker-api")
}
