package handlers

import (
	"net/http"

	"taskDesk/internal/middleware"
	"taskDesk/internal/models/user"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	JWTSecret      []byte
	AllowedOrigins []string
	RateLimitRPM   int
}

func NewRouter(cfg RouterConfig, tasks *TaskHandler, notes *NotificationHandler, reports *ReportHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", tasks.HealthCheck) // GET /health

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRPM))

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", tasks.GetTasks)                                                           // GET /tasks
			r.With(middleware.RequirePermission(user.PermTasksCreate)).Post("/", tasks.PostTask) // POST /tasks

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", tasks.GetTaskByID)                                                                // GET /tasks/{id}
				r.With(middleware.RequirePermission(user.PermTasksEdit)).Put("/", tasks.UpdateTaskByID)      // PUT /tasks/{id}
				r.With(middleware.RequirePermission(user.PermTasksDelete)).Delete("/", tasks.DeleteTaskByID) // DELETE /tasks/{id}
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", notes.GetNotifications)   // GET /notifications
			r.Post("/{id}/read", notes.MarkRead) // POST /notifications/{id}/read
		})

		r.With(middleware.RequirePermission(user.PermReportsView)).Get("/reports", reports.GetReports) // GET /reports

		r.Route("/admin/jobs", func(r chi.Router) {
			r.Use(middleware.RequirePermission(user.PermReportsGenerate))
			r.Get("/", reports.GetJobs)           // GET /admin/jobs
			r.Post("/{name}/run", reports.RunJob) // POST /admin/jobs/{name}/run
		})
	})

	return otelhttp.NewHandler(r, "taskdesk-http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}))
}
