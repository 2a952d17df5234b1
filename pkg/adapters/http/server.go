package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/mentorai"
	"github.com/aretw0/mentorai/internal/logging"
	"github.com/aretw0/mentorai/pkg/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the App as a JSON API.
type Server struct {
	App     *mentorai.App
	Streams *StreamManager

	logger   *slog.Logger
	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	cookie   string
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithStreams shares a StreamManager, typically the one fed by the session
// manager's diff hook.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) { s.Streams = sm }
}

// WithMetrics records request latency and serves /metrics from gatherer.
func WithMetrics(m *observability.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithSessionCookie names the cookie the access token is read from when the
// Authorization header is absent. Defaults to "sb-access-token".
func WithSessionCookie(name string) Option {
	return func(s *Server) { s.cookie = name }
}

// NewHandler creates the HTTP handler for app.
func NewHandler(app *mentorai.App, opts ...Option) http.Handler {
	s := &Server{
		App:    app,
		logger: logging.NewNop(),
		cookie: "sb-access-token",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.recoverer)
	r.Use(s.accessLog)

	r.Get("/healthz", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/companies", s.ListCompanies)
		r.Get("/in/{username}", s.GetPublicProfile)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Post("/auth/signout", s.SignOut)
			r.Get("/events", s.SubscribeEvents)

			r.Get("/onboarding", s.GetOnboarding)
			r.Post("/onboarding", s.PostOnboarding)

			r.Get("/selector", s.GetSelector)
			r.Post("/selector", s.PostSelector)

			r.Get("/roadmap", s.GetRoadmap)
			r.Get("/roadmap.md", s.DownloadRoadmap)
			r.Get("/roadmap.mmd", s.RoadmapGraph)
			r.Post("/roadmap/milestones/{id}/toggle", s.ToggleMilestone)
			r.Post("/roadmaps", s.BuildRoadmap)

			r.Get("/profile", s.GetProfile)
			r.Get("/settings", s.GetSettings)
			r.Put("/settings", s.PutSettings)
			r.Post("/settings/{key}", s.ToggleSetting)

			r.Get("/education", s.ListEducation)
			r.Post("/education", s.AddEducation)
			r.Delete("/education/{id}", s.DeleteEducation)

			r.Get("/experiences", s.ListExperiences)
			r.Post("/experiences", s.AddExperience)
			r.Delete("/experiences/{id}", s.DeleteExperience)

			r.Get("/certifications", s.ListCertifications)
			r.Post("/certifications", s.AddCertification)
			r.Delete("/certifications/{id}", s.DeleteCertification)

			r.Get("/projects", s.ListProjects)
			r.Get("/skills", s.ListSkills)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "mentorai-http",
		"version": strings.TrimSpace(mentorai.Version),
	})
}
