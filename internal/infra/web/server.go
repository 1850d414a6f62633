package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"mitra-support/internal/infra/logging"
	"mitra-support/internal/usecase"
)

type Server struct {
	chat      usecase.ChatUseCase
	dashboard usecase.DashboardUseCase
	crisis    usecase.CrisisUseCase
	users     usecase.UserUseCase
	auth      *AuthManager
	log       *zerolog.Logger
}

func NewServer(
	chat usecase.ChatUseCase,
	dashboard usecase.DashboardUseCase,
	crisis usecase.CrisisUseCase,
	users usecase.UserUseCase,
	auth *AuthManager,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		chat:      chat,
		dashboard: dashboard,
		crisis:    crisis,
		users:     users,
		auth:      auth,
		log:       logger,
	}
}

// Router builds the API surface. Everything under /api/v1 requires a
// resolved identity except the public crisis resource list.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// resource list is public: callers in crisis must never hit auth
		r.Get("/crisis/resources", s.handleCrisisResources)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.Middleware)
			r.Post("/chat/messages", s.handleSendMessage)
			r.Post("/chat/sessions/{sessionID}/end", s.handleEndSession)
			r.Get("/chat/history", s.handleHistory)
			r.Get("/dashboard", s.handleDashboard)
			r.Get("/crisis/events", s.handleCrisisEvents)
			r.Post("/crisis/events/{eventID}/resolve", s.handleResolveEvent)
			r.Get("/crisis/queue", s.handleCrisisQueue)
			r.Post("/crisis/report", s.handleCrisisReport)
			r.Delete("/account", s.handleDeleteAccount)
		})
	})
	return r
}

// requestLogger carries the chi request id as trace_id and emits one line
// per request. Message bodies are never logged here.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithTraceID(r.Context(), middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(ctx))

		logging.With(ctx, s.log).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
