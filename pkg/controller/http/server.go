package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/harmonix-lab/taskbeat/pkg/usecase"
	"github.com/harmonix-lab/taskbeat/pkg/utils/logging"
)

// Server is the operations REST API over the deadline engine. It carries
// no authentication; it is meant to sit behind the deployment's own
// ingress controls.
type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
}

func New(uc *usecase.UseCases) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", s.handleOnboard)
			r.Get("/{memberID}", s.handleProfile)
			r.Post("/{memberID}/strikes/add", s.handleAddStrike)
			r.Post("/{memberID}/strikes/remove", s.handleRemoveStrike)
			r.Post("/{memberID}/hiatus/pause", s.handlePauseHiatus)
			r.Post("/{memberID}/hiatus/resume", s.handleResumeHiatus)
		})

		r.Get("/strikes", s.handleStrikeBoard)

		r.Route("/assignments", func(r chi.Router) {
			r.Post("/", s.handleAssign)
			r.Get("/", s.handleHistory)
			r.Get("/overdue", s.handleOverdue)
			r.Get("/pending/{memberID}", s.handlePending)
			r.Get("/{assignmentID}", s.handleGetAssignment)
			r.Post("/{assignmentID}/complete", s.handleComplete)
			r.Post("/{assignmentID}/excuse", s.handleExcuse)
			r.Post("/{assignmentID}/extend/request", s.handleExtendRequest)
			r.Post("/{assignmentID}/extend/approve", s.handleExtendApprove)
			r.Post("/{assignmentID}/extend/deny", s.handleExtendDeny)
		})

		r.Post("/sweep", s.handleSweep)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
