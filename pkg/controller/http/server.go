package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/laurel-hq/laurel/pkg/domain/types"
	"github.com/laurel-hq/laurel/pkg/usecase"
	"github.com/laurel-hq/laurel/pkg/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

type AuthUseCase = usecase.AuthUseCaseInterface

type Server struct {
	router   *chi.Mux
	uc       *usecase.UseCases
	authUC   AuthUseCase
	gatherer prometheus.Gatherer
	limiter  *principalLimiter
}

type Options func(*Server)

// WithAuth overrides the authenticator taken from the use cases
func WithAuth(authUC AuthUseCase) Options {
	return func(s *Server) {
		s.authUC = authUC
	}
}

// WithMetrics exposes the gatherer on /metrics
func WithMetrics(g prometheus.Gatherer) Options {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithRateLimit limits how often one caller may start syncs and submit
// nominations
func WithRateLimit(limit rate.Limit, burst int) Options {
	return func(s *Server) {
		s.limiter = newPrincipalLimiter(limit, burst)
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
		authUC: uc.Auth,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware(s.authUC))

		r.Get("/me", meHandler(uc))
		r.Get("/employees", listEmployeesHandler(uc))
		r.Get("/employees/{id}", getEmployeeHandler(uc))

		r.Route("/sync", func(r chi.Router) {
			r.Use(requireRole(types.RoleAdmin))
			r.With(s.limiter.middleware).Post("/", runSyncHandler(uc))
			r.Post("/employees/{id}", runSingleSyncHandler(uc))
			r.Get("/status", syncStatusHandler(uc))
		})

		r.Route("/config", func(r chi.Router) {
			r.Get("/eligibility", getEligibilityHandler(uc))
			r.Get("/voting-groups", getVotingGroupHandler(uc))

			r.Group(func(r chi.Router) {
				r.Use(requireRole(types.RoleAdmin))
				r.Put("/eligibility", putEligibilityHandler(uc))
				r.Delete("/eligibility", resetEligibilityHandler(uc))
				r.Put("/voting-groups", putVotingGroupHandler(uc))
				r.Delete("/voting-groups", resetVotingGroupHandler(uc))
				r.Put("/roster", putRosterHandler(uc))
			})
		})

		r.Route("/periods", func(r chi.Router) {
			r.Get("/", listPeriodsHandler(uc))
			r.With(requireRole(types.RoleAdmin)).Post("/", createPeriodHandler(uc))

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", getPeriodHandler(uc))
				r.With(requireRole(types.RoleAdmin)).Get("/nominations", listNominationsHandler(uc))
				r.With(s.limiter.middleware).Post("/nominations", nominateHandler(uc))
				r.With(requireRole(types.RoleAdmin)).Get("/tally", tallyHandler(uc))
				r.With(requireRole(types.RoleAdmin)).Post("/close", closePeriodHandler(uc))
			})
		})

		r.Get("/winners", listWinnersHandler(uc))
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger attaches a logger carrying the request ID to the context
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.From(r.Context()).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
