package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/osse101/IdleCultivation_Go/internal/database"
	"github.com/osse101/IdleCultivation_Go/internal/game"
	"github.com/osse101/IdleCultivation_Go/internal/handler"
	"github.com/osse101/IdleCultivation_Go/internal/logger"
	"github.com/osse101/IdleCultivation_Go/internal/metrics"
	"github.com/osse101/IdleCultivation_Go/internal/middleware"
)

// Options carries the transport settings of the HTTP server
type Options struct {
	Port           int
	APIKey         string
	TrustedProxies []string
	Version        string
	RateLimitRPS   float64
	RateLimitBurst int
	// Draining reports shutdown in progress; readiness fails while true
	Draining func() bool
	// EventHistory backs the operator event listing; the route is omitted when nil
	EventHistory handler.EventHistory
}

type Server struct {
	httpServer *http.Server
}

// NewServer creates a new Server instance
func NewServer(opts Options, dbPool database.Pool, gameService game.Service) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           NewRouter(opts, dbPool, gameService),
			ReadHeaderTimeout: ReadHeaderTimeout,
		},
	}
}

// NewRouter builds the full route tree
func NewRouter(opts Options, dbPool database.Pool, gameService game.Service) http.Handler {
	if opts.RateLimitRPS <= 0 {
		opts.RateLimitRPS = DefaultRateLimitRPS
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = DefaultRateLimitBurst
	}

	r := chi.NewRouter()

	// Chi middleware executes in order defined (outermost to innermost)
	detector := NewSuspiciousActivityDetector()

	r.Use(SecurityHeadersMiddleware())
	r.Use(loggingMiddleware)
	r.Use(AuthMiddleware(opts.APIKey, opts.TrustedProxies, detector))
	r.Use(SecurityLoggingMiddleware(opts.TrustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(MaxRequestBodyBytes))
	r.Use(metrics.Middleware)

	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(dbPool, opts.Draining))
	r.Get("/version", handler.HandleVersion(opts.Version))
	r.Handle("/metrics", promhttp.Handler())

	limiter := middleware.NewUserRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst)
	gameHandler := handler.NewGameHandler(gameService)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/sessions", gameHandler.HandleListSessions)
		if opts.EventHistory != nil {
			r.Get("/characters/{id}/events", handler.HandleRecentEvents(opts.EventHistory))
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Use(limiter.Middleware)

			r.Post("/characters", gameHandler.HandleCreateCharacter)

			r.Post("/sessions/login", gameHandler.HandleLogin)
			r.Post("/sessions/logout", gameHandler.HandleLogout)

			r.Post("/cultivation/tick", gameHandler.HandleTick)
			r.Post("/cultivation/breakthrough", gameHandler.HandleBreakthrough)
			r.Get("/cultivation/status", gameHandler.HandleStatus)
			r.Put("/cultivation/focus", gameHandler.HandleSetFocus)

			r.Post("/luck/sign-in", gameHandler.HandleSignIn)
			r.Post("/luck/pill", gameHandler.HandleLuckPill)

			r.Get("/production/{kind}", gameHandler.HandleListProduction)
			r.Post("/production/{kind}/start", gameHandler.HandleStartProduction)
			r.Post("/production/{kind}/collect", gameHandler.HandleCollectProduction)
			r.Post("/production/{kind}/unlock", gameHandler.HandleUnlockSlot)
		})
	})

	return r
}

// quietPaths are polled too often to be worth a log line per request
var quietPaths = []string{"/healthz", "/readyz", "/metrics"}

// redactHeaders copies h with credentials masked
func redactHeaders(h http.Header) http.Header {
	out := h.Clone()
	for _, name := range []string{HeaderAPIKey, HeaderAuthorization} {
		if out.Get(name) != "" {
			out.Set(name, RedactedValue)
		}
	}
	return out
}

// loggingMiddleware tags the request context with a fresh request id and
// logs the start and end of every non-probe request
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, p := range quietPaths {
			if strings.HasPrefix(r.URL.Path, p) {
				next.ServeHTTP(w, r)
				return
			}
		}

		ctx := logger.WithRequestID(r.Context(), logger.GenerateRequestID())
		r = r.WithContext(ctx)
		log := logger.FromContext(ctx).With("method", r.Method, "path", r.URL.Path)

		log.Info(LogMsgRequestStarted,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())
		log.Debug(LogMsgRequestHeaders, "headers", redactHeaders(r.Header))

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		began := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		log.Info(LogMsgRequestCompleted,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(began).Milliseconds())
	})
}

// Start starts the server. It returns nil after a graceful Stop.
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
