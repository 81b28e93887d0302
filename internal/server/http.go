package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mudkipdev/rephoton/internal/api"
	"github.com/mudkipdev/rephoton/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	api     *api.API
	router  *mux.Router
	metrics *metrics.Registry
	logger  *slog.Logger

	// RequestTimeout bounds each Lemmy API call, upstream calls included.
	RequestTimeout time.Duration

	// AllowedOrigins may make credentialed (cookie) cross-origin requests.
	AllowedOrigins []string
}

func New(a *api.API, reg *metrics.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		api:            a,
		router:         mux.NewRouter(),
		metrics:        reg,
		logger:         logger.With("component", "http"),
		RequestTimeout: 30 * time.Second,
	}
	s.routes()
	return s
}

// Handler returns the root handler. CORS wraps the router so preflight
// requests are answered before route matching.
func (s *Server) Handler() http.Handler { return s.cors(s.router) }

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()
	s.logger.Info("listening", "addr", addr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
