package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/fieldhq/dispatch-engine/internal/auth"
	"github.com/fieldhq/dispatch-engine/internal/config"
	"github.com/fieldhq/dispatch-engine/internal/events"
	handlers "github.com/fieldhq/dispatch-engine/internal/handlers/v1"
	"github.com/fieldhq/dispatch-engine/internal/notify"
	"github.com/fieldhq/dispatch-engine/internal/service"
	"github.com/fieldhq/dispatch-engine/internal/store"
	"github.com/fieldhq/dispatch-engine/pkg/metrics"
	"github.com/fieldhq/dispatch-engine/pkg/middleware"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
)

type Server struct {
	cfg      *config.Config
	store    store.Store
	listener net.Listener
	producer *events.EventProducer
}

// New returns a new instance of a dispatch-engine server.
func New(
	cfg *config.Config,
	store store.Store,
	listener net.Listener,
	producer *events.EventProducer,
) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		listener: listener,
		producer: producer,
	}
}

func (s *Server) buildNotifier() notify.Notifier {
	if s.cfg.Notifier.Endpoint == "" {
		return notify.NoopNotifier{}
	}

	timeout, err := time.ParseDuration(s.cfg.Notifier.Timeout)
	if err != nil {
		zap.S().Named("api_server").Warnw("invalid notifier timeout, using default", "value", s.cfg.Notifier.Timeout)
		timeout = 0
	}
	return notify.NewClient(s.cfg.Notifier.Endpoint, timeout)
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	authenticator, err := auth.NewAuthenticator(s.cfg.Service.Auth)
	if err != nil {
		return err
	}

	router := chi.NewRouter()

	metricMiddleware := metrics.NewMiddleware("api_server")
	metricMiddleware.MustRegisterDefault()

	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "PUT", "POST", "DELETE", "HEAD", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: false,
			MaxAge:           300,
		}),
		authenticator.Authenticator,
		middleware.RequestID,
		middleware.Logger(),
		chiMiddleware.Recoverer,
	)

	proCacheTTL, err := time.ParseDuration(s.cfg.Dispatch.ProCacheTTL)
	if err != nil {
		zap.S().Named("api_server").Warnw("invalid pro cache ttl, using 30s", "value", s.cfg.Dispatch.ProCacheTTL)
		proCacheTTL = 30 * time.Second
	}

	notifier := s.buildNotifier()
	ledgerSrv := service.NewLedgerService(s.store, s.producer)
	h := handlers.NewServiceHandler(
		service.NewDispatchService(s.store, notifier, s.producer, proCacheTTL),
		service.NewAssignmentService(s.store, notifier, s.producer, ledgerSrv),
		service.NewCapacityService(s.store, s.cfg.Dispatch.FallbackSlotCapacity),
		ledgerSrv,
	)

	router.Get("/health", h.Health)
	router.Route("/api/v1", h.Routes)

	srv := http.Server{Addr: s.cfg.Service.Address, Handler: router}

	go func() {
		<-ctx.Done()
		zap.S().Named("api_server").Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		zap.S().Named("api_server").Info("api server terminated")
	}()

	zap.S().Named("api_server").Infof("Listening on %s...", s.listener.Addr().String())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}

	return nil
}
