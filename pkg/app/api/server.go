// Package api implements app.Runner for the ledger server process.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apphttp "github.com/vortexartec/tola-ledger/pkg/app/http"
	"github.com/vortexartec/tola-ledger/pkg/auth"
	"github.com/vortexartec/tola-ledger/pkg/chain"
	"github.com/vortexartec/tola-ledger/pkg/config"
	confirmerpkg "github.com/vortexartec/tola-ledger/pkg/confirmer"
	"github.com/vortexartec/tola-ledger/pkg/ledger"
	"github.com/vortexartec/tola-ledger/pkg/payment"
	"github.com/vortexartec/tola-ledger/pkg/pgutil"
	tokenservice "github.com/vortexartec/tola-ledger/pkg/token/service"
	"github.com/vortexartec/tola-ledger/pkg/tokenmeta"
	walletpkg "github.com/vortexartec/tola-ledger/pkg/wallet"
)

// Server holds cfg to init the ledger server.
type Server struct {
	cfg *config.Config
}

// NewServer initializes new ledger server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("ledger server config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting ledger server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer db.Close()
	logger.Info("Connected to database",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database),
	)

	chainClient, err := chain.NewEVMClient(&cfg.Chain, logger)
	if err != nil {
		return fmt.Errorf("connect chain rpc: %w", err)
	}
	defer chainClient.Close()
	logger.Info("Connected to chain", zap.String("rpc_url", cfg.Chain.RPCURL))

	metaCache := s.newMetadataCache(logger)

	ledgerStore := ledger.NewStore(db)
	walletStore := walletpkg.NewStore(db)
	paymentStore := payment.NewStore(db)

	tokenService := tokenservice.NewLog(
		tokenservice.New(&cfg.Marketplace, chainClient, ledgerStore, metaCache, cfg.Auth.AdminWallets, logger),
		logger,
	)

	processor := payment.NewProcessor(paymentStore, tokenService, &cfg.Marketplace, logger)
	stopResumer := s.startResumer(ctx, processor, logger)
	defer stopResumer()

	stopConfirmer := s.startConfirmer(ledgerStore, chainClient, logger)
	defer stopConfirmer()

	sessions := auth.NewSessionManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	walletService := walletpkg.New(walletStore, sessions, cfg.Auth.ChallengeTTL, logger)

	router := s.setupRouter(sessions, tokenService, walletService, ledgerStore, processor, paymentStore, logger)

	err = apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)

	// Stop background work before deferred DB/client closes kick in.
	stopResumer()
	stopConfirmer()

	return err
}

// newMetadataCache picks redis when configured, otherwise an in-process map.
func (s *Server) newMetadataCache(logger *zap.Logger) tokenmeta.Cache {
	ttl := s.cfg.Marketplace.MetadataCacheTTL
	if ttl <= 0 {
		ttl = tokenmeta.DefaultTTL
	}

	if s.cfg.Redis.Addr == "" {
		logger.Info("Using in-memory token metadata cache", zap.Duration("ttl", ttl))
		return tokenmeta.NewMemoryCache(ttl)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     s.cfg.Redis.Addr,
		Password: s.cfg.Redis.Password,
		DB:       s.cfg.Redis.DB,
	})
	logger.Info("Using redis token metadata cache",
		zap.String("addr", s.cfg.Redis.Addr),
		zap.Duration("ttl", ttl),
	)
	return tokenmeta.NewRedisCache(client, ttl)
}

func (s *Server) startResumer(ctx context.Context, processor *payment.Processor, logger *zap.Logger) func() {
	if s.cfg.Payments.ResumeInterval <= 0 {
		return func() {}
	}

	// Pick up intents interrupted by a previous crash before serving.
	if err := processor.Resume(ctx); err != nil {
		logger.Warn("Startup payment resume failed (will retry periodically)", zap.Error(err))
	}

	processor.StartResumer(s.cfg.Payments.ResumeInterval)
	return func() { processor.Stop() }
}

func (s *Server) startConfirmer(store ledger.Store, chainClient chain.Client, logger *zap.Logger) func() {
	if !s.cfg.Confirmer.Enabled {
		return func() {}
	}

	c := confirmerpkg.New(store, chainClient, &s.cfg.Confirmer, logger)
	c.Start()
	return func() { c.Stop() }
}

func (s *Server) setupRouter(
	sessions *auth.SessionManager,
	tokenService tokenservice.Service,
	walletService walletpkg.Service,
	ledgerStore ledger.Store,
	processor *payment.Processor,
	paymentStore payment.Store,
	logger *zap.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		// Provider discovery and the challenge/verify handshake have no
		// session yet.
		walletpkg.RegisterPublicRoutes(api, walletService, logger)

		api.Group(func(protected chi.Router) {
			protected.Use(auth.Middleware(sessions))

			tokenservice.RegisterRoutes(protected, tokenService, logger)
			ledger.RegisterRoutes(protected, ledgerStore, logger)
			payment.RegisterRoutes(protected, processor, paymentStore, logger)
			walletpkg.RegisterProtectedRoutes(protected, walletService, logger)
		})
	})

	return r
}
