package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"raffle/internal/config"
	cronrunner "raffle/internal/cron"
	"raffle/internal/db"
	"raffle/internal/handler"
	"raffle/internal/logger"
	"raffle/internal/models"
	"raffle/internal/raffle"
	gormrepository "raffle/internal/repository/gorm"
	"raffle/internal/service"
	"raffle/internal/stream"
)

func main() {
	cfgPath := os.Getenv("RAFFLE_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("RAFFLE_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := stream.NewHub(cfg.Stream.BufferSize, logger)
	journal := service.NewJournal(store, logger)
	go journal.Run(ctx)

	var sink raffle.EventSink = journal
	if cfg.Stream.Enabled {
		sink = raffle.MultiSink(journal, hub)
	}

	policy, seeded, err := loadPolicy(ctx, store, cfg.Factory)
	if err != nil {
		logger.Fatal("admin policy load failed", zap.Error(err))
	}

	core, err := raffle.New(raffle.Config{
		Owner:          policy.Owner,
		PlatformWallet: policy.PlatformWallet,
		PlatformFeeBps: policy.PlatformFeeBps,
		Paused:         policy.Paused,
		Sink:           sink,
	})
	if err != nil {
		logger.Fatal("factory init failed", zap.Error(err))
	}

	svc := service.NewFactoryService(core, store, logger)
	if err := svc.Reload(ctx); err != nil {
		logger.Fatal("ledger reload failed", zap.Error(err))
	}
	if seeded {
		svc.PersistPolicy(ctx)
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(handler.CORSMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	handler.RegisterDocs(engine)

	factoryHandler := &handler.FactoryHandler{Svc: svc}
	factoryHandler.Register(engine)
	raffleHandler := &handler.RaffleHandler{Svc: svc, Repo: store}
	raffleHandler.Register(engine)
	adminHandler := &handler.AdminHandler{Svc: svc}
	adminHandler.Register(engine)
	if cfg.Stream.Enabled {
		streamHandler := &handler.StreamHandler{Hub: hub, Logger: logger}
		streamHandler.Register(engine)
	}

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		if _, err := cronRunner.Add(cfg.Cron.Reconcile, func(ctx context.Context) {
			svc.Reconcile(ctx)
		}); err != nil {
			logger.Warn("cron register reconcile failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// loadPolicy prefers the persisted admin policy row; a fresh database falls
// back to the config seed. The bool reports whether the seed was used.
func loadPolicy(ctx context.Context, store interface {
	GetPlatformPolicy(ctx context.Context) (*models.PlatformPolicy, error)
}, seed config.FactoryConfig) (raffle.Policy, bool, error) {
	row, err := store.GetPlatformPolicy(ctx)
	if err != nil {
		return raffle.Policy{}, false, err
	}
	if row != nil {
		return raffle.Policy{
			Owner:          common.HexToAddress(row.Owner),
			PlatformWallet: common.HexToAddress(row.PayoutWallet),
			PlatformFeeBps: row.FeeBps,
			Paused:         row.Paused,
		}, false, nil
	}
	return raffle.Policy{
		Owner:          common.HexToAddress(seed.Owner),
		PlatformWallet: common.HexToAddress(seed.PayoutWallet),
		PlatformFeeBps: seed.FeeBps,
	}, true, nil
}
