package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/medspa-api/internal/audit"
	"github.com/BruksfildServices01/medspa-api/internal/config"
	dbpkg "github.com/BruksfildServices01/medspa-api/internal/db"
	"github.com/BruksfildServices01/medspa-api/internal/infra/lock"
	"github.com/BruksfildServices01/medspa-api/internal/infra/mailer"
	infraRepo "github.com/BruksfildServices01/medspa-api/internal/infra/repository"
	"github.com/BruksfildServices01/medspa-api/internal/infra/storage"
	"github.com/BruksfildServices01/medspa-api/internal/infra/stripegw"
	"github.com/BruksfildServices01/medspa-api/internal/logging"
	"github.com/BruksfildServices01/medspa-api/internal/middleware"
	"github.com/BruksfildServices01/medspa-api/internal/routes"
	"github.com/BruksfildServices01/medspa-api/internal/scheduler"
	"github.com/BruksfildServices01/medspa-api/internal/telemetry"
	ucInventory "github.com/BruksfildServices01/medspa-api/internal/usecase/inventory"
)

const shutdownTimeout = 15 * time.Second

func main() {

	cfg := config.Load()

	logger := logging.Init(cfg)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		zap.L().Fatal("invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	shutdownTracer, err := telemetry.Init(ctx, cfg.OTLPEndpoint)
	if err != nil {
		zap.L().Fatal("failed to init tracing", zap.Error(err))
	}

	db := dbpkg.NewDB(cfg)

	// ======================================================
	// INFRA
	// ======================================================
	store, err := storage.New(ctx, cfg)
	if err != nil {
		zap.L().Fatal("failed to init storage", zap.Error(err))
	}

	locker := newLocker(ctx, cfg)

	var mail mailer.Mailer = mailer.LogMailer{}
	if cfg.SMTPEnabled() {
		mail = mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	}

	if !cfg.StripeEnabled() {
		zap.L().Warn("STRIPE_SECRET_KEY not set, card payments disabled")
	}
	gateway := stripegw.New(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	dispatcher := audit.NewDispatcher(audit.New(db))

	sweep := ucInventory.NewSweepLowStock(
		infraRepo.NewInventoryGormRepository(db),
		mail,
		cfg.StockAlertTo,
	)

	sched, err := scheduler.New(cfg.Timezone, cfg.StockSweepSpec, sweep)
	if err != nil {
		zap.L().Fatal("invalid STOCK_SWEEP_SPEC", zap.String("spec", cfg.StockSweepSpec), zap.Error(err))
	}

	// ======================================================
	// HTTP
	// ======================================================
	if cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(telemetry.ServiceName))
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigin))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, routes.Deps{
		DB:         db,
		Config:     cfg,
		Store:      store,
		Locker:     locker,
		Gateway:    gateway,
		Dispatcher: dispatcher,
		Sweep:      sweep,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sched.Start()

	go func() {
		zap.L().Info("server running", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("failed to start server", zap.Error(err))
		}
	}()

	// ======================================================
	// SHUTDOWN
	// ======================================================
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	sched.Stop(shutdownCtx)

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("server shutdown", zap.Error(err))
	}

	dispatcher.Close()

	if closer, ok := locker.(*lock.RedisLocker); ok {
		_ = closer.Close()
	}

	if err := shutdownTracer(shutdownCtx); err != nil {
		zap.L().Error("tracer shutdown", zap.Error(err))
	}
}

// newLocker uses Redis when configured and reachable. Otherwise the payments
// unique index is the only idempotency guard.
func newLocker(ctx context.Context, cfg *config.Config) lock.Locker {
	if cfg.RedisAddr == "" {
		zap.L().Warn("REDIS_ADDR not set, payment locks disabled")
		return lock.Noop{}
	}

	l := lock.NewRedisLocker(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := l.Ping(pingCtx); err != nil {
		zap.L().Warn("redis unreachable, payment locks disabled", zap.Error(err))
		_ = l.Close()
		return lock.Noop{}
	}
	return l
}
