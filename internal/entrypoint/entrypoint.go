package entrypoint

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/library/internal/audit"
	"github.com/mrlokans/library/internal/clock"
	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/database"
	auditRepo "github.com/mrlokans/library/internal/database/audit"
	"github.com/mrlokans/library/internal/database/catalog"
	"github.com/mrlokans/library/internal/database/inventory"
	http_controllers "github.com/mrlokans/library/internal/http"
	"github.com/mrlokans/library/internal/lending"
	"github.com/mrlokans/library/internal/recommend"
	"github.com/mrlokans/library/internal/scheduler"
	"github.com/mrlokans/library/internal/stats"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// ConfigureLogging applies the configured logrus level and format.
func ConfigureLogging(cfg config.Log) {
	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.WithField("level", cfg.Level).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if level != log.DebugLevel && level != log.TraceLevel {
		gin.SetMode(gin.ReleaseMode)
	}
}

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Infof("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infof("Shutdown Server, waiting %v before killing", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server Shutdown")
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Info("Server exiting")
}

func Run(cfg *config.Config, version string) {
	ConfigureLogging(cfg.Log)
	log.Infof("Starting Library v%s", version)

	loc, err := clock.LoadLocation(cfg.Lending.Timezone)
	if err != nil {
		log.Fatalf("Invalid LIBRARY_TIMEZONE %q: %v", cfg.Lending.Timezone, err)
	}
	systemClock := clock.System{Location: loc}

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	log.WithField("driver", db.Driver()).Info("Database ready")

	ledger := inventory.NewRepository(db.DB)
	books := catalog.NewRepository(db.DB)
	auditService := audit.NewService(auditRepo.NewRepository(db.DB))
	aggregator := stats.NewAggregator(db.DB, systemClock)

	loanPeriod := cfg.Lending.LoanPeriodDays
	if loanPeriod <= 0 {
		loanPeriod = config.DefaultLoanPeriodDays
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:     db,
		Version:      version,
		Lender:       lending.NewService(db.DB, ledger, systemClock, loanPeriod, auditService),
		Ledger:       ledger,
		Catalog:      books,
		Readers:      books,
		Statistics:   aggregator,
		Recommender:  recommend.NewScorer(db.DB, db.Dialect()),
		AuditLog:     auditService,
		AuditRecords: auditService,
	})

	overdueReport := scheduler.NewOverdueReportScheduler(aggregator, cfg.OverdueReport)
	if err := overdueReport.Start(context.Background()); err != nil {
		log.WithError(err).Error("Overdue report scheduler not started")
	}

	auditCleanup := scheduler.NewAuditCleanupScheduler(auditService, cfg.Audit)
	if err := auditCleanup.Start(); err != nil {
		log.WithError(err).Error("Audit cleanup scheduler not started")
	}

	onShutdown := func(ctx context.Context) {
		overdueReport.Stop()
		auditCleanup.Stop()
		auditService.Wait()
		if err := db.Close(); err != nil {
			log.WithError(err).Error("Error closing database")
		}
	}

	Serve(router, cfg, onShutdown)
}
