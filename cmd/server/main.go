// Command server runs the deletion governance service: the HTTP surface over
// the deletion orchestrator, its stores, and the audit pipeline.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	deletionhandler "github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/handler"
	deletionmetrics "github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/metrics"
	"github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/models"
	"github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/service"
	approvalstore "github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/store/approval"
	snapshotstore "github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/store/snapshot"
	jwttoken "github.com/marcelarangelrhellorh/rhelloflow/internal/jwt_token"
	"github.com/marcelarangelrhellorh/rhelloflow/internal/platform/config"
	"github.com/marcelarangelrhellorh/rhelloflow/internal/platform/httpserver"
	"github.com/marcelarangelrhellorh/rhelloflow/internal/platform/logger"
	platformmetrics "github.com/marcelarangelrhellorh/rhelloflow/internal/platform/metrics"
	platformredis "github.com/marcelarangelrhellorh/rhelloflow/internal/platform/redis"
	resourcestore "github.com/marcelarangelrhellorh/rhelloflow/internal/resource/store"
	httptransport "github.com/marcelarangelrhellorh/rhelloflow/internal/transport/http"
	audit "github.com/marcelarangelrhellorh/rhelloflow/pkg/platform/audit"
	auditkafka "github.com/marcelarangelrhellorh/rhelloflow/pkg/platform/audit/kafka"
	auditmemory "github.com/marcelarangelrhellorh/rhelloflow/pkg/platform/audit/store/memory"
	auditpostgres "github.com/marcelarangelrhellorh/rhelloflow/pkg/platform/audit/store/postgres"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/platform/audit/publisher"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(logger.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: Postgres when configured, in-memory otherwise.
	var (
		resources service.ResourceStore
		approvals service.ApprovalStore
		snapshots service.SnapshotStore
		events    audit.Store
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("database ping failed", "error", err)
			os.Exit(1)
		}
		resources = resourcestore.NewPostgres(db)
		approvals = approvalstore.NewPostgres(db)
		snapshots = snapshotstore.NewPostgres(db)
		events = auditpostgres.New(db)
	} else {
		log.Warn("no database configured, using in-memory stores")
		resources = resourcestore.NewInMemory()
		approvals = approvalstore.NewInMemory()
		snapshots = snapshotstore.NewInMemory()
		events = auditmemory.NewInMemoryStore()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	publisherOpts := []publisher.Option{
		publisher.WithLogger(log),
	}
	if cfg.AuditBuffer > 0 {
		publisherOpts = append(publisherOpts, publisher.WithAsyncBuffer(cfg.AuditBuffer))
	}
	if len(cfg.Kafka.Seeds) > 0 {
		sink, err := auditkafka.NewSink(cfg.Kafka.Seeds, cfg.Kafka.Topic, log)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer sink.Close()
		publisherOpts = append(publisherOpts, publisher.WithSink(sink))
	}
	auditor := publisher.NewPublisher(events, publisherOpts...)
	defer auditor.Close()

	threshold := models.RiskLevel(cfg.ApprovalThreshold)
	if !threshold.Valid() {
		log.Warn("invalid approval threshold, defaulting to critical", "value", cfg.ApprovalThreshold)
		threshold = models.RiskCritical
	}

	deletionService := service.New(
		resources,
		approvals,
		snapshots,
		auditor,
		service.WithLogger(log),
		service.WithMetrics(deletionmetrics.New()),
		service.WithApprovalThreshold(threshold),
	)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)

	routerCfg := httptransport.RouterConfig{
		Deletion:       deletionhandler.New(deletionService, log),
		Validator:      jwttoken.NewJWTServiceAdapter(jwtService),
		Logger:         log,
		Metrics:        platformmetrics.New(),
		ThrottleLimit:  cfg.ThrottleLimit,
		ThrottleWindow: cfg.ThrottleWindow,
	}
	if redisClient != nil {
		routerCfg.Redis = redisClient.Client
	}

	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(routerCfg))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting rhelloflow deletion service", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
