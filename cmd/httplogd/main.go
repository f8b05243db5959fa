package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/xela07ax/httplog-starter/internal/advice"
	"github.com/xela07ax/httplog-starter/internal/infra"
	"github.com/xela07ax/httplog-starter/internal/middleware"
	"github.com/xela07ax/httplog-starter/internal/repository/postgres"
	"github.com/xela07ax/httplog-starter/internal/repository/redisstore"
	"github.com/xela07ax/httplog-starter/internal/shipper"
	"github.com/xela07ax/httplog-starter/internal/tasks"
)

func main() {
	// 1. Конфигурация и логгер
	cfg, err := infra.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Метрики
	reg := prometheus.NewRegistry()
	metrics := advice.NewMetrics(reg)

	// 3. Sink'и: zap всегда, внешнее хранилище — если настроено
	sinks := advice.MultiSink{advice.NewZapSink(logger.Named("http-logging"))}

	storage, closeStorage, err := newStorage(appCtx, cfg)
	if err != nil {
		logger.Fatal("failed to init record storage", zap.Error(err))
	}
	var ship *shipper.Shipper
	if storage != nil {
		defer closeStorage()
		reliable := shipper.NewReliableStorage(storage, shipper.ReliabilityConfig{
			RateLimit:     cfg.Shipper.RateLimit,
			RetryAttempts: cfg.Shipper.RetryAttempts,
			MaxFailures:   cfg.Shipper.CBMaxFailures,
			Timeout:       cfg.Shipper.CBTimeout,
		})
		ship = shipper.New(reliable, logger,
			shipper.WithBufferSize(cfg.Shipper.BufferSize),
			shipper.WithBatchSize(cfg.Shipper.BatchSize),
			shipper.WithFlushInterval(cfg.Shipper.FlushInterval),
			shipper.WithMetrics(metrics),
		)
		ship.Start()
		sinks = append(sinks, ship)
		logger.Info("record shipper started", zap.String("backend", cfg.Shipper.Backend))
	}

	// 4. Ядро: политика + таблица перехвата
	policy := advice.NewPolicy(cfg.HTTP.Logging.Enabled, cfg.HTTP.Logging.Level)
	rules := advice.DefaultRules().WithHooks(advice.ServiceMethod, tasks.Hooks())
	interceptor := advice.New(policy, sinks, advice.WithRules(rules), advice.WithMetrics(metrics))

	logger.Info("http logging policy",
		zap.Bool("enabled", policy.Enabled()),
		zap.String("level", policy.Level().String()),
	)

	// 5. Приложение
	taskService := tasks.NewService(tasks.NewMemoryRepository(), interceptor)
	taskHandler := tasks.NewHandler(taskService, interceptor)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Mount("/tasks", taskHandler.Routes())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Экспортируем метрики для Prometheus
	metricsSrv := &http.Server{
		Addr:    cfg.Metrics.Addr,
		Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	// gRPC: health-сервис, вызовы проходят через тот же Interceptor
	grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(middleware.UnaryServerInterceptor(interceptor)))
	healthpb.RegisterHealthServer(grpcSrv, health.NewServer())
	if addr := os.Getenv("GRPC_ADDR"); addr != "" {
		go func() {
			lis, err := net.Listen("tcp", addr)
			if err != nil {
				logger.Fatal("failed to listen gRPC", zap.Error(err))
			}
			logger.Info("gRPC server started", zap.String("addr", addr))
			if err := grpcSrv.Serve(lis); err != nil {
				logger.Error("gRPC server failed", zap.Error(err))
			}
		}()
	}

	// 6. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-stop
	logger.Info("server stopping...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	grpcSrv.GracefulStop()
	_ = metricsSrv.Shutdown(shutdownCtx)

	// Shipper останавливаем последним: все записи от завершившихся запросов уже в буфере
	if ship != nil {
		ship.Stop()
	}
	logger.Info("server exited properly")
}

// newStorage выбирает хранилище для shipper по shipper.backend.
func newStorage(ctx context.Context, cfg *infra.Config) (shipper.Storage, func(), error) {
	switch cfg.Shipper.Backend {
	case "":
		return nil, func() {}, nil

	case "postgres":
		if cfg.Database.URL == "" {
			return nil, nil, errors.New("database.url is required for postgres backend")
		}
		repo, err := postgres.NewRecordRepo(cfg.Database.URL, cfg.Database.MaxConns)
		if err != nil {
			return nil, nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := repo.Ping(pingCtx); err != nil {
			return nil, nil, err
		}
		if err := repo.EnsureSchema(pingCtx); err != nil {
			return nil, nil, err
		}
		return repo, func() { repo.Close() }, nil

	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			return nil, nil, err
		}
		return redisstore.NewRecordStream(rdb, int64(cfg.Shipper.BufferSize)), func() { rdb.Close() }, nil

	default:
		return nil, nil, errors.New("unknown shipper.backend: " + cfg.Shipper.Backend)
	}
}
