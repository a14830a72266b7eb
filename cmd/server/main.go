package main

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rl1809/counter-pos/internal/adapter/handler"
	"github.com/rl1809/counter-pos/internal/adapter/receipt"
	"github.com/rl1809/counter-pos/internal/adapter/storage"
	"github.com/rl1809/counter-pos/internal/config"
	"github.com/rl1809/counter-pos/internal/core/service"
	"github.com/rl1809/counter-pos/internal/port"
)

const (
	amqpDialAttempts = 5
	shutdownTimeout  = 5 * time.Second
	reapInterval     = time.Minute
)

type sessionStore interface {
	port.SessionRepository
	port.IdempotencyRepository
}

type schemaStore interface {
	port.InventoryRepository
	EnsureSchema(ctx context.Context) error
}

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}

	logger, err := newLogger(cfg.LogDev)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Inventory store
	repo, closeRepo, err := openInventoryStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open inventory store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeRepo()

	// Bill sessions
	var sessions sessionStore = storage.NewMemorySessionStore()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 20,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		defer rdb.Close()
		sessions = storage.NewRedisAdapter(rdb)
		logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
	}

	// Receipt exporters
	exporters := []port.ReceiptExporter{receipt.NewFileExporter(cfg.ReceiptDir, logger)}
	if cfg.AMQPURL != "" {
		conn, ch, err := receipt.SetupConn(cfg.AMQPURL, amqpDialAttempts, logger)
		if err != nil {
			logger.Fatal("failed to connect rabbitmq", zap.Error(err))
		}
		defer closeAMQP(conn, ch)
		exporters = append(exporters, receipt.NewAMQPPublisher(ch))
		logger.Info("publishing receipts", zap.String("exchange", receipt.ExchangeName))
	}

	// Services
	cache := service.NewInventoryCache(repo, logger)
	if err := cache.Load(ctx); err != nil {
		logger.Fatal("failed to load inventory", zap.Error(err))
	}
	catalog := service.NewCatalogService(repo, cache, logger)
	counter := service.NewCounterService(
		cache,
		service.NewBillingService(cache, logger),
		service.NewSaleConfirmer(logger),
		sessions,
		sessions,
		exporters,
		logger,
	)

	// gRPC server
	grpcServer := grpc.NewServer()
	handler.RegisterCounterServer(grpcServer, handler.NewGRPCHandler(counter, catalog, logger))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
	}

	// HTTP server
	mux := http.NewServeMux()
	handler.NewHTTPHandler(counter, catalog, logger).Register(mux)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		return grpcServer.Serve(lis)
	})

	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Idle bills give their stock back
	g.Go(func() error {
		ticker := time.NewTicker(reapInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if _, err := counter.ReapIdle(gctx, cfg.SessionTTL); err != nil {
					logger.Warn("idle bill sweep failed", zap.Error(err))
				}
			}
		}
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")
		healthServer.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown incomplete", zap.Error(err))
		}
		logger.Info("HTTP server stopped")

		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", zap.Error(err))
	}
	logger.Info("connections closed")
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func openInventoryStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (port.InventoryRepository, func(), error) {
	var (
		db    *sql.DB
		store schemaStore
		err   error
	)

	switch cfg.StoreDriver {
	case config.DriverMemory:
		logger.Warn("using in-memory inventory store, data is lost on exit")
		return storage.NewMemoryInventoryStore(), func() {}, nil
	case config.DriverMySQL:
		db, err = sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		store = storage.NewMySQLAdapter(db, logger)
	case config.DriverPostgres:
		db, err = sql.Open("pgx", cfg.PgDSN)
		if err != nil {
			return nil, nil, err
		}
		store = storage.NewPostgresAdapter(db)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	logger.Info("connected to inventory store", zap.String("driver", cfg.StoreDriver))
	return store, func() { db.Close() }, nil
}

func closeAMQP(conn *amqp.Connection, ch *amqp.Channel) {
	ch.Close()
	conn.Close()
}
