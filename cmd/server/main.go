package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/gsarma/judgepad/internal/api"
	"github.com/gsarma/judgepad/internal/assist"
	"github.com/gsarma/judgepad/internal/config"
	"github.com/gsarma/judgepad/internal/crypto"
	"github.com/gsarma/judgepad/internal/hostmsg"
	"github.com/gsarma/judgepad/internal/logger"
	"github.com/gsarma/judgepad/internal/session"
	"github.com/gsarma/judgepad/internal/store"
	"github.com/gsarma/judgepad/internal/worker"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var queries store.Querier
	var creds session.CredentialStore
	if cfg.DatabaseURL != "" {
		if cfg.RootEncryptionKey == "" {
			zl.Fatal("ROOT_ENCRYPTION_KEY is required with DATABASE_URL")
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			zl.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		enc, err := crypto.NewEncryptor(cfg.RootEncryptionKey)
		if err != nil {
			zl.Fatal("failed to initialize encryptor", zap.Error(err))
		}
		q := store.New(pool)
		queries = q
		creds = session.NewVault(q, enc)
	} else {
		zl.Warn("DATABASE_URL not set: sessions are in-memory and runs are synchronous")
	}

	broker := hostmsg.NewBroker(64)
	bus := hostmsg.Fanout{broker}
	var natsBus *hostmsg.NATSBus
	if cfg.NatsURL != "" {
		nc, err := nats.Connect(cfg.NatsURL, nats.Name("judgepad"))
		if err != nil {
			zl.Fatal("failed to connect to NATS", zap.String("url", cfg.NatsURL), zap.Error(err))
		}
		defer nc.Drain()
		natsBus = hostmsg.NewNATSBus(nc, zl)
		bus = append(bus, natsBus)
	}

	chat, err := assist.NewChatModel(ctx, cfg.Assistant)
	if err != nil {
		zl.Fatal("failed to build chat model", zap.Error(err))
	}
	if chat == nil {
		zl.Warn("GROQ_API_KEY not set: assistant disabled")
	}
	assistant := assist.NewAssistant(chat, zl)

	sessions := session.NewManager(session.Deps{
		Backend:       cfg.Backend,
		HTTPClient:    &http.Client{Timeout: 30 * time.Second},
		AssetLocation: cfg.AdditionalFilesURL,
		Poller:        cfg.Poller(),
		Assistant:     assistant,
		Bus:           bus,
		Credentials:   creds,
		Logger:        zl,
	})
	if natsBus != nil {
		if _, err := natsBus.ServeCommands(sessions.HandleCommand); err != nil {
			zl.Fatal("failed to subscribe to commands", zap.Error(err))
		}
	}

	h := api.NewHandler(queries, sessions, assistant, broker, zl)
	router := gin.Default()
	api.RegisterRoutes(router, h)

	var w *worker.Worker
	if queries != nil {
		w = worker.New(queries, h, cfg.WorkerConcurrency, zl)
	}

	switch cfg.Mode {
	case "worker":
		if w == nil {
			zl.Fatal("worker mode requires DATABASE_URL")
		}
		zl.Info("starting in worker-only mode")
		w.Start(ctx) // blocks until ctx cancelled
	case "api":
		// API-only: no embedded worker goroutines; scale workers separately.
		zl.Info("starting in api-only mode")
		serve(ctx, zl, router, cfg.Port)
	default:
		// Default: run both API server and worker in the same process.
		if w != nil {
			go w.Start(ctx)
		}
		serve(ctx, zl, router, cfg.Port)
	}
}

func serve(ctx context.Context, zl *zap.Logger, router *gin.Engine, port string) {
	srv := &http.Server{Addr: ":" + port, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	zl.Info("listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zl.Fatal("server error", zap.Error(err))
	}
}
