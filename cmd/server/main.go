package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/multihop-ai/nli-review/internal/api"
	"github.com/multihop-ai/nli-review/internal/config"
	"github.com/multihop-ai/nli-review/internal/session"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load .env file: %v", err)
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	var store session.Store
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			logger.Fatal("ping database", zap.Error(err))
		}

		pg := session.NewPostgresStore(db)
		if err := pg.Migrate(context.Background()); err != nil {
			logger.Fatal("migrate sessions table", zap.Error(err))
		}
		store = pg
		logger.Info("using postgres session store")
	} else {
		mem := session.NewMemoryStore(cfg.SessionTTL)
		go sweepExpired(mem, logger)
		store = mem
		logger.Info("using in-memory session store", zap.Duration("ttl", cfg.SessionTTL))
	}

	server := api.NewServer(api.ServerConfig{
		Logger: logger,
		Store:  store,
		Config: cfg,
	})

	if err := server.Run(cfg.Addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// sweepExpired drops idle sessions on a fixed cadence.
func sweepExpired(store *session.MemoryStore, logger *zap.Logger) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for now := range ticker.C {
		if removed := store.PurgeExpired(now); removed > 0 {
			logger.Info("purged expired sessions", zap.Int("count", removed))
		}
	}
}
