package db

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"bookapi/internal/config"
	"bookapi/internal/store"
	"bookapi/internal/store/gormstore"
	"bookapi/internal/store/mongostore"
	"bookapi/internal/store/redisstore"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open picks the backend from the DSN scheme, prepares indexes or tables and,
// when a Redis URL is configured, moves the deny-list to Redis.
func Open(ctx context.Context, cfg config.Config, log *slog.Logger) (*store.Stores, error) {
	stores, err := openPrimary(ctx, cfg.DatabaseURL, cfg.DatabaseName)
	if err != nil {
		return nil, err
	}

	if cfg.RedisURL != "" {
		client, err := redisstore.Connect(ctx, cfg.RedisURL)
		if err != nil {
			_ = stores.Close(context.Background())
			return nil, fmt.Errorf("redis: %w", err)
		}
		dl := redisstore.New(client)
		stores.ReplaceDenylist(dl, dl.Close)
		log.Info("denylist backed by redis")
	}
	return stores, nil
}

func openPrimary(ctx context.Context, dsn, dbName string) (*store.Stores, error) {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return nil, fmt.Errorf("database url has no scheme")
	}
	scheme = strings.ToLower(scheme)

	switch scheme {
	case "mongodb", "mongodb+srv":
		mdb, err := mongostore.Connect(ctx, dsn, dbName)
		if err != nil {
			return nil, fmt.Errorf("mongo: %w", err)
		}
		if err := mongostore.EnsureIndexes(ctx, mdb); err != nil {
			_ = mdb.Client().Disconnect(context.Background())
			return nil, err
		}
		return mongostore.Open(mdb), nil
	case "postgres", "postgresql":
		return openGorm(postgres.Open(dsn), false)
	case "sqlite":
		return openGorm(sqlite.Open(rest), isMemory(rest))
	default:
		return nil, fmt.Errorf("unsupported database url scheme %q", scheme)
	}
}

var autoMigrate = gormstore.AutoMigrate

func openGorm(dialector gorm.Dialector, memory bool) (*store.Stores, error) {
	gdb, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if memory {
		// Each new connection to :memory: is a fresh database.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := autoMigrate(gdb); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return gormstore.Open(gdb)
}

func isMemory(path string) bool {
	if strings.Contains(path, ":memory:") {
		return true
	}
	u, err := url.Parse(path)
	if err != nil {
		return false
	}
	return u.Query().Get("mode") == "memory"
}
