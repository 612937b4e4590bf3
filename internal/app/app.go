package app

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"

	"github.com/linemk/storefront/internal/config"
	"github.com/linemk/storefront/internal/localstore"
	"github.com/linemk/storefront/internal/objectstore"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *sql.DB
	// Local локальное хранилище сессий (избранное)
	Local *localstore.Store
	// Bucket хранилище изображений товаров
	Bucket *objectstore.Bucket
}

// NewApp создаёт новый экземпляр App
func NewApp(log *slog.Logger, cfg *config.Config) (*App, error) {

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD environment variable is not set")
	}
	// реализуем подключение к БД через DSN
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.Database.User,
		dbPassword,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LocalStore.Path), 0o755); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create local store dir: %w", err)
	}
	local, err := localstore.Open(cfg.LocalStore.Path)
	if err != nil {
		db.Close()
		return nil, err
	}

	bucket, err := objectstore.NewBucket(cfg.Storage.Dir, cfg.Storage.Bucket, cfg.Storage.PublicURL, cfg.Storage.MaxUploadSize)
	if err != nil {
		db.Close()
		local.Close()
		return nil, err
	}

	log.Info("app initialized",
		slog.String("local_store", cfg.LocalStore.Path),
		slog.String("bucket", bucket.Dir()),
	)

	app := &App{
		Config: cfg,
		Logger: log,
		DB:     db,
		Local:  local,
		Bucket: bucket,
	}

	return app, nil
}

// Close закрывает подключения к обоим хранилищам.
func (a *App) Close() error {
	return errors.Join(a.DB.Close(), a.Local.Close())
}
