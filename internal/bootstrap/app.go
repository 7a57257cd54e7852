package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"docscan-backend/internal/classify"
	"docscan-backend/internal/documents"
	"docscan-backend/internal/events"
	"docscan-backend/internal/extract/sentiment"
	"docscan-backend/internal/ocr"
	ocrlocal "docscan-backend/internal/ocr/local"
	"docscan-backend/internal/ocr/textract"
	"docscan-backend/internal/shared/config"
	"docscan-backend/internal/shared/metrics"
	"docscan-backend/internal/shared/server"
	"docscan-backend/internal/shared/storage/db"
	"docscan-backend/internal/shared/storage/object"
	localstore "docscan-backend/internal/shared/storage/object/local"
	s3store "docscan-backend/internal/shared/storage/object/s3"
)

// App holds shared dependencies built once at startup.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Store            object.ObjectStore
	Engine           ocr.Engine
	DocumentsRepo    documents.DocumentsRepo
	EventsRepo       events.EventsRepo
	DocumentsService *documents.Service
	DocumentsHandler *documents.Handler
	EventsHandler    *events.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	metrics.Register()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	engine, err := buildEngine(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Engine: engine,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:    cfg,
		Documents: app.DocumentsHandler,
		Events:    app.EventsHandler,
	})

	return app, nil
}

// Close releases resources held by the app.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// buildDB connects to Postgres and applies migrations. In dev-like
// environments a missing or unreachable database falls back to in-memory
// repositories instead of failing startup.
func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildEngine(ctx context.Context, cfg config.Config) (ocr.Engine, error) {
	switch cfg.OCREngine {
	case "textract":
		return textract.New(ctx, cfg.AWSRegion)
	default:
		return ocrlocal.New(), nil
	}
}

func buildServices(app *App) {
	if app.DB != nil {
		app.DocumentsRepo = &documents.PGRepo{DB: app.DB}
		app.EventsRepo = &events.PGRepo{DB: app.DB}
	} else {
		app.DocumentsRepo = documents.NewMemoryRepo()
		app.EventsRepo = events.NewMemoryRepo()
	}

	app.DocumentsService = &documents.Service{
		Repo:           app.DocumentsRepo,
		Events:         app.EventsRepo,
		Store:          app.Store,
		Engine:         app.Engine,
		Classifier:     classify.NewKeywordPolicy(app.Config.ClassifyThreshold),
		Scorer:         sentiment.KeywordScorer{},
		OCRTimeout:     app.Config.OCRTimeout,
		MaxUploadBytes: app.Config.MaxUploadMB << 20,
	}
	app.DocumentsHandler = documents.NewHandler(app.DocumentsService)
	app.EventsHandler = events.NewHandler(app.EventsRepo)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
