package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"lifeway-backend/internal/apikeys"
	"lifeway-backend/internal/blog"
	"lifeway-backend/internal/catalog"
	"lifeway-backend/internal/formfiles"
	"lifeway-backend/internal/forms"
	"lifeway-backend/internal/imagesearch"
	"lifeway-backend/internal/llm"
	"lifeway-backend/internal/llm/openai"
	"lifeway-backend/internal/reports"
	"lifeway-backend/internal/seed"
	"lifeway-backend/internal/services/health"
	"lifeway-backend/internal/shared/auth"
	"lifeway-backend/internal/shared/config"
	"lifeway-backend/internal/shared/server"
	"lifeway-backend/internal/shared/storage/db"
	"lifeway-backend/internal/shared/storage/object"
	localstore "lifeway-backend/internal/shared/storage/object/local"
	s3store "lifeway-backend/internal/shared/storage/object/s3"
	"lifeway-backend/internal/shared/telemetry"
)

// App is the clients context every binary builds once: configuration,
// connections and the services on top of them.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	LLM    llm.Completer
	Auth   *auth.Authenticator

	Forms       *forms.Prober
	FormFiles   *formfiles.Store
	Reports     *reports.Service
	ImageSearch *imagesearch.Searcher
	Blog        *blog.Service
	Catalog     *catalog.Service
	APIKeys     *apikeys.Service
	Health      *health.Service
}

// Build prepares shared dependencies and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	completer, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		LLM:    completer,
	}
	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:      cfg,
		Auth:        app.Auth,
		Health:      app.Health,
		Forms:       forms.NewHandler(app.Forms),
		FormFiles:   formfiles.NewHandler(app.FormFiles),
		Reports:     reports.NewHandler(app.Reports),
		ImageSearch: imagesearch.NewHandler(app.ImageSearch),
		Blog:        blog.NewHandler(app.Blog),
		Catalog:     catalog.NewHandler(app.Catalog),
		APIKeys:     apikeys.NewHandler(app.APIKeys),
	})
	return app, nil
}

// Seeder returns a seeder writing through the app's services.
func (a *App) Seeder() *seed.Seeder {
	return &seed.Seeder{Blog: a.Blog, Catalog: a.Catalog}
}

// Backfiller returns the image backfill job for blog posts.
func (a *App) Backfiller(limit int) *imagesearch.Backfiller {
	return &imagesearch.Backfiller{
		Articles: a.Blog,
		Finder:   a.ImageSearch,
		Delay:    a.Config.ImageSearchDelay,
		Limit:    limit,
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.database_disabled", map[string]any{"env": cfg.Env, "reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultLambdaOptions()))
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	}
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildLLM(cfg config.Config) (llm.Completer, error) {
	if cfg.OpenAIAPIKey == "" {
		telemetry.Warn("bootstrap.llm_disabled", map[string]any{"reason": "OPENAI_API_KEY empty"})
		return llm.PlaceholderCompleter{}, nil
	}
	client, err := openai.NewClient(cfg.OpenAIAPIKey, openai.Options{
		Model:       cfg.LLMModel,
		Temperature: float32(cfg.LLMTemperature),
		MaxTokens:   cfg.LLMMaxTokens,
		Timeout:     cfg.LLMTimeout,
	})
	if err != nil {
		return nil, err
	}
	return llm.WithRetry(client, llm.DefaultRetryDelay), nil
}

func buildServices(app *App) error {
	var (
		formRepo    forms.Repo
		reportRepo  reports.Repo
		blogRepo    blog.Repo
		catalogRepo catalog.Repo
		keyRepo     apikeys.Repo
		pinger      health.Pinger
	)
	if app.DB != nil {
		formRepo = &forms.PGRepo{DB: app.DB}
		reportRepo = &reports.PGRepo{DB: app.DB}
		blogRepo = &blog.PGRepo{DB: app.DB}
		catalogRepo = &catalog.PGRepo{DB: app.DB}
		keyRepo = &apikeys.PGRepo{DB: app.DB}
		pinger = app.DB
	} else {
		formRepo = forms.NewMemoryRepo()
		reportRepo = reports.NewMemoryRepo()
		blogRepo = blog.NewMemoryRepo()
		catalogRepo = catalog.NewMemoryRepo()
		keyRepo = apikeys.NewMemoryRepo()
	}

	prober, err := forms.NewProber(formRepo, app.Config.FormSchema)
	if err != nil {
		return err
	}
	reportSvc, err := reports.NewService(app.LLM, reportRepo, prober, app.Config.LLMModel)
	if err != nil {
		return err
	}

	app.Forms = prober
	app.FormFiles = formfiles.NewStore(app.Store)
	app.Reports = reportSvc
	app.ImageSearch = imagesearch.NewSearcher(imagesearch.Keys{
		Unsplash: app.Config.UnsplashAccessKey,
		Pexels:   app.Config.PexelsAPIKey,
		Pixabay:  app.Config.PixabayAPIKey,
	})
	app.Blog = blog.NewService(blogRepo)
	app.Catalog = catalog.NewService(catalogRepo)
	app.APIKeys = apikeys.NewService(keyRepo)
	app.Health = health.NewService(pinger)

	app.Auth = &auth.Authenticator{
		Secret:    app.Config.AdminAPISecret,
		JWTSecret: []byte(app.Config.SupabaseJWTSecret),
		Keys:      app.APIKeys,
	}
	if app.Config.SupabaseJWTSecret == "" {
		app.Auth.JWTSecret = nil
	}
	// Creating the first API key needs a secret or a JWT.
	if app.Config.AdminAPISecret == "" && app.Config.SupabaseJWTSecret == "" {
		if app.Config.IsDevLike() {
			telemetry.Warn("bootstrap.admin_open", map[string]any{"env": app.Config.Env})
			app.Auth.Open = true
		} else {
			telemetry.Error("bootstrap.admin_unreachable", map[string]any{"env": app.Config.Env})
		}
	}
	return nil
}
