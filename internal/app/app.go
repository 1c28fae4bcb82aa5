package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dumpling2/steam-game-suggester/internal/cache"
	"github.com/dumpling2/steam-game-suggester/internal/db"
	"github.com/dumpling2/steam-game-suggester/internal/jobs"
	"github.com/dumpling2/steam-game-suggester/internal/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	Cache    *cache.Store

	sqlite  *db.SqliteService
	janitor *jobs.CacheJanitor
	cancel  context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	sqlite, err := db.NewSqliteService(cfg.DBPath, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init sqlite: %w", err)
	}
	if err := sqlite.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("sqlite automigrate: %w", err)
	}
	theDB := sqlite.DB()

	cacheStore, err := cache.New(cfg.CacheDir, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init cache store: %w", err)
	}

	reposet := wireRepos(theDB, log)
	clientset := wireClients(cfg, cacheStore, log)
	serviceset := wireServices(cfg, reposet, clientset, log)
	handlerset := wireHandlers(log, serviceset, cacheStore)
	router := wireRouter(handlerset)

	return &App{
		Log:      log,
		DB:       theDB,
		Router:   router,
		Cfg:      cfg,
		Repos:    reposet,
		Clients:  clientset,
		Services: serviceset,
		Cache:    cacheStore,
		sqlite:   sqlite,
		janitor:  jobs.NewCacheJanitor(cacheStore, log, cfg.JanitorSweepInterval, cfg.JanitorStatsInterval),
	}, nil
}

func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.janitor.Start(ctx)
}

func (a *App) Run(addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.sqlite != nil {
		a.sqlite.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
