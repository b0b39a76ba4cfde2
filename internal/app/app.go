package app

import (
	"context"
	"errors"
	"fmt"
	"hackassist_web/internal/backend"
	"hackassist_web/internal/config"
	"hackassist_web/internal/controller"
	"hackassist_web/internal/events"
	"hackassist_web/internal/repository"
	"hackassist_web/internal/service"
	"hackassist_web/internal/state"
	"hackassist_web/internal/util"
	"hackassist_web/pkg/configwatcher"
	"hackassist_web/pkg/database"
	"hackassist_web/pkg/logger"
	"hackassist_web/pkg/monitoring"
	"hackassist_web/pkg/security"
	"hackassist_web/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	Backend  *backend.Client
	Registry *state.Registry
	Events   *events.Bus

	shutdownTracer  func(context.Context) error
	configCallbacks []func(*config.Config)
	cfgMu           sync.RWMutex
}

type storage struct {
	repo repository.SessionRepository
	ping controller.Pinger
}

type controllers struct {
	session   *controller.SessionController
	auth      *controller.AuthController
	chat      *controller.ChatController
	team      *controller.TeamController
	dashboard *controller.DashboardController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// CurrentConfig returns the latest loaded configuration.
func (a *App) CurrentConfig() *config.Config {
	a.cfgMu.RLock()
	defer a.cfgMu.RUnlock()
	return a.Config
}

func (a *App) reload(cfg *config.Config) {
	a.cfgMu.Lock()
	a.Config = cfg
	a.cfgMu.Unlock()
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

// initStorage 根据 session.storage 选择快照存储
func (a *App) initStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.Session.Storage {
	case util.StorageRedis:
		rdb, err := database.InitRedis(ctx, &cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.Redis = rdb
		return &storage{
			repo: repository.NewRedisSessionRepository(rdb, cfg.Session.TTL()),
			ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}, nil
	case util.StorageMySQL, util.StoragePostgres:
		cfg.Database.Driver = cfg.Session.Storage
		db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == gin.DebugMode)
		if err != nil {
			return nil, err
		}
		a.DB = db
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		return &storage{
			repo: repository.NewGormSessionRepository(db),
			ping: sqlDB.PingContext,
		}, nil
	case util.StorageMemory, "":
		return &storage{repo: repository.NewMemorySessionRepository()}, nil
	}
	return nil, fmt.Errorf("unsupported session storage %q", cfg.Session.Storage)
}

func (a *App) initControllers(cfg *config.Config, st *storage) *controllers {
	return &controllers{
		session:   controller.NewSessionController(),
		auth:      controller.NewAuthController(),
		chat:      controller.NewChatController(),
		team:      controller.NewTeamController(),
		dashboard: controller.NewDashboardController(service.NewDashboardService(a.Backend)),
		health:    controller.NewHealthController(cfg.Session.Storage, st.ping),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) (*App, error) {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")
	gin.SetMode(cfg.Server.Mode)

	ctx := context.Background()
	app := &App{
		Config:  cfg,
		Backend: backend.NewClient(cfg.API),
		Events:  events.NewBus(),
	}

	st, err := app.initStorage(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init session storage: %w", err)
	}
	logger.Log.Info("Session storage ready", zap.String("storage", cfg.Session.Storage))

	app.Registry = state.NewRegistry(st.repo, app.Backend, app.Events, state.Options{
		SessionKey:    cfg.Session.Key,
		IdleTimeout:   cfg.Session.IdleTimeout(),
		RedirectDelay: cfg.Session.RedirectDelay(),
	})

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(ctx, "hackassist-web", cfg.Tracing.Exporter, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
		app.shutdownTracer = tp.Shutdown
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Server.Mode == gin.DebugMode {
		router.Use(gin.Logger())
	}
	app.Router = router
	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, app.initControllers(cfg, st), cfg)

	// 热加载：后端地址与日志级别可在运行时调整
	app.RegisterConfigCallback(func(c *config.Config) {
		app.Backend.SetBaseURL(c.API.BaseURL)
		logger.SetLevel(c)
		logger.Log.Info("Configuration reloaded", zap.String("apiBaseUrl", app.Backend.BaseURL()))
	})

	return app, nil
}

func (a *App) startBackgroundTasks(ctx context.Context) {
	if err := a.Events.Run(ctx); err != nil {
		logger.Log.Error("Failed to start event consumers", zap.Error(err))
	}

	go a.Registry.Run(ctx)

	if a.Config.Path != "" {
		go func() {
			if err := configwatcher.WatchConfig(ctx, a.Config.Path, a.reload); err != nil {
				logger.Log.Warn("Config watcher stopped", zap.Error(err))
			}
		}()
	}
}

func (a *App) Run() {
	cfg := a.CurrentConfig()
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := context.WithCancel(context.Background())
	a.startBackgroundTasks(ctx)

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	// 取消所有客户端仍在进行的请求
	stop()
	a.Registry.Close()
	if err := a.Events.Close(); err != nil {
		logger.Log.Warn("Failed to close event bus", zap.Error(err))
	}
	if a.shutdownTracer != nil {
		if err := a.shutdownTracer(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	logger.Log.Info("Server exiting")
}
