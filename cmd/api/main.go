package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/campus-fixit/issue-service/internal/api/http"
	"github.com/campus-fixit/issue-service/internal/api/http/handlers"
	"github.com/campus-fixit/issue-service/internal/auth"
	"github.com/campus-fixit/issue-service/internal/config"
	"github.com/campus-fixit/issue-service/internal/events"
	"github.com/campus-fixit/issue-service/internal/notification"
	"github.com/campus-fixit/issue-service/internal/observability"
	"github.com/campus-fixit/issue-service/internal/persistence"
	"github.com/campus-fixit/issue-service/internal/repository"
	"github.com/campus-fixit/issue-service/internal/repository/memory"
	"github.com/campus-fixit/issue-service/internal/repository/mongostore"
	"github.com/campus-fixit/issue-service/internal/service"
	"github.com/campus-fixit/issue-service/internal/storage"
	"github.com/campus-fixit/issue-service/internal/worker"
)

const shutdownTimeout = 15 * time.Second

// stores groups the selected persistence backend.
type stores struct {
	users  repository.UserRepository
	issues repository.IssueRepository
	health []handlers.Dependency
	close  func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer st.close()

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	uploader, err := storage.New(cfg.Storage, cfg.App.PublicURL)
	if err != nil {
		logger.Fatal("failed to init image storage", zap.Error(err))
	}
	mailer, err := notification.NewMailer(cfg.Email, logger)
	if err != nil {
		logger.Fatal("failed to init mailer", zap.Error(err))
	}

	dispatcher := events.NewAsyncDispatcher(logger)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{UserRepo: st.users})
	issueService := service.NewIssueService(service.IssueDependencies{
		IssueRepo:     st.issues,
		UserRepo:      st.users,
		Uploader:      uploader,
		Dispatcher:    dispatcher,
		Metrics:       metrics,
		Logger:        logger,
		UploadTimeout: cfg.Storage.UploadTimeout(),
		MaxImageBytes: cfg.Storage.MaxImageBytes,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		Dispatcher:  dispatcher,
		UserRepo:    st.users,
		Mailer:      mailer,
		Metrics:     metrics,
		Logger:      logger,
		SendTimeout: cfg.Email.SendTimeout(),
	})
	notificationWorker := worker.StartNotificationWorker(notificationService, dispatcher, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    int(cfg.Storage.MaxImageBytes) + 1024*1024,
		ErrorHandler: httptransport.ErrorHandler(logger, metrics),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	health := append(st.health, handlers.Dependency{Name: "redis", Pinger: redis, Optional: true})
	uploadsDir := ""
	if cfg.Storage.Provider == storage.ProviderLocal {
		uploadsDir = cfg.Storage.LocalDir
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, health...),
		Auth:           handlers.NewAuthHandler(authService),
		Issues:         handlers.NewIssuesHandler(issueService),
		AdminIssues:    handlers.NewAdminIssuesHandler(issueService),
		AuthMiddleware: auth.NewAuthMiddleware(authService),
		Metrics:        metrics,
		Logger:         logger,
		Redis:          redis.Client,
		AuthPerMinute:  cfg.RateLimit.AuthPerMinute,
		UploadsDir:     uploadsDir,
	})

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.App.Addr()), zap.String("store", cfg.Store.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	notificationWorker.Stop(shutdownCtx)
}

func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		pool := pg.PoolHandle()
		return &stores{
			users:  repository.NewUserRepository(pool),
			issues: repository.NewIssueRepository(pool),
			health: []handlers.Dependency{{Name: "postgres", Pinger: pg}},
			close:  pg.Close,
		}, nil
	case config.StoreMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		return &stores{
			users:  memory.NewUserRepository(),
			issues: memory.NewIssueRepository(),
			close:  func() {},
		}, nil
	default:
		mongo, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, err
		}
		return &stores{
			users:  mongostore.NewUserRepository(mongo.DB),
			issues: mongostore.NewIssueRepository(mongo.DB),
			health: []handlers.Dependency{{Name: "mongodb", Pinger: mongo}},
			close: func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				mongo.Close(closeCtx)
			},
		}, nil
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
