package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/faxmemaybe/backend/api/handler"
	"github.com/faxmemaybe/backend/internal/artifact"
	"github.com/faxmemaybe/backend/internal/config"
	"github.com/faxmemaybe/backend/internal/infrastructure/buffer"
	"github.com/faxmemaybe/backend/internal/infrastructure/monitor"
	pgInfra "github.com/faxmemaybe/backend/internal/infrastructure/postgres"
	redisInfra "github.com/faxmemaybe/backend/internal/infrastructure/redis"
	"github.com/faxmemaybe/backend/internal/middleware"
	"github.com/faxmemaybe/backend/internal/printer"
	"github.com/faxmemaybe/backend/internal/renderer"
	"github.com/faxmemaybe/backend/internal/router"
	"github.com/faxmemaybe/backend/internal/services"
	"github.com/faxmemaybe/backend/internal/services/lifecycle"
	"github.com/faxmemaybe/backend/internal/todoist"
	"github.com/faxmemaybe/backend/pkg/httpcontext"
	"github.com/faxmemaybe/backend/pkg/logger"
	"github.com/faxmemaybe/backend/repository/postgres"
	todoUC "github.com/faxmemaybe/backend/usecase/todo"
	webhookUC "github.com/faxmemaybe/backend/usecase/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	// Redis only backs the rate limiter, which fails open. A missing backend
	// downgrades to an unlimited API instead of refusing to boot.
	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
		redisClient = nil
	} else {
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
	}

	bufferStore, err := buffer.Open(cfg.Buffer.Path, "dispatch")
	if err != nil {
		zapLogger.Fatal("failed to open dispatch buffer", zap.Error(err))
	}
	manager.Register("dispatch_buffer", func(ctx context.Context) error {
		return bufferStore.Close()
	})

	mon := monitor.New(pool, redisClient, bufferStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	mappingRepo := postgres.NewMappingRepository(pool)

	tracker := todoist.NewClient(todoist.Config{
		Token:       cfg.Todoist.APIToken,
		ProjectName: cfg.Todoist.ProjectName,
		Timeout:     cfg.Todoist.Timeout,
	}, zapLogger)

	ticketRenderer := renderer.New(renderer.Config{
		TicketBaseURL: cfg.Renderer.TicketBaseURL,
		ChromeWSURL:   cfg.Renderer.ChromeWSURL,
		Selector:      cfg.Renderer.Selector,
		Timeout:       cfg.Renderer.Timeout,
	}, zapLogger)

	artifactStore, err := artifact.NewStore(appCtx, cfg.Artifact, zapLogger)
	if err != nil {
		zapLogger.Fatal("artifact store init failed", zap.Error(err))
	}

	printQueue, err := printer.NewQueue(appCtx, cfg.Printer, zapLogger)
	if err != nil {
		zapLogger.Fatal("print queue init failed", zap.Error(err))
	}

	redispatcher := services.NewRedispatcher(bufferStore, printQueue, zapLogger, services.SweepConfig{
		Interval:   cfg.Buffer.SweepInterval,
		BatchSize:  50,
		MaxRetries: cfg.Buffer.MaxRetry,
	})
	redispatcher.Start()
	manager.Register("redispatcher", func(ctx context.Context) error {
		redispatcher.Stop(ctx)
		return nil
	})

	todoUseCase := todoUC.New(todoUC.Config{
		Mappings:       mappingRepo,
		Tracker:        tracker,
		Renderer:       ticketRenderer,
		Artifacts:      artifactStore,
		Printer:        printQueue,
		DispatchBuffer: redispatcher,
		StrictDueDates: cfg.StrictDueDates(),
	}, zapLogger)
	webhookUseCase := webhookUC.New(mappingRepo, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Todo:    apiHandler.NewTodoHandler(todoUseCase, ctxAdapter, zapLogger),
		Webhook: apiHandler.NewWebhookHandler(webhookUseCase, cfg.Todoist.WebhookSecret, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	limiter := middleware.NewRateLimiter(
		redisClient,
		cfg.RateLimit.RequestsPerWindow,
		cfg.RateLimit.Window,
		func(ctx *fasthttp.RequestCtx) bool {
			return middleware.HasValidAPIKey(ctx, cfg.Admin.APIKey)
		},
		zapLogger,
	)

	r := router.New(handlers, router.Middleware{
		RequireKey: middleware.RequireAPIKey(cfg.Admin.APIKey, zapLogger),
		RateLimit:  limiter.Wrap,
	})

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
