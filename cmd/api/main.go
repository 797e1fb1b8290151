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

	httptransport "github.com/yanryp/servicedesk-sub004/internal/api/http"
	"github.com/yanryp/servicedesk-sub004/internal/api/http/handlers"
	"github.com/yanryp/servicedesk-sub004/internal/auth"
	"github.com/yanryp/servicedesk-sub004/internal/cache"
	"github.com/yanryp/servicedesk-sub004/internal/classify"
	"github.com/yanryp/servicedesk-sub004/internal/config"
	"github.com/yanryp/servicedesk-sub004/internal/domain"
	"github.com/yanryp/servicedesk-sub004/internal/events"
	"github.com/yanryp/servicedesk-sub004/internal/fields"
	"github.com/yanryp/servicedesk-sub004/internal/notify"
	"github.com/yanryp/servicedesk-sub004/internal/observability"
	"github.com/yanryp/servicedesk-sub004/internal/persistence"
	"github.com/yanryp/servicedesk-sub004/internal/repository"
	"github.com/yanryp/servicedesk-sub004/internal/service"
	"github.com/yanryp/servicedesk-sub004/internal/worker"
	"github.com/yanryp/servicedesk-sub004/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	pool := pg.Pool
	userRepo := repository.NewUserRepository(pool)
	templateRepo := repository.NewTemplateRepository(pool)
	masterDataRepo := repository.NewMasterDataRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)

	var (
		fieldSource  fields.Source            = templateRepo
		optionSource service.OptionLookup     = masterDataRepo
		invalidator  service.CacheInvalidator
	)
	if cfg.Cache.Enabled {
		cached := cache.NewCachedSource(templateRepo, masterDataRepo,
			cache.NewRedisStore(redis.Client, cfg.App.Name+":"), cfg.Cache.TTL(), logger)
		fieldSource, optionSource, invalidator = cached, cached, cached
	}
	registry := fields.NewRegistry(fieldSource, logger)
	rules, err := classify.LoadRules(cfg.Ticket.ClassifierRulesFile)
	if err != nil {
		logger.Fatal("failed to load classifier rules", zap.Error(err))
	}
	classifier := classify.NewKeywordClassifier(rules)

	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartNotificationWorker(ctx, service.NewNotificationService(dispatcher, logger, cfg.Notification, notificationChannels(cfg.Notification)))

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		HistoryRepo: historyRepo,
		Templates:   templateRepo,
		Registry:    registry,
		Classifier:  classifier,
		Policy:      approvalPolicy(cfg.Approval),
		SLA:         slaPolicy(cfg.SLA),
		Rules: service.TicketRules{
			TitleMinLength:       cfg.Ticket.TitleMinLength,
			DescriptionMinLength: cfg.Ticket.DescriptionMinLength,
		},
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	formService := service.NewFormService(service.FormDependencies{
		Templates:  templateRepo,
		Registry:   registry,
		Options:    optionSource,
		Cache:      invalidator,
		Classifier: classifier,
		Keywords:   cfg.Ticket.AutofillKeywords,
		Metrics:    metrics,
		Logger:     logger,
	})
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(userRepo, tokens, logger)

	monitor := worker.NewOverdueMonitor(ticketRepo, metrics, logger, cfg.SLA.SweepInterval())
	go monitor.Run(ctx)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Users:          handlers.NewUsersHandler(authService),
		Catalog:        handlers.NewCatalogHandler(formService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		StaffTickets:   handlers.NewStaffTicketsHandler(ticketService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, userRepo),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func notificationChannels(cfg config.NotificationConfig) service.NotificationChannels {
	var channels service.NotificationChannels
	if mailer := notify.NewMailer(cfg); mailer != nil {
		channels.Mail = mailer
	}
	if hook := notify.NewWebhook(cfg.WebhookURL, cfg.Timeout()); hook != nil {
		channels.Webhook = hook
	}
	return channels
}

func approvalPolicy(cfg config.ApprovalConfig) workflow.Policy {
	roles := make([]domain.UserRole, 0, len(cfg.RequiredRoles))
	for _, role := range cfg.RequiredRoles {
		roles = append(roles, domain.UserRole(role))
	}
	return workflow.Policy{
		RolesRequiringApproval:      roles,
		CategoriesRequiringApproval: cfg.RequiredCategories,
	}
}

func slaPolicy(cfg config.SLAConfig) workflow.SLAPolicy {
	return workflow.SLAPolicy{
		domain.TicketPriorityLow:    time.Duration(cfg.LowHours) * time.Hour,
		domain.TicketPriorityMedium: time.Duration(cfg.MediumHours) * time.Hour,
		domain.TicketPriorityHigh:   time.Duration(cfg.HighHours) * time.Hour,
		domain.TicketPriorityUrgent: time.Duration(cfg.UrgentHours) * time.Hour,
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
