// file: internal/services/service_collection.go
package services

import (
	"context"
	"fmt"
	"time"

	"badgehub/internal/cache"
	"badgehub/internal/config"
	"badgehub/internal/database"
	"badgehub/internal/events"
	"badgehub/internal/repositories"

	"github.com/cloudinary/cloudinary-go/v2"
	"go.uber.org/zap"
)

// ServiceCollection wires the service layer together with dependency
// injection. The award service sits beneath the assessment and project
// services so both cascade entry points share one issuance path.
type ServiceCollection struct {
	// Core services
	BadgeService      BadgeService      `json:"-"`
	AssessmentService AssessmentService `json:"-"`
	AwardService      AwardService      `json:"-"`
	ProjectService    ProjectService    `json:"-"`
	UserService       UserService       `json:"-"`

	// Infrastructure services
	EmailService EmailService `json:"-"`
	FileService  FileService  `json:"-"`

	// Repository collection
	Repositories *repositories.Collection `json:"-"`

	// Infrastructure components
	Cache      cache.Cache            `json:"-"`
	EventBus   events.EventBus        `json:"-"`
	Logger     *zap.Logger            `json:"-"`
	Config     *config.Config         `json:"-"`
	DBManager  *database.Manager      `json:"-"`
	Cloudinary *cloudinary.Cloudinary `json:"-"`

	initialized bool
}

// NewServiceCollection builds the full service graph in dependency order.
func NewServiceCollection(
	dbManager *database.Manager,
	cfg *config.Config,
	logger *zap.Logger,
) (*ServiceCollection, error) {
	if dbManager == nil {
		return nil, fmt.Errorf("database manager is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	sc := &ServiceCollection{
		DBManager: dbManager,
		Config:    cfg,
		Logger:    logger,
	}

	if err := sc.initializeInfrastructure(); err != nil {
		return nil, fmt.Errorf("failed to initialize infrastructure: %w", err)
	}
	if err := sc.initializeRepositories(); err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}
	if err := sc.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	if err := sc.registerEventHandlers(); err != nil {
		return nil, fmt.Errorf("failed to register event handlers: %w", err)
	}

	sc.initialized = true
	logger.Info("Service collection initialized")
	return sc, nil
}

// ===============================
// INITIALIZATION
// ===============================

func (sc *ServiceCollection) initializeInfrastructure() error {
	cacheConfig := &cache.Config{
		Provider:        sc.Config.Cache.Provider,
		TTL:             sc.Config.Cache.TTL,
		MaxKeys:         sc.Config.Cache.MaxKeys,
		CleanupInterval: sc.Config.Cache.CleanupInterval,
		RedisURL:        sc.Config.Cache.RedisURL,
		RedisDB:         sc.Config.Cache.RedisDB,
		RedisPassword:   sc.Config.Cache.RedisPassword,
		PoolSize:        sc.Config.Cache.PoolSize,
	}
	c, err := cache.NewCache(cacheConfig, sc.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	sc.Cache = c

	sc.EventBus = events.NewInMemoryEventBus(events.DefaultEventBusConfig(), sc.Logger)

	if sc.Config.Features.EnableBadgeImageUploads && sc.Config.Cloudinary.CloudName != "" {
		cld, err := cloudinary.NewFromParams(
			sc.Config.Cloudinary.CloudName,
			sc.Config.Cloudinary.APIKey,
			sc.Config.Cloudinary.APISecret,
		)
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudinary: %w", err)
		}
		sc.Cloudinary = cld
	}

	return nil
}

func (sc *ServiceCollection) initializeRepositories() error {
	repos, err := repositories.NewCollection(sc.DBManager, sc.Logger)
	if err != nil {
		return err
	}
	sc.Repositories = repos
	return nil
}

func (sc *ServiceCollection) initializeServices() error {
	sc.EmailService = NewEmailService(sc.Repositories.User, sc.Logger)

	if sc.Cloudinary != nil {
		sc.FileService = NewFileService(sc.Cloudinary, &sc.Config.Cloudinary, sc.Logger)
	}

	sc.UserService = NewUserService(sc.Repositories.User, sc.Logger)

	// Award service first: both cascade entry points depend on it.
	sc.AwardService = NewAwardService(
		sc.Repositories.Badge,
		sc.Repositories.Award,
		sc.Repositories.Progress,
		sc.Repositories.Assessment,
		sc.Repositories.Project,
		sc.EventBus,
		sc.Logger,
	)

	sc.AssessmentService = NewAssessmentService(
		sc.Repositories.Assessment,
		sc.Repositories.Badge,
		sc.Repositories.Submission,
		sc.AwardService,
		sc.EventBus,
		sc.Logger,
	)

	sc.ProjectService = NewProjectService(
		sc.Repositories.Project,
		sc.Repositories.User,
		sc.AwardService,
		sc.EventBus,
		sc.Logger,
	)

	sc.BadgeService = NewBadgeService(
		sc.Repositories.Badge,
		sc.Repositories.Submission,
		sc.Repositories.Award,
		sc.Repositories.Project,
		sc.Cache,
		&sc.Config.Features,
		sc.Logger,
	)

	return nil
}

// registerEventHandlers subscribes the fixed set of secondary-effect
// handlers. The evaluation cascade itself runs through direct service
// calls; the bus only carries notifications.
func (sc *ServiceCollection) registerEventHandlers() error {
	if sc.Config.Features.NotifyOnProjectCreation {
		handler := events.NewEventHandlerFunc("project-created-email", func(ctx context.Context, event events.Event) error {
			created, ok := event.(*events.ProjectCreatedEvent)
			if !ok || created.GetUserID() == nil {
				return nil
			}
			return sc.EmailService.SendProjectCreatedEmail(ctx, created.Name, created.Slug, *created.GetUserID())
		})
		if err := sc.EventBus.Subscribe(events.EventProjectCreated, handler); err != nil {
			return err
		}
	}

	awardLogger := events.NewEventHandlerFunc("award-issued-log", func(ctx context.Context, event events.Event) error {
		issued, ok := event.(*events.AwardIssuedEvent)
		if !ok {
			return nil
		}
		fields := []zap.Field{
			zap.Int64("award_id", issued.AwardID),
			zap.Int64("badge_id", issued.BadgeID),
		}
		if userID := issued.GetUserID(); userID != nil {
			fields = append(fields, zap.Int64("user_id", *userID))
		}
		sc.Logger.Info("Award issued", fields...)
		return nil
	})
	return sc.EventBus.Subscribe(events.EventAwardIssued, awardLogger)
}

// ===============================
// LIFECYCLE
// ===============================

// Start starts background processing (event bus workers).
func (sc *ServiceCollection) Start(ctx context.Context) error {
	if !sc.initialized {
		return fmt.Errorf("service collection not initialized")
	}
	if err := sc.EventBus.Start(ctx); err != nil {
		return fmt.Errorf("failed to start event bus: %w", err)
	}
	sc.Logger.Info("Service collection started")
	return nil
}

// Shutdown stops the services in reverse dependency order.
func (sc *ServiceCollection) Shutdown(ctx context.Context) error {
	sc.Logger.Info("Shutting down service collection")

	var errs []error
	if err := sc.EventBus.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("event bus stop: %w", err))
	}
	if err := sc.Cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("cache close: %w", err))
	}
	if err := sc.DBManager.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database close: %w", err))
	}

	if len(errs) > 0 {
		for _, err := range errs {
			sc.Logger.Error("Shutdown error", zap.Error(err))
		}
		return fmt.Errorf("shutdown completed with %d errors", len(errs))
	}
	sc.Logger.Info("Service collection shutdown completed")
	return nil
}

// ===============================
// HEALTH
// ===============================

// ServiceHealth reports the state of the collection's dependencies.
type ServiceHealth struct {
	Status       string            `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	Dependencies map[string]string `json:"dependencies"`
	Issues       []string          `json:"issues,omitempty"`
}

// HealthCheck probes the database, cache and event bus.
func (sc *ServiceCollection) HealthCheck(ctx context.Context) (*ServiceHealth, error) {
	health := &ServiceHealth{
		Status:       "healthy",
		Timestamp:    time.Now(),
		Dependencies: make(map[string]string),
	}

	if err := sc.Repositories.Health(ctx); err != nil {
		health.Dependencies["database"] = "unhealthy"
		health.Status = "degraded"
		health.Issues = append(health.Issues, fmt.Sprintf("database: %v", err))
	} else {
		health.Dependencies["database"] = "healthy"
	}

	if err := sc.Cache.Health(ctx); err != nil {
		health.Dependencies["cache"] = "unhealthy"
		health.Status = "degraded"
		health.Issues = append(health.Issues, fmt.Sprintf("cache: %v", err))
	} else {
		health.Dependencies["cache"] = "healthy"
	}

	if err := sc.EventBus.Health(); err != nil {
		health.Dependencies["events"] = "unhealthy"
		health.Status = "degraded"
		health.Issues = append(health.Issues, fmt.Sprintf("events: %v", err))
	} else {
		health.Dependencies["events"] = "healthy"
	}

	return health, nil
}

// IsInitialized reports whether the collection is fully wired.
func (sc *ServiceCollection) IsInitialized() bool {
	return sc.initialized
}
