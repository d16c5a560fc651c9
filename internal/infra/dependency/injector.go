// Package dependency provides dependency injection for the application.
package dependency

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smart-accounting/backend/config"
	"github.com/smart-accounting/backend/internal/application/usecase/datecheck"
	"github.com/smart-accounting/backend/internal/application/usecase/duplicate"
	"github.com/smart-accounting/backend/internal/application/usecase/points"
	"github.com/smart-accounting/backend/internal/application/usecase/smartaccounting"
	"github.com/smart-accounting/backend/internal/domain/valueobject"
	"github.com/smart-accounting/backend/internal/infra/db"
	"github.com/smart-accounting/backend/internal/infra/scheduler"
	"github.com/smart-accounting/backend/internal/infra/server/router"
	"github.com/smart-accounting/backend/internal/integration/adapters"
	"github.com/smart-accounting/backend/internal/integration/entrypoint/controller"
	"github.com/smart-accounting/backend/internal/integration/entrypoint/middleware"
	"github.com/smart-accounting/backend/internal/integration/persistence"
)

// Injector holds all application dependencies.
type Injector struct {
	Config    *config.Config
	Database  *db.Database
	Router    *router.Router
	Scheduler *scheduler.Scheduler
}

// NewInjector creates a new dependency injector with all dependencies wired.
func NewInjector(cfg *config.Config, database *db.Database, redisClient *redis.Client) *Injector {
	// Repositories
	accountRepo := persistence.NewPointsAccountRepository(database.DB())
	checkinRepo := persistence.NewCheckinRepository(database.DB())
	transactionRepo := persistence.NewTransactionRepository(database.DB())

	// Adapters
	clock := adapters.NewReferenceClock(cfg.DateValidation.Timezone)
	tokenService := adapters.NewTokenService(cfg.JWT.Secret)
	extractionService := adapters.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.ModelName)

	// Points use cases
	getAccount := points.NewGetAccountUseCase(accountRepo)
	canAfford := points.NewCanAffordUseCase(getAccount, cfg.Points.Enabled)
	deductPoints := points.NewDeductPointsUseCase(accountRepo, getAccount, cfg.Points.Enabled)
	addPoints := points.NewAddPointsUseCase(accountRepo, getAccount)
	grantDaily := points.NewGrantDailyGiftUseCase(accountRepo, getAccount, clock)
	checkin := points.NewCheckinUseCase(checkinRepo, getAccount, clock)
	checkinStatus := points.NewCheckinStatusUseCase(checkinRepo, clock)
	listLedger := points.NewListLedgerEntriesUseCase(accountRepo)
	giftSweep := points.NewGiftSweepUseCase(accountRepo, grantDaily)

	// Date validation use cases
	validateDate := datecheck.NewValidateDateUseCase(clock, cfg.DateValidation.Enabled)
	correctDates := datecheck.NewCorrectDatesUseCase(validateDate)

	// Duplicate detection use case
	detectDupes := duplicate.NewDetectDuplicatesUseCase(transactionRepo, valueobject.DetectionConfig{
		SimilarityThreshold: cfg.Duplicate.SimilarityThreshold,
		DescriptionWeight:   cfg.Duplicate.DescriptionWeight,
		CategoryWeight:      cfg.Duplicate.CategoryWeight,
		WindowDays:          cfg.Duplicate.WindowDays,
		MaxMatches:          cfg.Duplicate.MaxMatches,
	})

	// Smart accounting pipeline
	processSubmission := smartaccounting.NewProcessSubmissionUseCase(
		canAfford,
		deductPoints,
		addPoints,
		correctDates,
		detectDupes,
		extractionService,
		transactionRepo,
		clock,
	)

	// Controllers
	healthController := controller.NewHealthController(database.HealthCheck)
	pointsController := controller.NewPointsController(
		getAccount,
		grantDaily,
		checkin,
		checkinStatus,
		listLedger,
	)
	smartAccountingController := controller.NewSmartAccountingController(processSubmission)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService)
	rateLimiter := middleware.NewRateLimiter(redisClient, cfg.Points.RateLimitPerMinute, time.Minute)

	// Router
	appRouter := router.NewRouter(
		healthController,
		pointsController,
		smartAccountingController,
		rateLimiter,
		authMiddleware,
	)

	return &Injector{
		Config:    cfg,
		Database:  database,
		Router:    appRouter,
		Scheduler: scheduler.New(giftSweep),
	}
}
