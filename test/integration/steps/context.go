// Package steps provides step definitions for the BDD feature tests.
package steps

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/smart-accounting/backend/internal/application/usecase/datecheck"
	"github.com/smart-accounting/backend/internal/application/usecase/duplicate"
	"github.com/smart-accounting/backend/internal/application/usecase/points"
	"github.com/smart-accounting/backend/internal/application/usecase/smartaccounting"
	"github.com/smart-accounting/backend/internal/domain/valueobject"
	"github.com/smart-accounting/backend/internal/infra/server/router"
	"github.com/smart-accounting/backend/internal/integration/adapters"
	"github.com/smart-accounting/backend/internal/integration/entrypoint/controller"
	"github.com/smart-accounting/backend/internal/integration/entrypoint/middleware"
	"github.com/smart-accounting/backend/internal/integration/persistence"
	"github.com/smart-accounting/backend/internal/integration/persistence/model"
	"github.com/smart-accounting/backend/test/integration/mock"
)

const testJWTSecret = "test-jwt-secret-key-for-testing-purposes"

// defaultToday pins the reference clock so date-window scenarios are stable.
var defaultToday = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

var (
	serverInit     sync.Once
	portInit       sync.Once
	testServerPort int

	testDB         *mock.Db
	timeMock       = mock.NewTime()
	extractionMock = mock.NewExtraction()
)

type testContext struct {
	uri     string
	headers map[string]string
	client  *http.Client

	response *response

	db *mock.Db

	accessToken      string
	currentUserID    uuid.UUID
	currentAccountID uuid.UUID
}

type response struct {
	status int
	body   any
}

func initializePort() {
	portInit.Do(func() {
		testServerPort = findAvailablePort()
	})
}

func findAvailablePort() int {
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		panic(err)
	}
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port
}

// InitializeScenario registers the step definitions and per-scenario hooks.
func InitializeScenario(ctx *godog.ScenarioContext) {
	initializePort()

	test := &testContext{
		uri:    fmt.Sprintf("http://localhost:%d", testServerPort),
		client: &http.Client{Timeout: 10 * time.Second},
		db: mock.NewDb(map[string]any{
			"points_accounts": &model.PointsAccountModel{},
			"points_ledger":   &model.LedgerEntryModel{},
			"checkins":        &model.CheckinModel{},
			"transactions":    &model.TransactionModel{},
		}),
	}

	testDB = test.db

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		test.before()
		return ctx, nil
	})

	// Background steps
	ctx.Given(`^the API server is running$`, test.theAPIServerIsRunning)

	// Setup steps
	ctx.Given(`^I am logged in as "([^"]*)"$`, test.iAmLoggedInAs)
	ctx.Given(`^the header is empty$`, test.theHeaderIsEmpty)
	ctx.Given(`^today is "([^"]*)"$`, test.todayIs)
	ctx.Given(`^my points account has (\d+) gift points and (\d+) member points$`, test.myPointsAccountHas)
	ctx.Given(`^a committed "([^"]*)" of "([^"]*)" described as "([^"]*)" exists$`, test.aCommittedTransactionExists)
	ctx.Given(`^the extractor returns:$`, test.theExtractorReturns)
	ctx.Given(`^the extractor fails$`, test.theExtractorFails)

	// Request steps
	ctx.When(`^I send a "([^"]*)" request to "([^"]*)"$`, test.iSendARequestTo)
	ctx.When(`^I send a "([^"]*)" request to "([^"]*)" with body:$`, test.iSendARequestToWithBody)

	// Response assertion steps
	ctx.Then(`^the response status should be (\d+)$`, test.theResponseStatusShouldBe)
	ctx.Then(`^the response field "([^"]*)" should be "([^"]*)"$`, test.theResponseFieldShouldBe)
	ctx.Then(`^the response field "([^"]*)" should exist$`, test.theResponseFieldShouldExist)

	// Database assertion steps
	ctx.Then(`^the db should contain (\d+) objects in the "([^"]*)" table$`, test.theDbShouldContainObjectsInTheTable)
	ctx.Then(`^the db should contain (\d+) objects in "([^"]*)" with the values$`, test.theDbShouldContainObjectsInWithTheValues)
}

func (t *testContext) before() {
	t.headers = make(map[string]string)
	t.accessToken = ""
	t.response = nil
	t.currentUserID = uuid.Nil
	t.currentAccountID = uuid.New()

	timeMock.Set(defaultToday)
	extractionMock.Reset()

	if t.db != nil {
		if err := t.db.Reset(); err != nil {
			panic(fmt.Sprintf("failed to reset test database: %v", err))
		}
	}
	_ = mock.ClearRedis(mock.NewRedis())
}

func (t *testContext) startServer() {
	serverInit.Do(func() {
		go func() {
			gin.SetMode(gin.TestMode)

			accountRepo := persistence.NewPointsAccountRepository(testDB.DbConn)
			checkinRepo := persistence.NewCheckinRepository(testDB.DbConn)
			transactionRepo := persistence.NewTransactionRepository(testDB.DbConn)

			tokenService := adapters.NewTokenService(testJWTSecret)

			getAccount := points.NewGetAccountUseCase(accountRepo)
			canAfford := points.NewCanAffordUseCase(getAccount, true)
			deductPoints := points.NewDeductPointsUseCase(accountRepo, getAccount, true)
			addPoints := points.NewAddPointsUseCase(accountRepo, getAccount)
			grantDaily := points.NewGrantDailyGiftUseCase(accountRepo, getAccount, timeMock)
			checkin := points.NewCheckinUseCase(checkinRepo, getAccount, timeMock)
			checkinStatus := points.NewCheckinStatusUseCase(checkinRepo, timeMock)
			listLedger := points.NewListLedgerEntriesUseCase(accountRepo)

			validateDate := datecheck.NewValidateDateUseCase(timeMock, true)
			correctDates := datecheck.NewCorrectDatesUseCase(validateDate)

			detectDupes := duplicate.NewDetectDuplicatesUseCase(transactionRepo, valueobject.DefaultDetectionConfig())

			processSubmission := smartaccounting.NewProcessSubmissionUseCase(
				canAfford,
				deductPoints,
				addPoints,
				correctDates,
				detectDupes,
				extractionMock,
				transactionRepo,
				timeMock,
			)

			healthController := controller.NewHealthController(func() bool {
				return testDB != nil && testDB.DbConn != nil
			})
			pointsController := controller.NewPointsController(
				getAccount,
				grantDaily,
				checkin,
				checkinStatus,
				listLedger,
			)
			smartAccountingController := controller.NewSmartAccountingController(processSubmission)

			authMiddleware := middleware.NewAuthMiddleware(tokenService)
			rateLimiter := middleware.NewRateLimiter(mock.NewRedis(), 100, time.Minute)

			r := router.NewRouter(
				healthController,
				pointsController,
				smartAccountingController,
				rateLimiter,
				authMiddleware,
			)
			engine := r.Setup("test")

			server := &http.Server{
				Addr:    fmt.Sprintf(":%d", testServerPort),
				Handler: engine,
			}
			_ = server.ListenAndServe()
		}()
	})

	// Wait for the server to accept requests.
	for i := 0; i < 50; i++ {
		resp, err := http.Get(t.uri + "/health")
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func (t *testContext) theAPIServerIsRunning() error {
	t.startServer()
	return nil
}
