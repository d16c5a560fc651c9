// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smart-accounting/backend/internal/application/usecase/points"
	domainerror "github.com/smart-accounting/backend/internal/domain/error"
	"github.com/smart-accounting/backend/internal/integration/entrypoint/dto"
	"github.com/smart-accounting/backend/internal/integration/entrypoint/middleware"
)

// PointsController handles points ledger endpoints.
type PointsController struct {
	getAccount    *points.GetAccountUseCase
	grantDaily    *points.GrantDailyGiftUseCase
	checkin       *points.CheckinUseCase
	checkinStatus *points.CheckinStatusUseCase
	listLedger    *points.ListLedgerEntriesUseCase
}

// NewPointsController creates a new points controller instance.
func NewPointsController(
	getAccount *points.GetAccountUseCase,
	grantDaily *points.GrantDailyGiftUseCase,
	checkin *points.CheckinUseCase,
	checkinStatus *points.CheckinStatusUseCase,
	listLedger *points.ListLedgerEntriesUseCase,
) *PointsController {
	return &PointsController{
		getAccount:    getAccount,
		grantDaily:    grantDaily,
		checkin:       checkin,
		checkinStatus: checkinStatus,
		listLedger:    listLedger,
	}
}

// GetBalance handles GET /points requests.
// Fetching the balance counts as a visit: the once-per-day gift is granted
// first, so the returned balances already include it.
func (h *PointsController) GetBalance(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Authentication required"})
		return
	}

	if _, err := h.grantDaily.Execute(c.Request.Context(), userID); err != nil {
		respondPointsError(c, err)
		return
	}

	account, err := h.getAccount.Execute(c.Request.Context(), userID)
	if err != nil {
		respondPointsError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PointsAccountResponseFromEntity(account))
}

// Checkin handles POST /points/checkin requests.
func (h *PointsController) Checkin(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Authentication required"})
		return
	}

	output, err := h.checkin.Execute(c.Request.Context(), userID)
	if err != nil {
		respondPointsError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CheckinResponse{
		PointsAwarded:  output.Checkin.PointsAwarded,
		NewGiftBalance: output.NewBalance,
		CheckinDate:    output.Checkin.CheckinDate.Format("2006-01-02"),
	})
}

// CheckinStatus handles GET /points/checkin requests.
func (h *PointsController) CheckinStatus(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Authentication required"})
		return
	}

	output, err := h.checkinStatus.Execute(c.Request.Context(), userID)
	if err != nil {
		respondPointsError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CheckinStatusResponse{
		HasCheckedInToday: output.CheckedInToday,
		Streak:            output.ConsecutiveDays,
	})
}

// ListLedger handles GET /points/ledger requests.
func (h *PointsController) ListLedger(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Authentication required"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.listLedger.Execute(c.Request.Context(), points.ListLedgerEntriesInput{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondPointsError(c, err)
		return
	}

	responses := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.LedgerEntryResponseFromEntity(entry))
	}

	c.JSON(http.StatusOK, dto.LedgerListResponse{
		Entries: responses,
		Limit:   limit,
		Offset:  offset,
	})
}

// respondPointsError maps ledger errors to HTTP responses.
func respondPointsError(c *gin.Context, err error) {
	var pointsErr *domainerror.PointsError
	code := ""
	if errors.As(err, &pointsErr) {
		code = string(pointsErr.Code)
	}

	switch {
	case errors.Is(err, domainerror.ErrInsufficientPoints):
		c.JSON(http.StatusPaymentRequired, dto.ErrorResponse{
			Error: "Insufficient points balance",
			Code:  code,
		})
	case errors.Is(err, domainerror.ErrAlreadyCheckedIn):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error: "Already checked in today",
			Code:  code,
		})
	case errors.Is(err, domainerror.ErrInvalidPointsAmount),
		errors.Is(err, domainerror.ErrInvalidBalancePool):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: err.Error(),
			Code:  code,
		})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "Internal server error",
			Code:  code,
		})
	}
}
