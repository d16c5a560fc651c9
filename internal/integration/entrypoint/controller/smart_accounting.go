package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smart-accounting/backend/internal/application/usecase/smartaccounting"
	"github.com/smart-accounting/backend/internal/domain/entity"
	domainerror "github.com/smart-accounting/backend/internal/domain/error"
	"github.com/smart-accounting/backend/internal/domain/valueobject"
	"github.com/smart-accounting/backend/internal/integration/entrypoint/dto"
	"github.com/smart-accounting/backend/internal/integration/entrypoint/middleware"
)

// SmartAccountingController handles smart accounting submission endpoints.
type SmartAccountingController struct {
	processSubmission *smartaccounting.ProcessSubmissionUseCase
}

// NewSmartAccountingController creates a new smart accounting controller instance.
func NewSmartAccountingController(
	processSubmission *smartaccounting.ProcessSubmissionUseCase,
) *SmartAccountingController {
	return &SmartAccountingController{
		processSubmission: processSubmission,
	}
}

// Process handles POST /smart-accounting requests.
func (h *SmartAccountingController) Process(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Authentication required"})
		return
	}

	var request dto.SmartAccountingRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	input, err := h.toInput(userID, request)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	output, err := h.processSubmission.Execute(c.Request.Context(), *input)
	if err != nil {
		respondPipelineError(c, err)
		return
	}

	status := http.StatusCreated
	if output.RequiresDateCorrection || output.RequiresUserSelection || len(output.Persisted) == 0 {
		status = http.StatusOK
	}
	c.JSON(status, dto.SmartAccountingResponseFromOutput(output))
}

// toInput converts the request DTO to the pipeline input.
func (h *SmartAccountingController) toInput(
	userID uuid.UUID,
	request dto.SmartAccountingRequest,
) (*smartaccounting.ProcessSubmissionInput, error) {
	accountID, err := uuid.Parse(request.AccountID)
	if err != nil {
		return nil, errors.New("invalid account_id")
	}

	channel := valueobject.ChannelInteractive
	if request.Channel == "automated" {
		channel = valueobject.ChannelAutomated
	}

	candidates := make([]*entity.CandidateTransaction, 0, len(request.Records))
	for _, record := range request.Records {
		amount, err := decimal.NewFromString(record.Amount)
		if err != nil || amount.Sign() <= 0 {
			return nil, errors.New("record amount must be a positive decimal")
		}

		candidate := &entity.CandidateTransaction{
			Amount:       amount,
			Type:         entity.TransactionType(record.Type),
			Date:         record.Date,
			Note:         record.Note,
			CategoryName: record.CategoryName,
			AccountID:    accountID,
		}
		if record.CategoryID != nil {
			categoryID, err := uuid.Parse(*record.CategoryID)
			if err != nil {
				return nil, errors.New("invalid category_id")
			}
			candidate.CategoryID = &categoryID
		}
		if record.BudgetID != nil {
			budgetID, err := uuid.Parse(*record.BudgetID)
			if err != nil {
				return nil, errors.New("invalid budget_id")
			}
			candidate.BudgetID = &budgetID
		}
		candidates = append(candidates, candidate)
	}

	return &smartaccounting.ProcessSubmissionInput{
		UserID:     userID,
		AccountID:  accountID,
		Channel:    channel,
		Kind:       entity.ActionKind(request.Source),
		Text:       request.Text,
		Candidates: candidates,
	}, nil
}

// respondPipelineError maps pipeline errors to HTTP responses.
func respondPipelineError(c *gin.Context, err error) {
	var pipelineErr *domainerror.SmartAccountingError
	code := ""
	if errors.As(err, &pipelineErr) {
		code = string(pipelineErr.Code)
	}

	switch {
	case errors.Is(err, domainerror.ErrInsufficientPoints):
		respondPointsError(c, err)
	case errors.Is(err, domainerror.ErrEmptySubmission),
		errors.Is(err, domainerror.ErrInvalidTransactionType),
		errors.Is(err, domainerror.ErrInvalidSubmissionSource):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: err.Error(),
			Code:  code,
		})
	case errors.Is(err, domainerror.ErrExtractionFailed):
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{
			Error: "Extraction service unavailable",
			Code:  code,
		})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "Internal server error",
			Code:  code,
		})
	}
}
