// Package adapters provides implementations for external service integrations.
package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/shopspring/decimal"
	"google.golang.org/api/option"

	"github.com/smart-accounting/backend/internal/application/adapter"
	"github.com/smart-accounting/backend/internal/domain/entity"
)

// GeminiService implements the ExtractionService using Google Gemini.
type GeminiService struct {
	apiKey    string
	modelName string
}

// NewGeminiService creates a new Gemini service instance.
func NewGeminiService(apiKey, modelName string) *GeminiService {
	if modelName == "" {
		modelName = "gemini-2.5-flash-lite"
	}
	return &GeminiService{
		apiKey:    apiKey,
		modelName: modelName,
	}
}

// IsAvailable checks if the Gemini service is properly configured.
func (s *GeminiService) IsAvailable() bool {
	return s.apiKey != ""
}

// Extract turns one free-text description into candidate transaction drafts.
func (s *GeminiService) Extract(ctx context.Context, request *adapter.ExtractionRequest) ([]*entity.CandidateTransaction, error) {
	if !s.IsAvailable() {
		return nil, fmt.Errorf("gemini service is not configured")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(s.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(s.modelName)
	model.SetTemperature(0.2)
	model.ResponseMIMEType = "application/json"

	prompt := s.buildPrompt(request)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	candidates, err := s.parseResponse(resp, request)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return candidates, nil
}

// buildPrompt creates the extraction prompt for Gemini.
func (s *GeminiService) buildPrompt(request *adapter.ExtractionRequest) string {
	var sb strings.Builder

	sb.WriteString(`You are a bookkeeping assistant. Extract financial transactions from the user's message.

For each transaction found, produce:
- amount: positive decimal number as a string
- type: "EXPENSE" or "INCOME"
- date: ISO date (YYYY-MM-DD) if the message states or implies one, else null
- note: a short description of what the money was for
- category_name: a plain category label such as "Dining", "Transport", "Groceries", "Salary", or "" when unclear

Resolve relative wording ("yesterday", "last Friday") against the reference date below. Never invent a date the message does not imply.

`)

	sb.WriteString(fmt.Sprintf("REFERENCE DATE: %s\n\n", request.Now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("USER MESSAGE:\n%s\n", request.Text))

	sb.WriteString(`
Respond with a JSON array only, no additional text. Each element:
{
  "amount": "25.00",
  "type": "EXPENSE",
  "date": "2025-06-14" or null,
  "note": "lunch at cafe",
  "category_name": "Dining"
}

Return an empty array when the message contains no transactions.
`)

	return sb.String()
}

// geminiCandidate represents one raw extracted record from Gemini.
type geminiCandidate struct {
	Amount       string  `json:"amount"`
	Type         string  `json:"type"`
	Date         *string `json:"date"`
	Note         string  `json:"note"`
	CategoryName string  `json:"category_name"`
}

// parseResponse parses the Gemini response into candidate transactions.
func (s *GeminiService) parseResponse(
	resp *genai.GenerateContentResponse,
	request *adapter.ExtractionRequest,
) ([]*entity.CandidateTransaction, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from gemini")
	}

	var textContent string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			textContent = string(text)
			break
		}
	}

	if textContent == "" {
		return nil, fmt.Errorf("no text content in response")
	}

	// Clean the response (remove markdown code blocks if present)
	textContent = strings.TrimPrefix(textContent, "```json")
	textContent = strings.TrimPrefix(textContent, "```")
	textContent = strings.TrimSuffix(textContent, "```")
	textContent = strings.TrimSpace(textContent)

	var raw []geminiCandidate
	if err := json.Unmarshal([]byte(textContent), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w, content: %s", err, textContent)
	}

	candidates := make([]*entity.CandidateTransaction, 0, len(raw))
	for _, rc := range raw {
		amount, err := decimal.NewFromString(rc.Amount)
		if err != nil || amount.Sign() <= 0 {
			continue // skip records the model got wrong
		}

		date := ""
		if rc.Date != nil {
			date = *rc.Date
		}

		candidates = append(candidates, &entity.CandidateTransaction{
			Amount:       amount,
			Type:         entity.TransactionType(strings.ToUpper(rc.Type)),
			Date:         date,
			Note:         rc.Note,
			CategoryName: rc.CategoryName,
			AccountID:    request.AccountID,
		})
	}

	return candidates, nil
}
