package steps

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smart-accounting/backend/internal/domain/entity"
	"github.com/smart-accounting/backend/internal/integration/persistence/model"
)

// Setup steps

func (t *testContext) iAmLoggedInAs(email string) error {
	t.currentUserID = uuid.New()

	now := timeMock.Now()
	claims := jwt.MapClaims{
		"user_id": t.currentUserID.String(),
		"email":   email,
		"exp":     jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
		"iat":     jwt.NewNumericDate(now),
		"sub":     t.currentUserID.String(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		return fmt.Errorf("failed to sign access token: %w", err)
	}
	t.accessToken = signed
	return nil
}

func (t *testContext) theHeaderIsEmpty() error {
	t.headers = make(map[string]string)
	t.accessToken = ""
	return nil
}

func (t *testContext) todayIs(date string) error {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", date, err)
	}
	timeMock.Set(day.Add(12 * time.Hour))
	return nil
}

func (t *testContext) myPointsAccountHas(gift, member int) error {
	if t.currentUserID == uuid.Nil {
		return errors.New("no logged in user to attach the account to")
	}

	// Marking today as visited keeps balance reads from granting the
	// daily gift on top of the seeded values.
	today := t.today()
	now := timeMock.Now()
	account := &model.PointsAccountModel{
		UserID:            t.currentUserID,
		GiftBalance:       gift,
		MemberBalance:     member,
		LastDailyGiftDate: &today,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	return t.db.DbConn.Create(account).Error
}

func (t *testContext) aCommittedTransactionExists(transactionType, amount, description string) error {
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	now := timeMock.Now()
	row := &model.TransactionModel{
		ID:          uuid.New(),
		UserID:      t.currentUserID,
		AccountID:   t.currentAccountID,
		Date:        t.today(),
		Description: description,
		Amount:      value,
		Type:        transactionType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return t.db.DbConn.Create(row).Error
}

type extractorCandidate struct {
	Amount       string `json:"amount"`
	Type         string `json:"type"`
	Date         string `json:"date"`
	Note         string `json:"note"`
	CategoryName string `json:"category_name"`
}

func (t *testContext) theExtractorReturns(body *godog.DocString) error {
	var rows []extractorCandidate
	content := t.replacePlaceholders(body.Content)
	if err := json.Unmarshal([]byte(content), &rows); err != nil {
		return fmt.Errorf("invalid extractor payload: %w", err)
	}

	candidates := make([]*entity.CandidateTransaction, 0, len(rows))
	for _, row := range rows {
		amount, err := decimal.NewFromString(row.Amount)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", row.Amount, err)
		}
		candidates = append(candidates, &entity.CandidateTransaction{
			Amount:       amount,
			Type:         entity.TransactionType(row.Type),
			Date:         row.Date,
			Note:         row.Note,
			CategoryName: row.CategoryName,
		})
	}

	extractionMock.SetCandidates(candidates)
	return nil
}

func (t *testContext) theExtractorFails() error {
	extractionMock.SetError(errors.New("model unavailable"))
	return nil
}

// Request steps

func (t *testContext) iSendARequestTo(method, path string) error {
	return t.executeRequest(method, t.replacePlaceholders(path), nil)
}

func (t *testContext) iSendARequestToWithBody(method, path string, body *godog.DocString) error {
	var payload []byte
	if body != nil && body.Content != "" {
		payload = []byte(t.replacePlaceholders(body.Content))
	}
	return t.executeRequest(method, t.replacePlaceholders(path), payload)
}

// replacePlaceholders substitutes scenario-scoped values into feature text.
func (t *testContext) replacePlaceholders(content string) string {
	today := t.today()
	content = strings.ReplaceAll(content, "{{account_id}}", t.currentAccountID.String())
	content = strings.ReplaceAll(content, "{{user_id}}", t.currentUserID.String())
	content = strings.ReplaceAll(content, "{{today}}", today.Format("2006-01-02"))
	content = strings.ReplaceAll(content, "{{tomorrow}}", today.AddDate(0, 0, 1).Format("2006-01-02"))
	content = strings.ReplaceAll(content, "{{three_days_ago}}", today.AddDate(0, 0, -3).Format("2006-01-02"))
	content = strings.ReplaceAll(content, "{{stale_date}}", today.AddDate(0, 0, -40).Format("2006-01-02"))
	return content
}

func (t *testContext) today() time.Time {
	now := timeMock.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (t *testContext) executeRequest(method, path string, payload []byte) error {
	url := t.uri + path

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if t.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.accessToken)
	}
	for key, value := range t.headers {
		req.Header.Set(key, value)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	t.response = &response{status: resp.StatusCode}

	var responseBody map[string]any
	if err := json.Unmarshal(bodyBytes, &responseBody); err != nil {
		t.response.body = string(bodyBytes)
	} else {
		t.response.body = responseBody
	}

	return nil
}

// Response assertion steps

func (t *testContext) theResponseStatusShouldBe(expectedStatus int) error {
	if t.response == nil {
		return errors.New("no response received")
	}
	if t.response.status != expectedStatus {
		return fmt.Errorf("expected status %d, got %d (body: %v)", expectedStatus, t.response.status, t.response.body)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldBe(field, expectedValue string) error {
	if t.response == nil {
		return errors.New("no response received")
	}

	value := getFieldValue(t.response.body, field)
	if value == nil {
		return fmt.Errorf("field '%s' not found in response: %v", field, t.response.body)
	}

	expectedValue = t.replacePlaceholders(expectedValue)
	actualValue := fmt.Sprintf("%v", value)
	if actualValue != expectedValue {
		return fmt.Errorf("field '%s' expected '%s', got '%s'", field, expectedValue, actualValue)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldExist(field string) error {
	if t.response == nil {
		return errors.New("no response received")
	}
	if getFieldValue(t.response.body, field) == nil {
		return fmt.Errorf("field '%s' not found in response: %v", field, t.response.body)
	}
	return nil
}

// Database assertion steps

func (t *testContext) theDbShouldContainObjectsInTheTable(quantity int, table string) error {
	return t.countRows(quantity, table, nil)
}

func (t *testContext) theDbShouldContainObjectsInWithTheValues(quantity int, table string, content *godog.DocString) error {
	var criteria map[string]any
	raw := t.replacePlaceholders(content.Content)
	if err := json.Unmarshal([]byte(raw), &criteria); err != nil {
		return err
	}
	return t.countRows(quantity, table, criteria)
}

func (t *testContext) countRows(quantity int, table string, criteria map[string]any) error {
	entityModel, ok := t.db.GetModel(table)
	if !ok {
		return fmt.Errorf("table '%s' not found in models", table)
	}

	entityType := reflect.TypeOf(entityModel).Elem()
	slicePtr := reflect.New(reflect.SliceOf(entityType))

	query := t.db.DbConn
	for key, value := range criteria {
		query = query.Where(fmt.Sprintf("%s = ?", key), value)
	}

	result := query.Find(slicePtr.Interface())
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	count := slicePtr.Elem().Len()
	if count != quantity {
		return fmt.Errorf("expected %d objects in '%s' with criteria %v, got %d", quantity, table, criteria, count)
	}
	return nil
}

// getFieldValue resolves a dot-separated path through nested JSON objects
// and arrays, with numeric segments used as array indexes.
func getFieldValue(object any, dotSeparatedField string) any {
	if object == nil {
		return nil
	}

	var field any = object
	for _, currentField := range strings.Split(dotSeparatedField, ".") {
		if field == nil {
			return nil
		}

		if i, err := strconv.Atoi(currentField); err == nil {
			arr, ok := field.([]any)
			if !ok || i >= len(arr) {
				return nil
			}
			field = arr[i]
			continue
		}

		m, ok := field.(map[string]any)
		if !ok {
			return nil
		}
		field = m[currentField]
	}

	return field
}
