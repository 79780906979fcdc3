package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rabiot125/Banking-Microservice/internal/app"
	"github.com/rabiot125/Banking-Microservice/internal/config"
	"github.com/rabiot125/Banking-Microservice/internal/logger"
	"github.com/rabiot125/Banking-Microservice/internal/store/memstore"
	"github.com/rabiot125/Banking-Microservice/pkg/cardclient"
)

func testConfig() *config.Config {
	return &config.Config{CORSAllowedOrigins: "*"}
}

func newCustomerAPI() http.Handler {
	repo := memstore.NewCustomerRepository()
	return NewCustomerRouter(testConfig(), logger.Nop(), app.NewCustomerService(repo, logger.Nop()), repo)
}

func newCardAPI() http.Handler {
	repo := memstore.NewCardRepository()
	return NewCardRouter(testConfig(), logger.Nop(), app.NewCardService(repo, logger.Nop()), repo)
}

func newAccountAPI(cardServiceURL string) http.Handler {
	repo := memstore.NewAccountRepository()
	client := cardclient.NewClient(cardServiceURL, time.Second)
	service := app.NewAccountService(repo, client, app.EnrichmentOptions{Timeout: time.Second, Concurrency: 4}, logger.Nop())
	return NewAccountRouter(testConfig(), logger.Nop(), service, repo)
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if _, isText := body.(string); !isText && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestCustomerLifecycle(t *testing.T) {
	h := newCustomerAPI()

	rec := do(t, h, http.MethodPost, "/api/customers", map[string]string{"firstName": "  "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errBody := decode[errorResponse](t, rec)
	assert.Equal(t, "First Name is mandatory", errBody.Fields["firstName"])
	assert.Equal(t, "Last Name is mandatory", errBody.Fields["lastName"])

	rec = do(t, h, http.MethodPost, "/api/customers", map[string]string{"firstName": "John", "lastName": "Doe"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[CustomerResponse](t, rec)
	assert.Equal(t, "John", created.FirstName)
	assert.Nil(t, created.OtherName)
	assert.False(t, created.CreatedAt.IsZero())

	rec = do(t, h, http.MethodGet, "/api/customers?name=ohn%20D", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[CustomerListResponse](t, rec)
	require.Len(t, list.Customers, 1)
	assert.Equal(t, int64(1), list.TotalItems)
	assert.Equal(t, 1, list.TotalPages)
	assert.Equal(t, 10, list.Size)

	rec = do(t, h, http.MethodPut, "/api/customers/1", map[string]string{"lastName": "Smith"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[CustomerResponse](t, rec)
	assert.Equal(t, "John", updated.FirstName)
	assert.Equal(t, "Smith", updated.LastName)

	rec = do(t, h, http.MethodPut, "/api/customers/1", map[string]string{"firstName": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	require.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/api/customers/1", nil).Code)
	rec = do(t, h, http.MethodDelete, "/api/customers/1", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Customer not found with id: 1", decode[errorResponse](t, rec).Error)
}

func TestCustomerDateFilters(t *testing.T) {
	h := newCustomerAPI()
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/customers", map[string]string{"firstName": "Ann", "lastName": "Lee"}).Code)

	rec := do(t, h, http.MethodGet, "/api/customers?startDate=2000-01-01&endDate=2999-01-01T00:00:00", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[CustomerListResponse](t, rec).Customers, 1)

	rec = do(t, h, http.MethodGet, "/api/customers?startDate=2999-01-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[CustomerListResponse](t, rec).Customers)

	rec = do(t, h, http.MethodGet, "/api/customers?startDate=yesterday", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Fields, "startDate")
}

func TestCustomerEndDateIncludesWholeDay(t *testing.T) {
	createdAt := time.Date(2024, 3, 5, 15, 30, 0, 0, time.UTC)
	repo := memstore.NewCustomerRepository().WithClock(func() time.Time { return createdAt })
	h := NewCustomerRouter(testConfig(), logger.Nop(), app.NewCustomerService(repo, logger.Nop()), repo)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/customers", map[string]string{"firstName": "Ann", "lastName": "Lee"}).Code)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "same day as both bounds", query: "startDate=2024-03-05&endDate=2024-03-05", want: 1},
		{name: "date-only end after creation", query: "endDate=2024-03-06", want: 1},
		{name: "date-only end the day before", query: "endDate=2024-03-04", want: 0},
		{name: "date-time end before creation", query: "endDate=2024-03-05T15:00:00", want: 0},
		{name: "date-only start the next day", query: "startDate=2024-03-06", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, "/api/customers?"+tt.query, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Len(t, decode[CustomerListResponse](t, rec).Customers, tt.want)
		})
	}
}

func TestPagingParametersAreValidated(t *testing.T) {
	h := newCardAPI()

	tests := []struct {
		name  string
		query string
		field string
	}{
		{name: "negative page", query: "page=-1", field: "page"},
		{name: "zero size", query: "size=0", field: "size"},
		{name: "oversized", query: "size=101", field: "size"},
		{name: "not a number", query: "page=two", field: "page"},
		{name: "offset overflows", query: "page=922337203685477581&size=10", field: "page"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, "/api/cards?"+tt.query, nil)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode[errorResponse](t, rec).Fields, tt.field)
		})
	}

	rec := do(t, h, http.MethodGet, "/api/cards?page=92233720368547757&size=100", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[CardListResponse](t, rec).Cards)
}

func TestCardServiceMasksAndEnforcesIssuanceRules(t *testing.T) {
	h := newCardAPI()

	rec := do(t, h, http.MethodPost, "/api/cards", map[string]interface{}{
		"accountId": 7, "type": "physical", "cardAlias": "Main", "pan": "1234567890123456", "cvv": "123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	card := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "****-****-****-3456", card["pan"])
	assert.Equal(t, "***", card["cvv"])
	assert.Equal(t, "PHYSICAL", card["type"])

	rec = do(t, h, http.MethodGet, "/api/cards/1?showUnmasked=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	raw := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "1234567890123456", raw["pan"])
	assert.Equal(t, "123", raw["cvv"])

	rec = do(t, h, http.MethodPost, "/api/cards", map[string]interface{}{
		"accountId": 7, "type": "PHYSICAL", "pan": "9999888877776666", "cvv": "999",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Error, "only one card of each type")

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/cards", map[string]interface{}{
		"accountId": 7, "type": "VIRTUAL", "pan": "5555444433332222", "cvv": "321",
	}).Code)

	rec = do(t, h, http.MethodPost, "/api/cards", map[string]interface{}{
		"accountId": 7, "type": "VIRTUAL", "pan": "1111222233334444", "cvv": "111",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Error, "maximum of 2 cards")

	rec = do(t, h, http.MethodGet, "/api/cards?type=virtual", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[CardListResponse](t, rec)
	require.Len(t, page.Cards, 1)
	assert.Equal(t, "****-****-****-2222", page.Cards[0].PAN)

	rec = do(t, h, http.MethodGet, "/api/cards/99/accounts", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No cards found for owner with id: 99", decode[errorResponse](t, rec).Error)

	rec = do(t, h, http.MethodGet, "/api/cards/7/accounts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]interface{}](t, rec), 2)
}

func TestCardCreateValidation(t *testing.T) {
	h := newCardAPI()

	tests := []struct {
		name  string
		body  map[string]interface{}
		field string
	}{
		{name: "missing account", body: map[string]interface{}{"type": "PHYSICAL", "pan": "1234", "cvv": "123"}, field: "accountId"},
		{name: "unknown type", body: map[string]interface{}{"accountId": 1, "type": "GOLD", "pan": "1234", "cvv": "123"}, field: "type"},
		{name: "letters in pan", body: map[string]interface{}{"accountId": 1, "type": "PHYSICAL", "pan": "12ab", "cvv": "123"}, field: "pan"},
		{name: "short cvv", body: map[string]interface{}{"accountId": 1, "type": "PHYSICAL", "pan": "1234", "cvv": "1"}, field: "cvv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/cards", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode[errorResponse](t, rec).Fields, tt.field)
		})
	}

	rec := do(t, h, http.MethodPost, "/api/cards", "{not json")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCardAliasRoundTripsUnchanged(t *testing.T) {
	h := newCardAPI()
	rec := do(t, h, http.MethodPost, "/api/cards", map[string]interface{}{
		"accountId": 9, "type": "VIRTUAL", "cardAlias": "  Weekend  ", "pan": "1234567812345678", "cvv": "123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "  Weekend  ", decode[map[string]interface{}](t, rec)["cardAlias"])

	rec = do(t, h, http.MethodGet, "/api/cards/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "  Weekend  ", decode[map[string]interface{}](t, rec)["cardAlias"])
}

func TestUpdateCardAliasBodyFormats(t *testing.T) {
	h := newCardAPI()
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/cards", map[string]interface{}{
		"accountId": 3, "type": "VIRTUAL", "cardAlias": "Old", "pan": "1234567812345678", "cvv": "123",
	}).Code)

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "raw text", body: "Travel", want: "Travel"},
		{name: "json string", body: `"Groceries"`, want: "Groceries"},
		{name: "json object", body: `{"cardAlias":"Online"}`, want: "Online"},
		{name: "padded json string", body: `"  Bills  "`, want: "  Bills  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPut, "/api/cards/1/alias", tt.body)
			require.Equal(t, http.StatusOK, rec.Code)
			view := decode[map[string]interface{}](t, rec)
			assert.Equal(t, tt.want, view["cardAlias"])
			assert.Equal(t, "***", view["cvv"])
		})
	}

	rec := do(t, h, http.MethodPut, "/api/cards/1/alias", "   ")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Card alias is mandatory", decode[errorResponse](t, rec).Fields["cardAlias"])

	require.Equal(t, http.StatusNotFound, do(t, h, http.MethodPut, "/api/cards/42/alias", "x").Code)
}

func TestAccountsAreEnrichedAndFilteredByCardAlias(t *testing.T) {
	cardSrv := httptest.NewServer(newCardAPI())
	defer cardSrv.Close()
	customers := newCustomerAPI()
	accounts := newAccountAPI(cardSrv.URL)

	require.Equal(t, http.StatusCreated, do(t, customers, http.MethodPost, "/api/customers", map[string]string{"firstName": "Jane", "lastName": "Roe"}).Code)
	rec := do(t, customers, http.MethodPost, "/api/customers", map[string]string{"firstName": "John", "lastName": "Doe"})
	require.Equal(t, http.StatusCreated, rec.Code)
	john := decode[CustomerResponse](t, rec)

	rec = do(t, accounts, http.MethodPost, "/api/accounts", map[string]interface{}{
		"customerId": john.ID, "iban": "IBAN123", "bicSwift": "BIC001",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	account := decode[AccountResponse](t, rec)
	assert.Nil(t, account.Cards, "owner without cards is reported as unavailable by the card service")

	// Cards are keyed by the account's customer id.
	rec = do(t, cardSrv.Config.Handler, http.MethodPost, "/api/cards", map[string]interface{}{
		"accountId": account.CustomerID, "type": "PHYSICAL", "cardAlias": "Card1", "pan": "1234567890123456", "cvv": "123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Equal(t, http.StatusCreated, do(t, accounts, http.MethodPost, "/api/accounts", map[string]interface{}{
		"customerId": 1, "iban": "IBAN999", "bicSwift": "BIC002",
	}).Code)

	rec = do(t, accounts, http.MethodGet, "/api/accounts?cardAlias=Card1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[AccountListResponse](t, rec)
	require.Len(t, list.Accounts, 1)
	assert.Equal(t, account.ID, list.Accounts[0].ID)
	require.Len(t, list.Accounts[0].Cards, 1)
	assert.Equal(t, "****-****-****-3456", list.Accounts[0].Cards[0].PAN)
	assert.Equal(t, "Card1", list.Accounts[0].Cards[0].CardAlias)
	assert.Equal(t, int64(2), list.TotalItems)

	rec = do(t, cardSrv.Config.Handler, http.MethodPost, "/api/cards", map[string]interface{}{
		"accountId": account.CustomerID, "type": "PHYSICAL", "cardAlias": "Card2", "pan": "6543210987654321", "cvv": "456",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, cardSrv.Config.Handler, http.MethodGet, "/api/cards", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decode[CardListResponse](t, rec).TotalItems)

	rec = do(t, accounts, http.MethodGet, "/api/accounts?iban=999", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list = decode[AccountListResponse](t, rec)
	require.Len(t, list.Accounts, 1)
	assert.Nil(t, list.Accounts[0].Cards)
}

func TestAccountsDegradeWhenCardServiceIsDown(t *testing.T) {
	cardSrv := httptest.NewServer(http.NotFoundHandler())
	url := cardSrv.URL
	cardSrv.Close()
	accounts := newAccountAPI(url)

	require.Equal(t, http.StatusCreated, do(t, accounts, http.MethodPost, "/api/accounts", map[string]interface{}{
		"customerId": 5, "iban": "IBAN555", "bicSwift": "BIC005",
	}).Code)

	rec := do(t, accounts, http.MethodGet, "/api/accounts/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cards":null`)

	rec = do(t, accounts, http.MethodGet, "/api/accounts?cardAlias=x", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[AccountListResponse](t, rec)
	assert.Empty(t, list.Accounts)
	assert.Equal(t, int64(1), list.TotalItems)
}

func TestAccountValidationAndNotFound(t *testing.T) {
	accounts := newAccountAPI("http://127.0.0.1:1")

	rec := do(t, accounts, http.MethodPost, "/api/accounts", map[string]interface{}{"iban": "IBAN1"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decode[errorResponse](t, rec).Fields
	assert.Contains(t, fields, "customerId")
	assert.Contains(t, fields, "bicSwift")

	rec = do(t, accounts, http.MethodPut, "/api/accounts/8", map[string]interface{}{"customerId": 1, "iban": "I", "bicSwift": "B"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Account not found with id: 8", decode[errorResponse](t, rec).Error)

	require.Equal(t, http.StatusBadRequest, do(t, accounts, http.MethodGet, "/api/accounts/abc", nil).Code)
	require.Equal(t, http.StatusNotFound, do(t, accounts, http.MethodDelete, "/api/accounts/8", nil).Code)
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthAndReadiness(t *testing.T) {
	repo := memstore.NewCustomerRepository()
	h := NewCustomerRouter(testConfig(), logger.Nop(), app.NewCustomerService(repo, logger.Nop()), repo)

	rec := do(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/ready", nil).Code)

	down := NewCustomerRouter(testConfig(), logger.Nop(), app.NewCustomerService(repo, logger.Nop()), downPinger{})
	require.Equal(t, http.StatusServiceUnavailable, do(t, down, http.MethodGet, "/ready", nil).Code)
}

func TestUnexpectedErrorsAreNotLeaked(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/cards", nil)
	writeError(rec, req, logger.Nop(), errors.New("pq: password authentication failed for user bank"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, strings.Contains(rec.Body.String(), "password"))
	assert.Equal(t, internalErrorMessage, decode[errorResponse](t, rec).Error)
}
