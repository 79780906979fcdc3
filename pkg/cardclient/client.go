/**
 * @description
 * This file provides a client for communicating with the card-service to fetch
 * the cards held by an owner. The account-service uses it to enrich accounts.
 *
 * @notes
 * - Every non-2xx status (404 included), transport failure, timeout or
 *   undecodable body is returned as an error. The caller decides how to degrade.
 * - The request id and W3C trace context of the inbound request are forwarded.
 */
package cardclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rabiot125/Banking-Microservice/internal/domain"
	"github.com/rabiot125/Banking-Microservice/pkg/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const maxErrorBodyBytes = 512

// ErrUnexpectedStatus wraps non-2xx responses from the card-service.
var ErrUnexpectedStatus = errors.New("unexpected status from card-service")

// Card is the card-service's JSON representation. PAN and CVV arrive masked.
type Card struct {
	ID        int64  `json:"id"`
	CardAlias string `json:"cardAlias"`
	AccountID int64  `json:"accountId"`
	Type      string `json:"type"`
	PAN       string `json:"pan"`
	CVV       string `json:"cvv"`
}

// Client provides methods to interact with the card-service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new card-service client. timeout caps each HTTP call.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewClientWithHTTPClient creates a client around an existing http.Client.
func NewClientWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	c := NewClient(baseURL, 0)
	c.httpClient = httpClient
	return c
}

// FetchCardsForOwner retrieves the cards held by ownerID.
func (c *Client) FetchCardsForOwner(ctx context.Context, ownerID int64) ([]domain.CardSummary, error) {
	url := fmt.Sprintf("%s/api/cards/%d/accounts", c.baseURL, ownerID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if requestID := middleware.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set(middleware.RequestIDHeader, requestID)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call card-service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var cards []Card
	if err := json.NewDecoder(resp.Body).Decode(&cards); err != nil {
		return nil, fmt.Errorf("failed to parse card-service response: %w", err)
	}

	summaries := make([]domain.CardSummary, 0, len(cards))
	for _, card := range cards {
		summaries = append(summaries, domain.CardSummary{
			ID:    card.ID,
			Alias: card.CardAlias,
			Type:  domain.CardType(card.Type),
			PAN:   card.PAN,
		})
	}
	return summaries, nil
}
