/**
 * @description
 * This file contains the account-service business logic. Every account read is
 * enriched with the owner's cards fetched from the card-service.
 *
 * Key features:
 * - Enrichment fans out across the page with bounded concurrency and a per-call
 *   timeout. A failed lookup degrades only that account (cards unavailable).
 * - The card alias filter runs after enrichment, so page totals reflect the
 *   IBAN/BIC-filtered set, not the alias-filtered one.
 *
 * @dependencies
 * - golang.org/x/sync/errgroup: bounded fan-out.
 * - go.opentelemetry.io/otel: spans around each card lookup.
 */
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rabiot125/Banking-Microservice/internal/domain"
	"github.com/rabiot125/Banking-Microservice/internal/logger"
	"github.com/rabiot125/Banking-Microservice/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	defaultLookupTimeout     = 3 * time.Second
	defaultLookupConcurrency = 4
)

// CardLookup fetches the cards held by an owner. Any error means the cards
// are unavailable for that owner.
type CardLookup interface {
	FetchCardsForOwner(ctx context.Context, ownerID int64) ([]domain.CardSummary, error)
}

// EnrichmentOptions bounds the card lookups made for one request.
type EnrichmentOptions struct {
	Timeout     time.Duration
	Concurrency int
}

func (o EnrichmentOptions) withDefaults() EnrichmentOptions {
	if o.Timeout <= 0 {
		o.Timeout = defaultLookupTimeout
	}
	if o.Concurrency <= 0 {
		o.Concurrency = defaultLookupConcurrency
	}
	return o
}

// AccountService encapsulates account use cases.
type AccountService struct {
	repo   store.AccountRepository
	cards  CardLookup
	opts   EnrichmentOptions
	log    *logger.Logger
	tracer trace.Tracer
}

// NewAccountService creates an AccountService.
func NewAccountService(repo store.AccountRepository, cards CardLookup, opts EnrichmentOptions, log *logger.Logger) *AccountService {
	return &AccountService{
		repo:   repo,
		cards:  cards,
		opts:   opts.withDefaults(),
		log:    log,
		tracer: otel.Tracer("github.com/rabiot125/Banking-Microservice/internal/app"),
	}
}

// AccountQuery holds the optional list filters and the page selector.
type AccountQuery struct {
	Filter    domain.AccountFilter
	CardAlias *string
	Page      domain.PageRequest
}

// FindAccounts returns one page of enriched accounts. TotalItems counts the
// IBAN/BIC-filtered set before the card alias filter drops anything.
func (s *AccountService) FindAccounts(ctx context.Context, q AccountQuery) (domain.Page[domain.EnrichedAccount], error) {
	accounts, total, err := s.repo.ListAccounts(ctx, q.Filter, q.Page)
	if err != nil {
		return domain.Page[domain.EnrichedAccount]{}, err
	}

	enriched := s.enrich(ctx, accounts)
	if q.CardAlias != nil && *q.CardAlias != "" {
		enriched = filterByCardAlias(enriched, *q.CardAlias)
	}
	return domain.NewPage(enriched, q.Page, total), nil
}

// FindAccount returns a single enriched account.
func (s *AccountService) FindAccount(ctx context.Context, id int64) (*domain.EnrichedAccount, error) {
	account, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	enriched := s.enrichOne(ctx, *account)
	return &enriched, nil
}

// CreateAccount persists a new account and returns its enriched view.
func (s *AccountService) CreateAccount(ctx context.Context, fields domain.AccountFields) (*domain.EnrichedAccount, error) {
	account, err := s.repo.CreateAccount(ctx, fields)
	if err != nil {
		return nil, err
	}
	s.log.Info("account created", "account_id", account.ID, "customer_id", account.CustomerID)
	enriched := s.enrichOne(ctx, *account)
	return &enriched, nil
}

// UpdateAccount replaces the account's fields and returns its enriched view.
func (s *AccountService) UpdateAccount(ctx context.Context, id int64, fields domain.AccountFields) (*domain.EnrichedAccount, error) {
	account, err := s.repo.UpdateAccount(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	s.log.Info("account updated", "account_id", id)
	enriched := s.enrichOne(ctx, *account)
	return &enriched, nil
}

// DeleteAccount removes an account.
func (s *AccountService) DeleteAccount(ctx context.Context, id int64) error {
	if err := s.repo.DeleteAccount(ctx, id); err != nil {
		return err
	}
	s.log.Info("account deleted", "account_id", id)
	return nil
}

// enrich looks up cards for every account concurrently. The output keeps the
// input order and has one entry per account whatever the lookups return.
func (s *AccountService) enrich(ctx context.Context, accounts []domain.Account) []domain.EnrichedAccount {
	out := make([]domain.EnrichedAccount, len(accounts))

	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for i, account := range accounts {
		g.Go(func() error {
			out[i] = s.enrichOne(ctx, account)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (s *AccountService) enrichOne(ctx context.Context, account domain.Account) domain.EnrichedAccount {
	ownerID := account.CardOwnerID()
	ctx, span := s.tracer.Start(ctx, "accounts.enrich_cards", trace.WithAttributes(
		attribute.Int64("account.id", account.ID),
		attribute.Int64("card.owner_id", ownerID),
	))
	defer span.End()

	lookupCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	result := domain.EnrichmentFromLookup(s.lookup(lookupCtx, ownerID))
	span.SetAttributes(attribute.String("card.enrichment", result.Status.String()))
	if result.Status == domain.CardsUnavailable {
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, "card lookup failed")
		s.log.Warn("card enrichment unavailable", "account_id", account.ID, "owner_id", ownerID, "err", result.Err)
	}
	return domain.EnrichedAccount{Account: account, Cards: result}
}

// lookup shields callers from a panicking CardLookup implementation.
func (s *AccountService) lookup(ctx context.Context, ownerID int64) (cards []domain.CardSummary, err error) {
	defer func() {
		if r := recover(); r != nil {
			cards, err = nil, &lookupPanicError{value: r}
		}
	}()
	return s.cards.FetchCardsForOwner(ctx, ownerID)
}

func filterByCardAlias(accounts []domain.EnrichedAccount, alias string) []domain.EnrichedAccount {
	kept := make([]domain.EnrichedAccount, 0, len(accounts))
	for _, a := range accounts {
		if a.HasCardAlias(alias) {
			kept = append(kept, a)
		}
	}
	return kept
}

type lookupPanicError struct {
	value any
}

func (e *lookupPanicError) Error() string {
	return fmt.Sprintf("card lookup panicked: %v", e.value)
}
