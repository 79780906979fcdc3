/**
 * @description
 * This file contains the business logic of the card-service: listing and reading
 * cards, issuing new cards through the IssuancePolicy, renaming and deleting.
 *
 * @notes
 * - The policy runs inside the repository's issuing transaction, so the limit and
 *   duplicate-type checks see a consistent view and nothing is written on rejection.
 */
package app

import (
	"context"
	"strings"

	"github.com/rabiot125/Banking-Microservice/internal/domain"
	"github.com/rabiot125/Banking-Microservice/internal/logger"
	"github.com/rabiot125/Banking-Microservice/internal/store"
)

// CardService encapsulates card use cases.
type CardService struct {
	repo   store.CardRepository
	policy IssuancePolicy
	log    *logger.Logger
}

// NewCardService creates a CardService with the default issuance policy.
func NewCardService(repo store.CardRepository, log *logger.Logger) *CardService {
	return &CardService{repo: repo, policy: DefaultIssuancePolicy(), log: log}
}

// IssueCardInput defines the required input for issuing a card.
type IssueCardInput struct {
	AccountID int64
	Alias     string
	Type      domain.CardType
	PAN       string
	CVV       string
}

// ListCards returns one page of cards matching filter.
func (s *CardService) ListCards(ctx context.Context, filter domain.CardFilter, page domain.PageRequest) (domain.Page[domain.Card], error) {
	cards, total, err := s.repo.ListCards(ctx, filter, page)
	if err != nil {
		return domain.Page[domain.Card]{}, err
	}
	return domain.NewPage(cards, page, total), nil
}

// GetCard returns a single card.
func (s *CardService) GetCard(ctx context.Context, id int64) (*domain.Card, error) {
	return s.repo.GetCard(ctx, id)
}

// ListCardsByOwner returns every card held by ownerID. An owner without cards
// is reported as not found.
func (s *CardService) ListCardsByOwner(ctx context.Context, ownerID int64) ([]domain.Card, error) {
	cards, err := s.repo.ListCardsByAccount(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, domain.NoCardsForOwner(ownerID)
	}
	return cards, nil
}

// IssueCard persists a new card if the issuance policy accepts it.
func (s *CardService) IssueCard(ctx context.Context, input IssueCardInput) (*domain.Card, error) {
	card := &domain.Card{
		AccountID: input.AccountID,
		Alias:     input.Alias,
		Type:      input.Type,
		PAN:       input.PAN,
		CVV:       input.CVV,
	}

	created, err := s.repo.CreateCard(ctx, card, s.policy.Check)
	if err != nil {
		return nil, err
	}
	s.log.Info("card issued", "card_id", created.ID, "account_id", created.AccountID, "type", created.Type)
	return created, nil
}

// UpdateAlias renames a card. Blank aliases are rejected; others are stored as given.
func (s *CardService) UpdateAlias(ctx context.Context, id int64, alias string) (*domain.Card, error) {
	if strings.TrimSpace(alias) == "" {
		return nil, domain.NewValidationError("cardAlias", "Card alias is mandatory")
	}
	updated, err := s.repo.UpdateCardAlias(ctx, id, alias)
	if err != nil {
		return nil, err
	}
	s.log.Info("card alias updated", "card_id", id)
	return updated, nil
}

// DeleteCard removes a card.
func (s *CardService) DeleteCard(ctx context.Context, id int64) error {
	if err := s.repo.DeleteCard(ctx, id); err != nil {
		return err
	}
	s.log.Info("card deleted", "card_id", id)
	return nil
}
