/**
 * @description
 * This file defines the Card model, its closed type enumeration, list filters and
 * the summary shape the account-service receives from the card-service.
 *
 * @notes
 * - PAN, CVV and type are immutable after issuance. Only the alias can change.
 * - PAN and CVV are stored raw. Masking happens in the presenter on every read path.
 */
package domain

import (
	"fmt"
	"strings"
)

// MaxCardsPerAccount caps how many cards a single account may hold.
const MaxCardsPerAccount = 2

// CardType is the kind of card issued.
type CardType string

const (
	CardTypePhysical CardType = "PHYSICAL"
	CardTypeVirtual  CardType = "VIRTUAL"
)

// ParseCardType converts s to a CardType, ignoring case and surrounding spaces.
func ParseCardType(s string) (CardType, error) {
	switch CardType(strings.ToUpper(strings.TrimSpace(s))) {
	case CardTypePhysical:
		return CardTypePhysical, nil
	case CardTypeVirtual:
		return CardTypeVirtual, nil
	default:
		return "", NewValidationError("type", fmt.Sprintf("must be one of %s, %s", CardTypePhysical, CardTypeVirtual))
	}
}

// Card represents a payment card linked to an account.
type Card struct {
	ID        int64
	AccountID int64
	Alias     string
	Type      CardType
	PAN       string
	CVV       string
}

// CardFilter holds the optional list predicates. Nil fields constrain nothing.
type CardFilter struct {
	Alias *string
	Type  *CardType
	PAN   *string
}

// Matches reports whether c satisfies every set predicate.
func (f CardFilter) Matches(c Card) bool {
	if f.Alias != nil && !strings.Contains(c.Alias, *f.Alias) {
		return false
	}
	if f.Type != nil && c.Type != *f.Type {
		return false
	}
	if f.PAN != nil && !strings.Contains(c.PAN, *f.PAN) {
		return false
	}
	return true
}

// CardSummary is what the account-service knows about a card. PAN arrives masked.
type CardSummary struct {
	ID    int64
	Alias string
	Type  CardType
	PAN   string
}

// EnrichmentStatus classifies the outcome of one card lookup.
type EnrichmentStatus int

const (
	// CardsUnavailable means the lookup failed. It is the zero value.
	CardsUnavailable EnrichmentStatus = iota
	// CardsFound means the lookup succeeded and returned at least one card.
	CardsFound
	// CardsEmpty means the lookup succeeded and the owner has no cards.
	CardsEmpty
)

func (s EnrichmentStatus) String() string {
	switch s {
	case CardsFound:
		return "found"
	case CardsEmpty:
		return "empty"
	default:
		return "unavailable"
	}
}

// CardEnrichment is the explicit result of enriching one account with its cards.
type CardEnrichment struct {
	Status EnrichmentStatus
	Cards  []CardSummary
	Err    error
}

// EnrichmentFromLookup folds a lookup's return values into a CardEnrichment.
// Any error yields CardsUnavailable wrapping ErrEnrichmentUnavailable.
func EnrichmentFromLookup(cards []CardSummary, err error) CardEnrichment {
	if err != nil {
		return CardEnrichment{Status: CardsUnavailable, Err: fmt.Errorf("%w: %w", ErrEnrichmentUnavailable, err)}
	}
	if len(cards) == 0 {
		return CardEnrichment{Status: CardsEmpty, Cards: []CardSummary{}}
	}
	return CardEnrichment{Status: CardsFound, Cards: cards}
}

// HasCards reports whether the lookup succeeded with at least one card.
func (e CardEnrichment) HasCards() bool {
	return e.Status == CardsFound && len(e.Cards) > 0
}
