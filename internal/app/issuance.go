package app

import (
	"fmt"

	"github.com/rabiot125/Banking-Microservice/internal/domain"
)

// IssuancePolicy is the rule engine consulted before a card is persisted.
type IssuancePolicy struct {
	MaxCardsPerAccount int
}

// DefaultIssuancePolicy allows two cards per account, one of each type.
func DefaultIssuancePolicy() IssuancePolicy {
	return IssuancePolicy{MaxCardsPerAccount: domain.MaxCardsPerAccount}
}

// Check rejects proposed when the account is already at its card limit or
// already holds a card of the same type. The type check runs even when the
// limit check passes.
func (p IssuancePolicy) Check(existing []domain.Card, proposed domain.Card) error {
	if len(existing) >= p.MaxCardsPerAccount {
		return fmt.Errorf("%w: account %d can have a maximum of %d cards",
			domain.ErrCardLimitExceeded, proposed.AccountID, p.MaxCardsPerAccount)
	}
	for _, c := range existing {
		if c.Type == proposed.Type {
			return fmt.Errorf("%w: account %d already has a %s card, only one card of each type is allowed",
				domain.ErrDuplicateCardType, proposed.AccountID, proposed.Type)
		}
	}
	return nil
}
