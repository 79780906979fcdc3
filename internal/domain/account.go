/**
 * @description
 * This file defines the core domain model for an Account, the filters used to list
 * accounts and the enriched view produced by the account-service.
 *
 * @notes
 * - Cards are never stored on the Account. EnrichedAccount carries a transient
 *   projection fetched from the card-service on every read.
 * - The card-service is queried with the account's CustomerID, not its ID.
 */
package domain

import "strings"

// Account represents a customer's bank account.
type Account struct {
	ID         int64
	CustomerID int64
	IBAN       string
	BICSwift   string
}

// AccountFields are the client-settable fields of an Account. Updates replace all of them.
type AccountFields struct {
	CustomerID int64
	IBAN       string
	BICSwift   string
}

// Apply overwrites a's settable fields.
func (f AccountFields) Apply(a *Account) {
	a.CustomerID = f.CustomerID
	a.IBAN = f.IBAN
	a.BICSwift = f.BICSwift
}

// AccountFilter holds the optional list predicates. Nil fields constrain nothing.
type AccountFilter struct {
	IBAN     *string
	BICSwift *string
}

// Matches reports whether a satisfies every set predicate.
func (f AccountFilter) Matches(a Account) bool {
	if f.IBAN != nil && !strings.Contains(a.IBAN, *f.IBAN) {
		return false
	}
	if f.BICSwift != nil && !strings.Contains(a.BICSwift, *f.BICSwift) {
		return false
	}
	return true
}

// CardOwnerID is the id used to look up this account's cards.
func (a Account) CardOwnerID() int64 {
	return a.CustomerID
}

// EnrichedAccount is an Account plus the outcome of its card lookup.
type EnrichedAccount struct {
	Account
	Cards CardEnrichment
}

// HasCardAlias reports whether any enriched card alias contains needle,
// ignoring case. Accounts without cards never match.
func (e EnrichedAccount) HasCardAlias(needle string) bool {
	if !e.Cards.HasCards() {
		return false
	}
	needle = strings.ToLower(needle)
	for _, c := range e.Cards.Cards {
		if strings.Contains(strings.ToLower(c.Alias), needle) {
			return true
		}
	}
	return false
}
