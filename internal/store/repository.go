/**
 * @description
 * This file defines the interfaces for the data access layer (repositories).
 * Each service depends on these contracts, not on the PostgreSQL or in-memory
 * implementations, so handlers and services can be tested against either.
 *
 * @notes
 * - List methods return the page items plus the total count of the filtered set.
 * - Update and delete report domain not-found errors when the id does not exist.
 */
package store

import (
	"context"

	"github.com/rabiot125/Banking-Microservice/internal/domain"
)

// CustomerRepository defines the contract for customer persistence.
type CustomerRepository interface {
	ListCustomers(ctx context.Context, filter domain.CustomerFilter, page domain.PageRequest) ([]domain.Customer, int64, error)
	GetCustomer(ctx context.Context, id int64) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, patch domain.CustomerPatch) (*domain.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
}

// AccountRepository defines the contract for account persistence.
type AccountRepository interface {
	ListAccounts(ctx context.Context, filter domain.AccountFilter, page domain.PageRequest) ([]domain.Account, int64, error)
	GetAccount(ctx context.Context, id int64) (*domain.Account, error)
	CreateAccount(ctx context.Context, fields domain.AccountFields) (*domain.Account, error)
	UpdateAccount(ctx context.Context, id int64, fields domain.AccountFields) (*domain.Account, error)
	DeleteAccount(ctx context.Context, id int64) error
}

// IssueGuard inspects the cards an account already holds and rejects the
// proposed card by returning an error. It runs inside the issuing transaction.
type IssueGuard func(existing []domain.Card, proposed domain.Card) error

// CardRepository defines the contract for card persistence.
type CardRepository interface {
	ListCards(ctx context.Context, filter domain.CardFilter, page domain.PageRequest) ([]domain.Card, int64, error)
	GetCard(ctx context.Context, id int64) (*domain.Card, error)
	ListCardsByAccount(ctx context.Context, accountID int64) ([]domain.Card, error)
	CreateCard(ctx context.Context, card *domain.Card, guard IssueGuard) (*domain.Card, error)
	UpdateCardAlias(ctx context.Context, id int64, alias string) (*domain.Card, error)
	DeleteCard(ctx context.Context, id int64) error
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
