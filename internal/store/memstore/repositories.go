package memstore

import (
	"context"
	"time"

	"github.com/rabiot125/Banking-Microservice/internal/domain"
	"github.com/rabiot125/Banking-Microservice/internal/store"
)

var (
	_ store.CustomerRepository = (*CustomerRepository)(nil)
	_ store.AccountRepository  = (*AccountRepository)(nil)
	_ store.CardRepository     = (*CardRepository)(nil)
)

// CustomerRepository is an in-memory store.CustomerRepository.
type CustomerRepository struct {
	rows *table[domain.Customer]
	now  func() time.Time
}

// NewCustomerRepository returns an empty customer repository.
func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{
		rows: newTable[domain.Customer](),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the clock used to stamp CreatedAt.
func (r *CustomerRepository) WithClock(now func() time.Time) *CustomerRepository {
	r.now = now
	return r
}

func (r *CustomerRepository) ListCustomers(_ context.Context, filter domain.CustomerFilter, page domain.PageRequest) ([]domain.Customer, int64, error) {
	items, total := r.rows.page(filter.Matches, page)
	return items, total, nil
}

func (r *CustomerRepository) GetCustomer(_ context.Context, id int64) (*domain.Customer, error) {
	c, ok := r.rows.get(id)
	if !ok {
		return nil, domain.CustomerNotFound(id)
	}
	return &c, nil
}

func (r *CustomerRepository) CreateCustomer(_ context.Context, customer *domain.Customer) (*domain.Customer, error) {
	r.rows.mu.Lock()
	defer r.rows.mu.Unlock()
	customer.ID = r.rows.allocate()
	customer.CreatedAt = r.now()
	r.rows.rows[customer.ID] = *customer
	return customer, nil
}

func (r *CustomerRepository) UpdateCustomer(_ context.Context, id int64, patch domain.CustomerPatch) (*domain.Customer, error) {
	c, ok := r.rows.update(id, patch.Apply)
	if !ok {
		return nil, domain.CustomerNotFound(id)
	}
	return &c, nil
}

func (r *CustomerRepository) DeleteCustomer(_ context.Context, id int64) error {
	if !r.rows.delete(id) {
		return domain.CustomerNotFound(id)
	}
	return nil
}

// Ping always succeeds.
func (r *CustomerRepository) Ping(context.Context) error { return nil }

// AccountRepository is an in-memory store.AccountRepository.
type AccountRepository struct {
	rows *table[domain.Account]
}

// NewAccountRepository returns an empty account repository.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{rows: newTable[domain.Account]()}
}

func (r *AccountRepository) ListAccounts(_ context.Context, filter domain.AccountFilter, page domain.PageRequest) ([]domain.Account, int64, error) {
	items, total := r.rows.page(filter.Matches, page)
	return items, total, nil
}

func (r *AccountRepository) GetAccount(_ context.Context, id int64) (*domain.Account, error) {
	a, ok := r.rows.get(id)
	if !ok {
		return nil, domain.AccountNotFound(id)
	}
	return &a, nil
}

func (r *AccountRepository) CreateAccount(_ context.Context, fields domain.AccountFields) (*domain.Account, error) {
	r.rows.mu.Lock()
	defer r.rows.mu.Unlock()
	a := domain.Account{ID: r.rows.allocate()}
	fields.Apply(&a)
	r.rows.rows[a.ID] = a
	return &a, nil
}

func (r *AccountRepository) UpdateAccount(_ context.Context, id int64, fields domain.AccountFields) (*domain.Account, error) {
	a, ok := r.rows.update(id, fields.Apply)
	if !ok {
		return nil, domain.AccountNotFound(id)
	}
	return &a, nil
}

func (r *AccountRepository) DeleteAccount(_ context.Context, id int64) error {
	if !r.rows.delete(id) {
		return domain.AccountNotFound(id)
	}
	return nil
}

// Ping always succeeds.
func (r *AccountRepository) Ping(context.Context) error { return nil }

// CardRepository is an in-memory store.CardRepository.
type CardRepository struct {
	rows *table[domain.Card]
}

// NewCardRepository returns an empty card repository.
func NewCardRepository() *CardRepository {
	return &CardRepository{rows: newTable[domain.Card]()}
}

func (r *CardRepository) ListCards(_ context.Context, filter domain.CardFilter, page domain.PageRequest) ([]domain.Card, int64, error) {
	items, total := r.rows.page(filter.Matches, page)
	return items, total, nil
}

func (r *CardRepository) GetCard(_ context.Context, id int64) (*domain.Card, error) {
	c, ok := r.rows.get(id)
	if !ok {
		return nil, domain.CardNotFound(id)
	}
	return &c, nil
}

func (r *CardRepository) ListCardsByAccount(_ context.Context, accountID int64) ([]domain.Card, error) {
	r.rows.mu.RLock()
	defer r.rows.mu.RUnlock()
	return r.byAccount(accountID), nil
}

// byAccount collects accountID's cards in id order. Callers hold the lock.
func (r *CardRepository) byAccount(accountID int64) []domain.Card {
	cards := []domain.Card{}
	for _, id := range r.rows.sortedIDs() {
		if c := r.rows.rows[id]; c.AccountID == accountID {
			cards = append(cards, c)
		}
	}
	return cards
}

// CreateCard holds the write lock across the guard and the insert.
func (r *CardRepository) CreateCard(_ context.Context, card *domain.Card, guard store.IssueGuard) (*domain.Card, error) {
	r.rows.mu.Lock()
	defer r.rows.mu.Unlock()

	if guard != nil {
		if err := guard(r.byAccount(card.AccountID), *card); err != nil {
			return nil, err
		}
	}
	card.ID = r.rows.allocate()
	r.rows.rows[card.ID] = *card
	return card, nil
}

func (r *CardRepository) UpdateCardAlias(_ context.Context, id int64, alias string) (*domain.Card, error) {
	c, ok := r.rows.update(id, func(c *domain.Card) { c.Alias = alias })
	if !ok {
		return nil, domain.CardNotFound(id)
	}
	return &c, nil
}

func (r *CardRepository) DeleteCard(_ context.Context, id int64) error {
	if !r.rows.delete(id) {
		return domain.CardNotFound(id)
	}
	return nil
}

// Ping always succeeds.
func (r *CardRepository) Ping(context.Context) error { return nil }
