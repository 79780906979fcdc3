package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabiot125/Banking-Microservice/internal/domain"
	"github.com/rabiot125/Banking-Microservice/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const integrationTimeout = 30 * time.Second

// integrationPool connects to DATABASE_URL, applies every schema and empties
// the tables. Tests are skipped when DATABASE_URL is unset.
func integrationPool(t *testing.T) (context.Context, *pgxpool.Pool) {
	t.Helper()
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("DATABASE_URL not set, skipping Postgres integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), integrationTimeout)
	t.Cleanup(cancel)

	pool, err := NewPool(ctx, databaseURL, PoolOptions{MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	for _, schema := range []Schema{SchemaCustomers, SchemaAccounts, SchemaCards} {
		require.NoError(t, MigrateUp(ctx, pool, schema, logger.Nop()), schema)
	}
	_, err = pool.Exec(ctx, "TRUNCATE cards, accounts, customers RESTART IDENTITY")
	require.NoError(t, err)
	return ctx, pool
}

// maxTwoDistinctTypes mirrors the card service issuance rules.
func maxTwoDistinctTypes(existing []domain.Card, proposed domain.Card) error {
	if len(existing) >= 2 {
		return fmt.Errorf("%w: account %d", domain.ErrCardLimitExceeded, proposed.AccountID)
	}
	for _, c := range existing {
		if c.Type == proposed.Type {
			return fmt.Errorf("%w: account %d", domain.ErrDuplicateCardType, proposed.AccountID)
		}
	}
	return nil
}

func newCard(accountID int64, cardType domain.CardType, alias string) *domain.Card {
	return &domain.Card{AccountID: accountID, Alias: alias, Type: cardType, PAN: "1234567890123456", CVV: "123"}
}

func countCards(t *testing.T, ctx context.Context, repo *PostgresCardRepository, accountID int64) int {
	t.Helper()
	cards, err := repo.ListCardsByAccount(ctx, accountID)
	require.NoError(t, err)
	return len(cards)
}

func TestPostgresCardIssuanceRules(t *testing.T) {
	ctx, pool := integrationPool(t)
	repo := NewPostgresCardRepository(pool)

	physical, err := repo.CreateCard(ctx, newCard(1, domain.CardTypePhysical, "  Main  "), maxTwoDistinctTypes)
	require.NoError(t, err)
	assert.Positive(t, physical.ID)

	_, err = repo.CreateCard(ctx, newCard(1, domain.CardTypePhysical, "Spare"), maxTwoDistinctTypes)
	require.ErrorIs(t, err, domain.ErrDuplicateCardType)
	assert.Equal(t, 1, countCards(t, ctx, repo, 1))

	_, err = repo.CreateCard(ctx, newCard(1, domain.CardTypeVirtual, "Online"), maxTwoDistinctTypes)
	require.NoError(t, err)

	_, err = repo.CreateCard(ctx, newCard(1, domain.CardTypeVirtual, "Third"), maxTwoDistinctTypes)
	require.ErrorIs(t, err, domain.ErrCardLimitExceeded)
	assert.Equal(t, 2, countCards(t, ctx, repo, 1))

	stored, err := repo.GetCard(ctx, physical.ID)
	require.NoError(t, err)
	assert.Equal(t, "  Main  ", stored.Alias)
}

func TestPostgresCardTypeUniqueIndex(t *testing.T) {
	ctx, pool := integrationPool(t)
	repo := NewPostgresCardRepository(pool)

	_, err := repo.CreateCard(ctx, newCard(2, domain.CardTypeVirtual, ""), nil)
	require.NoError(t, err)

	_, err = repo.CreateCard(ctx, newCard(2, domain.CardTypeVirtual, ""), nil)
	require.ErrorIs(t, err, domain.ErrDuplicateCardType)
	assert.Equal(t, 1, countCards(t, ctx, repo, 2))
}

func TestPostgresCardUpdateAndDelete(t *testing.T) {
	ctx, pool := integrationPool(t)
	repo := NewPostgresCardRepository(pool)

	card, err := repo.CreateCard(ctx, newCard(3, domain.CardTypeVirtual, "Old"), maxTwoDistinctTypes)
	require.NoError(t, err)

	updated, err := repo.UpdateCardAlias(ctx, card.ID, "New")
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Alias)

	_, err = repo.UpdateCardAlias(ctx, card.ID+100, "Missing")
	require.ErrorIs(t, err, domain.ErrCardNotFound)

	require.NoError(t, repo.DeleteCard(ctx, card.ID))
	assert.ErrorIs(t, repo.DeleteCard(ctx, card.ID), domain.ErrCardNotFound)
	assert.ErrorIs(t, repo.DeleteCard(ctx, card.ID), domain.ErrCardNotFound)

	_, err = repo.GetCard(ctx, card.ID)
	assert.ErrorIs(t, err, domain.ErrCardNotFound)
}

func TestPostgresListCardsEscapesWildcardsAndPages(t *testing.T) {
	ctx, pool := integrationPool(t)
	repo := NewPostgresCardRepository(pool)

	for i, alias := range []string{"50% off", "500 off", "Card_1", "Card11"} {
		_, err := repo.CreateCard(ctx, newCard(int64(10+i), domain.CardTypePhysical, alias), maxTwoDistinctTypes)
		require.NoError(t, err)
	}

	percent := "50%"
	cards, total, err := repo.ListCards(ctx, domain.CardFilter{Alias: &percent}, domain.PageRequest{Page: 0, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, cards, 1)
	assert.Equal(t, "50% off", cards[0].Alias)

	underscore := "Card_"
	cards, total, err = repo.ListCards(ctx, domain.CardFilter{Alias: &underscore}, domain.PageRequest{Page: 0, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, cards, 1)
	assert.Equal(t, "Card_1", cards[0].Alias)

	cards, total, err = repo.ListCards(ctx, domain.CardFilter{}, domain.PageRequest{Page: 1, Size: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, cards, 1)
	assert.Equal(t, "Card11", cards[0].Alias)

	cards, total, err = repo.ListCards(ctx, domain.CardFilter{}, domain.PageRequest{Page: 5, Size: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Empty(t, cards)
}

func TestPostgresCustomerLifecycle(t *testing.T) {
	ctx, pool := integrationPool(t)
	repo := NewPostgresCustomerRepository(pool)

	created, err := repo.CreateCustomer(ctx, &domain.Customer{FirstName: "Ann", LastName: "Lee"})
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	name := "n L"
	start := created.CreatedAt.Add(-time.Minute)
	customers, total, err := repo.ListCustomers(ctx, domain.CustomerFilter{Name: &name, StartDate: &start}, domain.PageRequest{Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, customers, 1)
	assert.Equal(t, created.ID, customers[0].ID)

	lastName := "Smith"
	updated, err := repo.UpdateCustomer(ctx, created.ID, domain.CustomerPatch{LastName: &lastName})
	require.NoError(t, err)
	assert.Equal(t, "Ann", updated.FirstName)
	assert.Equal(t, "Smith", updated.LastName)

	_, err = repo.UpdateCustomer(ctx, created.ID+100, domain.CustomerPatch{LastName: &lastName})
	require.ErrorIs(t, err, domain.ErrCustomerNotFound)

	require.NoError(t, repo.DeleteCustomer(ctx, created.ID))
	assert.ErrorIs(t, repo.DeleteCustomer(ctx, created.ID), domain.ErrCustomerNotFound)
	assert.ErrorIs(t, repo.DeleteCustomer(ctx, created.ID), domain.ErrCustomerNotFound)
}

func TestPostgresAccountLifecycle(t *testing.T) {
	ctx, pool := integrationPool(t)
	repo := NewPostgresAccountRepository(pool)

	created, err := repo.CreateAccount(ctx, domain.AccountFields{CustomerID: 1, IBAN: "GB29NWBK60161331926819", BICSwift: "NWBKGB2L"})
	require.NoError(t, err)
	_, err = repo.CreateAccount(ctx, domain.AccountFields{CustomerID: 2, IBAN: "DE89370400440532013000", BICSwift: "COBADEFF"})
	require.NoError(t, err)

	bic := "NWBK"
	accounts, total, err := repo.ListAccounts(ctx, domain.AccountFilter{BICSwift: &bic}, domain.PageRequest{Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, accounts, 1)
	assert.Equal(t, created.ID, accounts[0].ID)

	updated, err := repo.UpdateAccount(ctx, created.ID, domain.AccountFields{CustomerID: 1, IBAN: "GB29NWBK60161331926819", BICSwift: "NWBKGB2LXXX"})
	require.NoError(t, err)
	assert.Equal(t, "NWBKGB2LXXX", updated.BICSwift)

	_, err = repo.UpdateAccount(ctx, created.ID+100, domain.AccountFields{CustomerID: 1, IBAN: "X", BICSwift: "Y"})
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	require.NoError(t, repo.DeleteAccount(ctx, created.ID))
	assert.ErrorIs(t, repo.DeleteAccount(ctx, created.ID), domain.ErrAccountNotFound)
	assert.ErrorIs(t, repo.DeleteAccount(ctx, created.ID), domain.ErrAccountNotFound)
}
