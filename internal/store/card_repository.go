/**
 * @description
 * This file implements the data access layer for cards on PostgreSQL.
 *
 * @notes
 * - CreateCard serialises issuance per account with a transaction-scoped advisory
 *   lock, so the guard always sees every card committed before it.
 * - The cards_account_id_type_key unique index backs the one-card-per-type rule.
 */
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabiot125/Banking-Microservice/internal/domain"
)

const (
	cardColumns           = "id, account_id, card_alias, type, pan, cvv"
	cardTypeUniqueIndex   = "cards_account_id_type_key"
	cardIssuanceLockQuery = "SELECT pg_advisory_xact_lock($1)"
)

// PostgresCardRepository is the PostgreSQL implementation of the CardRepository.
type PostgresCardRepository struct {
	db *pgxpool.Pool
}

// NewPostgresCardRepository creates a new instance of PostgresCardRepository.
func NewPostgresCardRepository(db *pgxpool.Pool) *PostgresCardRepository {
	return &PostgresCardRepository{db: db}
}

func scanCard(row pgx.Row) (*domain.Card, error) {
	var c domain.Card
	var cardType string
	if err := row.Scan(&c.ID, &c.AccountID, &c.Alias, &cardType, &c.PAN, &c.CVV); err != nil {
		return nil, err
	}
	c.Type = domain.CardType(cardType)
	return &c, nil
}

func collectCards(rows pgx.Rows) ([]domain.Card, error) {
	defer rows.Close()
	cards := []domain.Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		cards = append(cards, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}
	return cards, nil
}

// ListCards returns one page of cards matching filter and the filtered total.
func (r *PostgresCardRepository) ListCards(ctx context.Context, filter domain.CardFilter, page domain.PageRequest) ([]domain.Card, int64, error) {
	where := &whereClause{}
	if filter.Alias != nil {
		where.add("card_alias LIKE ?", containsPattern(*filter.Alias))
	}
	if filter.Type != nil {
		where.add("type = ?", string(*filter.Type))
	}
	if filter.PAN != nil {
		where.add("pan LIKE ?", containsPattern(*filter.PAN))
	}

	total, err := countRows(ctx, r.db, "cards", where)
	if err != nil {
		return nil, 0, err
	}

	suffix, args := where.paginate(page.Size, page.Offset())
	rows, err := r.db.Query(ctx, "SELECT "+cardColumns+" FROM cards"+where.String()+" ORDER BY id"+suffix, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query cards: %w", err)
	}
	cards, err := collectCards(rows)
	if err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

// GetCard retrieves a card by id.
func (r *PostgresCardRepository) GetCard(ctx context.Context, id int64) (*domain.Card, error) {
	c, err := scanCard(r.db.QueryRow(ctx, "SELECT "+cardColumns+" FROM cards WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.CardNotFound(id)
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return c, nil
}

// ListCardsByAccount retrieves every card owned by accountID.
func (r *PostgresCardRepository) ListCardsByAccount(ctx context.Context, accountID int64) ([]domain.Card, error) {
	return listCardsByAccount(ctx, r.db, accountID)
}

func listCardsByAccount(ctx context.Context, q querier, accountID int64) ([]domain.Card, error) {
	rows, err := q.Query(ctx, "SELECT "+cardColumns+" FROM cards WHERE account_id = $1 ORDER BY id", accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards by account: %w", err)
	}
	return collectCards(rows)
}

// CreateCard runs guard against the account's current cards and inserts card
// only if the guard accepts it. Both happen in one transaction.
func (r *PostgresCardRepository) CreateCard(ctx context.Context, card *domain.Card, guard IssueGuard) (*domain.Card, error) {
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, cardIssuanceLockQuery, card.AccountID); err != nil {
			return fmt.Errorf("failed to lock account for issuance: %w", err)
		}

		existing, err := listCardsByAccount(ctx, tx, card.AccountID)
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(existing, *card); err != nil {
				return err
			}
		}

		query := `
            INSERT INTO cards (account_id, card_alias, type, pan, cvv)
            VALUES ($1, $2, $3, $4, $5)
            RETURNING id
        `
		if err := tx.QueryRow(ctx, query, card.AccountID, card.Alias, string(card.Type), card.PAN, card.CVV).Scan(&card.ID); err != nil {
			if isUniqueViolation(err, cardTypeUniqueIndex) {
				return fmt.Errorf("%w: account %d already has a %s card", domain.ErrDuplicateCardType, card.AccountID, card.Type)
			}
			return fmt.Errorf("failed to create card: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

// UpdateCardAlias changes the alias of an existing card.
func (r *PostgresCardRepository) UpdateCardAlias(ctx context.Context, id int64, alias string) (*domain.Card, error) {
	var updated *domain.Card
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		current, err := scanCard(tx.QueryRow(ctx, "SELECT "+cardColumns+" FROM cards WHERE id = $1 FOR UPDATE", id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.CardNotFound(id)
			}
			return fmt.Errorf("failed to lock card: %w", err)
		}
		if _, err := tx.Exec(ctx, "UPDATE cards SET card_alias = $1 WHERE id = $2", alias, id); err != nil {
			return fmt.Errorf("failed to update card alias: %w", err)
		}
		current.Alias = alias
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCard removes a card record.
func (r *PostgresCardRepository) DeleteCard(ctx context.Context, id int64) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		return deleteLocked(ctx, tx, "cards", id, domain.CardNotFound)
	})
}
