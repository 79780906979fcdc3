/**
 * @description
 * This file implements the data access layer for accounts on PostgreSQL.
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

const accountColumns = "id, customer_id, iban, bic_swift"

// PostgresAccountRepository is the PostgreSQL implementation of the AccountRepository.
type PostgresAccountRepository struct {
	db *pgxpool.Pool
}

// NewPostgresAccountRepository creates a new instance of PostgresAccountRepository.
func NewPostgresAccountRepository(db *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	if err := row.Scan(&a.ID, &a.CustomerID, &a.IBAN, &a.BICSwift); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAccounts returns one page of accounts matching filter and the filtered total.
func (r *PostgresAccountRepository) ListAccounts(ctx context.Context, filter domain.AccountFilter, page domain.PageRequest) ([]domain.Account, int64, error) {
	where := &whereClause{}
	if filter.IBAN != nil {
		where.add("iban LIKE ?", containsPattern(*filter.IBAN))
	}
	if filter.BICSwift != nil {
		where.add("bic_swift LIKE ?", containsPattern(*filter.BICSwift))
	}

	total, err := countRows(ctx, r.db, "accounts", where)
	if err != nil {
		return nil, 0, err
	}

	suffix, args := where.paginate(page.Size, page.Offset())
	rows, err := r.db.Query(ctx, "SELECT "+accountColumns+" FROM accounts"+where.String()+" ORDER BY id"+suffix, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, total, nil
}

// GetAccount retrieves an account by id.
func (r *PostgresAccountRepository) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.AccountNotFound(id)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

// CreateAccount inserts a new account record into the database.
func (r *PostgresAccountRepository) CreateAccount(ctx context.Context, fields domain.AccountFields) (*domain.Account, error) {
	query := `
        INSERT INTO accounts (customer_id, iban, bic_swift)
        VALUES ($1, $2, $3)
        RETURNING ` + accountColumns
	a, err := scanAccount(r.db.QueryRow(ctx, query, fields.CustomerID, fields.IBAN, fields.BICSwift))
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return a, nil
}

// UpdateAccount replaces every settable field of an existing account.
func (r *PostgresAccountRepository) UpdateAccount(ctx context.Context, id int64, fields domain.AccountFields) (*domain.Account, error) {
	var updated *domain.Account
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		current, err := scanAccount(tx.QueryRow(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = $1 FOR UPDATE", id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.AccountNotFound(id)
			}
			return fmt.Errorf("failed to lock account: %w", err)
		}

		fields.Apply(current)
		_, err = tx.Exec(ctx,
			"UPDATE accounts SET customer_id = $1, iban = $2, bic_swift = $3 WHERE id = $4",
			current.CustomerID, current.IBAN, current.BICSwift, id)
		if err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteAccount removes an account record.
func (r *PostgresAccountRepository) DeleteAccount(ctx context.Context, id int64) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		return deleteLocked(ctx, tx, "accounts", id, domain.AccountNotFound)
	})
}
