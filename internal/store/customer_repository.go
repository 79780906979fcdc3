/**
 * @description
 * This file implements the data access layer for customers on PostgreSQL.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5/pgxpool: The PostgreSQL driver.
 * - The internal domain package for the Customer model and filters.
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

const customerColumns = "id, first_name, last_name, other_name, created_at"

// PostgresCustomerRepository is the PostgreSQL implementation of the CustomerRepository.
type PostgresCustomerRepository struct {
	db *pgxpool.Pool
}

// NewPostgresCustomerRepository creates a new instance of PostgresCustomerRepository.
func NewPostgresCustomerRepository(db *pgxpool.Pool) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{db: db}
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.OtherName, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func customerWhere(filter domain.CustomerFilter) *whereClause {
	w := &whereClause{}
	if filter.Name != nil {
		w.add("(first_name || ' ' || last_name || ' ' || COALESCE(other_name, '')) LIKE ?", containsPattern(*filter.Name))
	}
	if filter.StartDate != nil {
		w.add("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		w.add("created_at <= ?", *filter.EndDate)
	}
	return w
}

// ListCustomers returns one page of customers matching filter and the filtered total.
func (r *PostgresCustomerRepository) ListCustomers(ctx context.Context, filter domain.CustomerFilter, page domain.PageRequest) ([]domain.Customer, int64, error) {
	where := customerWhere(filter)
	total, err := countRows(ctx, r.db, "customers", where)
	if err != nil {
		return nil, 0, err
	}

	suffix, args := where.paginate(page.Size, page.Offset())
	rows, err := r.db.Query(ctx, "SELECT "+customerColumns+" FROM customers"+where.String()+" ORDER BY id"+suffix, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	customers := []domain.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan customer row: %w", err)
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate customers: %w", err)
	}
	return customers, total, nil
}

// GetCustomer retrieves a customer by id.
func (r *PostgresCustomerRepository) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	c, err := scanCustomer(r.db.QueryRow(ctx, "SELECT "+customerColumns+" FROM customers WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.CustomerNotFound(id)
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return c, nil
}

// CreateCustomer inserts a new customer. The database assigns id and created_at.
func (r *PostgresCustomerRepository) CreateCustomer(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	query := `
        INSERT INTO customers (first_name, last_name, other_name)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query, customer.FirstName, customer.LastName, customer.OtherName).
		Scan(&customer.ID, &customer.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, nil
}

// UpdateCustomer merges patch into the stored customer under a row lock.
func (r *PostgresCustomerRepository) UpdateCustomer(ctx context.Context, id int64, patch domain.CustomerPatch) (*domain.Customer, error) {
	var updated *domain.Customer
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		current, err := scanCustomer(tx.QueryRow(ctx, "SELECT "+customerColumns+" FROM customers WHERE id = $1 FOR UPDATE", id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.CustomerNotFound(id)
			}
			return fmt.Errorf("failed to lock customer: %w", err)
		}

		patch.Apply(current)
		_, err = tx.Exec(ctx,
			"UPDATE customers SET first_name = $1, last_name = $2, other_name = $3 WHERE id = $4",
			current.FirstName, current.LastName, current.OtherName, id)
		if err != nil {
			return fmt.Errorf("failed to update customer: %w", err)
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCustomer removes a customer record.
func (r *PostgresCustomerRepository) DeleteCustomer(ctx context.Context, id int64) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		return deleteLocked(ctx, tx, "customers", id, domain.CustomerNotFound)
	})
}

// deleteLocked locks the row, then deletes it, so a concurrent writer cannot
// slip between the existence check and the delete.
func deleteLocked(ctx context.Context, q querier, table string, id int64, notFound func(int64) error) error {
	var lockedID int64
	err := q.QueryRow(ctx, "SELECT id FROM "+table+" WHERE id = $1 FOR UPDATE", id).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound(id)
		}
		return fmt.Errorf("failed to lock %s row: %w", table, err)
	}
	if _, err := q.Exec(ctx, "DELETE FROM "+table+" WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return nil
}
