/**
 * @description
 * This file defines the Customer model and the optional filters used to query it.
 *
 * @notes
 * - Customer updates are partial merges: only fields set on CustomerPatch overwrite
 *   the stored values.
 */
package domain

import (
	"strings"
	"time"
)

// Customer represents a bank customer as stored by the customer-service.
type Customer struct {
	ID        int64
	FirstName string
	LastName  string
	OtherName *string
	CreatedAt time.Time
}

// FullName is the value the name filter matches against.
func (c Customer) FullName() string {
	other := ""
	if c.OtherName != nil {
		other = *c.OtherName
	}
	return c.FirstName + " " + c.LastName + " " + other
}

// CustomerFilter holds the optional list predicates. Nil fields constrain nothing.
type CustomerFilter struct {
	Name      *string
	StartDate *time.Time
	EndDate   *time.Time
}

// Matches reports whether c satisfies every set predicate.
func (f CustomerFilter) Matches(c Customer) bool {
	if f.Name != nil && !strings.Contains(c.FullName(), *f.Name) {
		return false
	}
	if f.StartDate != nil && c.CreatedAt.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && c.CreatedAt.After(*f.EndDate) {
		return false
	}
	return true
}

// CustomerPatch is a partial update. Nil fields keep the stored value.
type CustomerPatch struct {
	FirstName *string
	LastName  *string
	OtherName *string
}

// Apply merges the patch into c.
func (p CustomerPatch) Apply(c *Customer) {
	if p.FirstName != nil {
		c.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		c.LastName = *p.LastName
	}
	if p.OtherName != nil {
		other := *p.OtherName
		c.OtherName = &other
	}
}
