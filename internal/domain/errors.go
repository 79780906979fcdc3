/**
 * @description
 * This file defines the error taxonomy shared by every service. Components return
 * (or wrap) these sentinels so the HTTP boundary can classify failures with
 * errors.Is / errors.As without inspecting message text.
 */
package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when an entity id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned for malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrCardLimitExceeded is returned when an account already holds the maximum number of cards.
	ErrCardLimitExceeded = errors.New("card limit exceeded")
	// ErrDuplicateCardType is returned when an account already holds a card of the requested type.
	ErrDuplicateCardType = errors.New("duplicate card type")
	// ErrEnrichmentUnavailable marks a failed card lookup. It never leaves the account service.
	ErrEnrichmentUnavailable = errors.New("card enrichment unavailable")
)

var (
	ErrCustomerNotFound = fmt.Errorf("%w: customer", ErrNotFound)
	ErrAccountNotFound  = fmt.Errorf("%w: account", ErrNotFound)
	ErrCardNotFound     = fmt.Errorf("%w: card", ErrNotFound)
)

// NotFoundError carries the missing id so callers can render "X not found with id: N".
type NotFoundError struct {
	Entity  string
	ID      int64
	Message string
	kind    error
}

// NewNotFoundError builds a NotFoundError that unwraps to the entity-specific sentinel.
func NewNotFoundError(kind error, entity string, id int64) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id, kind: kind}
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s not found with id: %d", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	if e.kind == nil {
		return ErrNotFound
	}
	return e.kind
}

// CustomerNotFound returns the not-found error for a customer id.
func CustomerNotFound(id int64) error {
	return NewNotFoundError(ErrCustomerNotFound, "Customer", id)
}

// AccountNotFound returns the not-found error for an account id.
func AccountNotFound(id int64) error {
	return NewNotFoundError(ErrAccountNotFound, "Account", id)
}

// CardNotFound returns the not-found error for a card id.
func CardNotFound(id int64) error {
	return NewNotFoundError(ErrCardNotFound, "Card", id)
}

// NoCardsForOwner is returned by the by-owner card listing when ownerID holds no cards.
func NoCardsForOwner(ownerID int64) error {
	err := NewNotFoundError(ErrCardNotFound, "Card", ownerID)
	err.Message = fmt.Sprintf("No cards found for owner with id: %d", ownerID)
	return err
}

// ValidationError holds field-level validation messages keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
