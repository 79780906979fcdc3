/**
 * @description
 * This file defines the request payloads accepted by the three services and the
 * validation that runs before any service method is called.
 *
 * @dependencies
 * - github.com/go-playground/validator/v10: struct tag validation. Field names in
 *   error messages are the JSON names clients send.
 */
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rabiot125/Banking-Microservice/internal/domain"
)

const maxBodyBytes = 1 << 20

// Global validator instance for reuse
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Messages for specific field/tag pairs. Anything else gets a generic message.
var fieldMessages = map[string]string{
	"firstName.required":  "First Name is mandatory",
	"lastName.required":   "Last Name is mandatory",
	"customerId.required": "Customer id is mandatory",
	"iban.required":       "IBAN is mandatory",
	"bicSwift.required":   "BIC/SWIFT is mandatory",
	"accountId.required":  "Account id is mandatory",
	"type.required":       "Card type is mandatory",
	"pan.required":        "PAN is mandatory",
	"cvv.required":        "CVV is mandatory",
}

func tagMessage(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return "is mandatory"
	case "numeric":
		return "must contain only digits"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return "is invalid"
	}
}

// validateRequest runs the struct tags on v and reports failures per JSON field.
func validateRequest(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &domain.ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		if _, seen := out.Fields[fe.Field()]; !seen {
			out.Fields[fe.Field()] = tagMessage(fe)
		}
	}
	return out
}

// decodeJSON decodes the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.NewValidationError("body", "Invalid request body")
	}
	return nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}

// CreateCustomerRequest defines the expected JSON body for creating a customer.
type CreateCustomerRequest struct {
	FirstName string  `json:"firstName" validate:"required,max=100"`
	LastName  string  `json:"lastName" validate:"required,max=100"`
	OtherName *string `json:"otherName" validate:"omitempty,max=100"`
}

func (req *CreateCustomerRequest) normalize() {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.OtherName = trimPtr(req.OtherName)
}

// UpdateCustomerRequest is a partial update. Omitted fields are left alone.
type UpdateCustomerRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
	OtherName *string `json:"otherName" validate:"omitempty,max=100"`
}

func (req *UpdateCustomerRequest) normalize() {
	req.FirstName = trimPtr(req.FirstName)
	req.LastName = trimPtr(req.LastName)
	req.OtherName = trimPtr(req.OtherName)
}

// check rejects names that are present but blank.
func (req *UpdateCustomerRequest) check() error {
	if req.FirstName != nil && *req.FirstName == "" {
		return domain.NewValidationError("firstName", "First Name is mandatory")
	}
	if req.LastName != nil && *req.LastName == "" {
		return domain.NewValidationError("lastName", "Last Name is mandatory")
	}
	return nil
}

// AccountRequest is used for both create and full update.
type AccountRequest struct {
	CustomerID int64  `json:"customerId" validate:"required,gt=0"`
	IBAN       string `json:"iban" validate:"required,max=34"`
	BICSwift   string `json:"bicSwift" validate:"required,max=11"`
}

func (req *AccountRequest) normalize() {
	req.IBAN = strings.TrimSpace(req.IBAN)
	req.BICSwift = strings.TrimSpace(req.BICSwift)
}

func (req AccountRequest) fields() domain.AccountFields {
	return domain.AccountFields{CustomerID: req.CustomerID, IBAN: req.IBAN, BICSwift: req.BICSwift}
}

// CreateCardRequest defines the expected JSON body for issuing a card.
type CreateCardRequest struct {
	CardAlias string `json:"cardAlias" validate:"max=100"`
	AccountID int64  `json:"accountId" validate:"required,gt=0"`
	Type      string `json:"type" validate:"required"`
	PAN       string `json:"pan" validate:"required,numeric,min=4,max=19"`
	CVV       string `json:"cvv" validate:"required,numeric,min=3,max=4"`
}

func (req *CreateCardRequest) normalize() {
	req.Type = strings.TrimSpace(req.Type)
	req.PAN = strings.TrimSpace(req.PAN)
	req.CVV = strings.TrimSpace(req.CVV)
}

type aliasPayload struct {
	CardAlias *string `json:"cardAlias"`
}

// readAlias accepts the new alias as raw text, a JSON string or {"cardAlias": "..."}.
func readAlias(w http.ResponseWriter, r *http.Request) (string, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return "", domain.NewValidationError("body", "Invalid request body")
	}
	raw := strings.TrimSpace(string(body))

	switch {
	case strings.HasPrefix(raw, `"`):
		var alias string
		if err := json.Unmarshal([]byte(raw), &alias); err != nil {
			return "", domain.NewValidationError("body", "Invalid request body")
		}
		return alias, nil
	case strings.HasPrefix(raw, "{"):
		var payload aliasPayload
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return "", domain.NewValidationError("body", "Invalid request body")
		}
		if payload.CardAlias == nil {
			return "", nil
		}
		return *payload.CardAlias, nil
	default:
		return raw, nil
	}
}
