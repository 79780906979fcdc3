package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rabiot125/Banking-Microservice/internal/domain"
)

// Layouts accepted for customer date filters. Values without a zone are UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

const dateOnlyLayout = "2006-01-02"

func parseOptionalPositiveInt(raw string, defaultValue int) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, errors.New("must be >= 0")
	}
	return value, nil
}

// pathID reads the {id} URL parameter.
func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}

// pageFromQuery reads page and size, defaulting to the first page of ten.
func pageFromQuery(r *http.Request) (domain.PageRequest, error) {
	q := r.URL.Query()
	page, err := parseOptionalPositiveInt(q.Get("page"), domain.DefaultPage)
	if err != nil {
		return domain.PageRequest{}, domain.NewValidationError("page", "must be greater than or equal to 0")
	}
	size, err := parseOptionalPositiveInt(q.Get("size"), domain.DefaultPageSize)
	if err != nil {
		return domain.PageRequest{}, domain.NewValidationError("size", "must be between 1 and 100")
	}
	return domain.NewPageRequest(page, size)
}

// optionalQuery returns nil when the parameter is absent or blank.
func optionalQuery(r *http.Request, key string) *string {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return nil
	}
	return &value
}

// optionalTimeQuery parses a date filter. A bare date means the start of that
// day, or its last instant when endOfDay is set, so both bounds stay inclusive.
func optionalTimeQuery(r *http.Request, key string, endOfDay bool) (*time.Time, error) {
	raw := optionalQuery(r, key)
	if raw == nil {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, *raw, time.UTC); err == nil {
			return &t, nil
		}
	}
	if t, err := time.ParseInLocation(dateOnlyLayout, *raw, time.UTC); err == nil {
		if endOfDay {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		return &t, nil
	}
	return nil, domain.NewValidationError(key, "must be an ISO-8601 date or date-time")
}

func boolQuery(r *http.Request, key string) (bool, error) {
	raw := optionalQuery(r, key)
	if raw == nil {
		return false, nil
	}
	value, err := strconv.ParseBool(*raw)
	if err != nil {
		return false, domain.NewValidationError(key, "must be true or false")
	}
	return value, nil
}
