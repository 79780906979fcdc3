package domain

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageTotalPages(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		size  int
		want  int
	}{
		{name: "empty", total: 0, size: 10, want: 0},
		{name: "exact multiple", total: 20, size: 10, want: 2},
		{name: "remainder rounds up", total: 21, size: 10, want: 3},
		{name: "fewer than one page", total: 3, size: 10, want: 1},
		{name: "size one", total: 7, size: 1, want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage[int](nil, PageRequest{Page: 0, Size: tt.size}, tt.total)
			assert.Equal(t, tt.want, p.TotalPages())
			assert.NotNil(t, p.Items)
		})
	}
}

func TestNewPageRequestRejectsOutOfRange(t *testing.T) {
	_, err := NewPageRequest(-1, 10)
	require.ErrorIs(t, err, ErrValidation)

	_, err = NewPageRequest(0, 0)
	require.ErrorIs(t, err, ErrValidation)

	_, err = NewPageRequest(0, MaxPageSize+1)
	require.ErrorIs(t, err, ErrValidation)

	_, err = NewPageRequest(math.MaxInt/10, 10)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "page")

	huge, err := NewPageRequest(math.MaxInt/MaxPageSize-1, MaxPageSize)
	require.NoError(t, err)
	assert.Positive(t, huge.Offset())
	start, end := huge.Window(3)
	assert.Equal(t, 3, start)
	assert.Equal(t, 3, end)

	req, err := NewPageRequest(2, 5)
	require.NoError(t, err)
	assert.Equal(t, 10, req.Offset())
}

func TestPageRequestWindow(t *testing.T) {
	start, end := PageRequest{Page: 1, Size: 4}.Window(6)
	assert.Equal(t, 4, start)
	assert.Equal(t, 6, end)

	start, end = PageRequest{Page: 5, Size: 4}.Window(6)
	assert.Equal(t, 6, start)
	assert.Equal(t, 6, end)
}

func TestCustomerFilterMatches(t *testing.T) {
	other := "Q"
	created := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	c := Customer{FirstName: "John", LastName: "Doe", OtherName: &other, CreatedAt: created}

	name := "n Do"
	before := created.Add(-time.Hour)
	after := created.Add(time.Hour)
	missing := "Jane"

	assert.True(t, CustomerFilter{}.Matches(c))
	assert.True(t, CustomerFilter{Name: &name}.Matches(c))
	assert.False(t, CustomerFilter{Name: &missing}.Matches(c))
	assert.True(t, CustomerFilter{StartDate: &created, EndDate: &created}.Matches(c), "bounds are inclusive")
	assert.False(t, CustomerFilter{StartDate: &after}.Matches(c))
	assert.False(t, CustomerFilter{EndDate: &before}.Matches(c))
}

func TestCustomerPatchApplyOnlyOverwritesSetFields(t *testing.T) {
	c := Customer{ID: 4, FirstName: "John", LastName: "Doe"}
	last := "Smith"
	CustomerPatch{LastName: &last}.Apply(&c)

	assert.Equal(t, "John", c.FirstName)
	assert.Equal(t, "Smith", c.LastName)
	assert.Nil(t, c.OtherName)
}

func TestCardFilterCombinesWithAnd(t *testing.T) {
	card := Card{Alias: "Travel", Type: CardTypeVirtual, PAN: "4111111111111111"}
	alias := "rav"
	virtual := CardTypeVirtual
	physical := CardTypePhysical
	pan := "1111"

	assert.True(t, CardFilter{Alias: &alias, Type: &virtual, PAN: &pan}.Matches(card))
	assert.False(t, CardFilter{Alias: &alias, Type: &physical}.Matches(card))
}

func TestParseCardType(t *testing.T) {
	got, err := ParseCardType(" physical ")
	require.NoError(t, err)
	assert.Equal(t, CardTypePhysical, got)

	_, err = ParseCardType("PLASTIC")
	require.ErrorIs(t, err, ErrValidation)
}

func TestEnrichmentFromLookup(t *testing.T) {
	failed := EnrichmentFromLookup(nil, errors.New("connection refused"))
	assert.Equal(t, CardsUnavailable, failed.Status)
	assert.Nil(t, failed.Cards)
	assert.ErrorIs(t, failed.Err, ErrEnrichmentUnavailable)

	empty := EnrichmentFromLookup(nil, nil)
	assert.Equal(t, CardsEmpty, empty.Status)
	assert.NotNil(t, empty.Cards)
	assert.False(t, empty.HasCards())

	found := EnrichmentFromLookup([]CardSummary{{ID: 1, Alias: "Card1"}}, nil)
	assert.Equal(t, CardsFound, found.Status)
	assert.True(t, found.HasCards())
}

func TestEnrichedAccountHasCardAlias(t *testing.T) {
	acc := EnrichedAccount{Cards: EnrichmentFromLookup([]CardSummary{{Alias: "My Card1"}}, nil)}
	assert.True(t, acc.HasCardAlias("card1"))
	assert.False(t, acc.HasCardAlias("card2"))

	unavailable := EnrichedAccount{Cards: EnrichmentFromLookup(nil, errors.New("timeout"))}
	assert.False(t, unavailable.HasCardAlias(""))
}

func TestNotFoundErrorUnwrapsToEntitySentinel(t *testing.T) {
	err := CardNotFound(42)
	assert.ErrorIs(t, err, ErrCardNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrAccountNotFound)
	assert.Equal(t, "Card not found with id: 42", err.Error())
}
