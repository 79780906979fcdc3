// Package presenter renders cards for API responses, masking sensitive fields
// unless the caller asked for the raw values.
package presenter

import "github.com/rabiot125/Banking-Microservice/internal/domain"

const (
	panMaskPrefix = "****-****-****-"
	cvvMask       = "***"
	visiblePANLen = 4
)

// CardView is the JSON shape of a card returned by the card-service.
type CardView struct {
	ID        int64           `json:"id"`
	CardAlias string          `json:"cardAlias"`
	AccountID int64           `json:"accountId"`
	Type      domain.CardType `json:"type"`
	PAN       string          `json:"pan"`
	CVV       string          `json:"cvv"`
}

// Present renders card. With showUnmasked false only the last four PAN
// characters survive and the CVV is replaced. A PAN shorter than four
// characters is returned as stored either way.
func Present(card domain.Card, showUnmasked bool) CardView {
	view := CardView{
		ID:        card.ID,
		CardAlias: card.Alias,
		AccountID: card.AccountID,
		Type:      card.Type,
		PAN:       card.PAN,
		CVV:       card.CVV,
	}
	if showUnmasked {
		return view
	}
	view.PAN = MaskPAN(card.PAN)
	view.CVV = cvvMask
	return view
}

// PresentAll renders every card with the same visibility.
func PresentAll(cards []domain.Card, showUnmasked bool) []CardView {
	views := make([]CardView, 0, len(cards))
	for _, c := range cards {
		views = append(views, Present(c, showUnmasked))
	}
	return views
}

// MaskPAN keeps the last four characters of pan behind a fixed mask.
func MaskPAN(pan string) string {
	if len(pan) < visiblePANLen {
		return pan
	}
	return panMaskPrefix + pan[len(pan)-visiblePANLen:]
}
