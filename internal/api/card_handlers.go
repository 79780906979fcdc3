package api

import (
	"net/http"

	"github.com/rabiot125/Banking-Microservice/internal/app"
	"github.com/rabiot125/Banking-Microservice/internal/domain"
	"github.com/rabiot125/Banking-Microservice/internal/logger"
	"github.com/rabiot125/Banking-Microservice/internal/presenter"
)

// CardListResponse is one page of cards.
type CardListResponse struct {
	Cards      []presenter.CardView `json:"cards"`
	Page       int                  `json:"page"`
	Size       int                  `json:"size"`
	TotalItems int64                `json:"totalItems"`
	TotalPages int                  `json:"totalPages"`
}

// CardHandler holds the dependencies for card-related handlers. Every card
// leaves through the presenter.
type CardHandler struct {
	service *app.CardService
	log     *logger.Logger
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(service *app.CardService, log *logger.Logger) *CardHandler {
	return &CardHandler{service: service, log: log}
}

// ListCards handles GET /api/cards.
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	showUnmasked, err := boolQuery(r, "showUnmasked")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	filter := domain.CardFilter{
		Alias: optionalQuery(r, "cardAlias"),
		PAN:   optionalQuery(r, "pan"),
	}
	if raw := optionalQuery(r, "type"); raw != nil {
		cardType, err := domain.ParseCardType(*raw)
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		filter.Type = &cardType
	}

	result, err := h.service.ListCards(r.Context(), filter, page)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, CardListResponse{
		Cards:      presenter.PresentAll(result.Items, showUnmasked),
		Page:       result.Number,
		Size:       result.Size,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages(),
	})
}

// GetCard handles GET /api/cards/{id}.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	showUnmasked, err := boolQuery(r, "showUnmasked")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	card, err := h.service.GetCard(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, presenter.Present(*card, showUnmasked))
}

// ListCardsByOwner handles GET /api/cards/{id}/accounts. This is the endpoint
// the account-service calls during enrichment.
func (h *CardHandler) ListCardsByOwner(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	showUnmasked, err := boolQuery(r, "showUnmasked")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	cards, err := h.service.ListCardsByOwner(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, presenter.PresentAll(cards, showUnmasked))
}

// CreateCard handles POST /api/cards.
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req CreateCardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	req.normalize()
	if err := validateRequest(&req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	cardType, err := domain.ParseCardType(req.Type)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	card, err := h.service.IssueCard(r.Context(), app.IssueCardInput{
		AccountID: req.AccountID,
		Alias:     req.CardAlias,
		Type:      cardType,
		PAN:       req.PAN,
		CVV:       req.CVV,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, presenter.Present(*card, false))
}

// UpdateCardAlias handles PUT /api/cards/{id}/alias.
func (h *CardHandler) UpdateCardAlias(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	alias, err := readAlias(w, r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	card, err := h.service.UpdateAlias(r.Context(), id, alias)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, presenter.Present(*card, false))
}

// DeleteCard handles DELETE /api/cards/{id}.
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.service.DeleteCard(r.Context(), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
