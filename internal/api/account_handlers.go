package api

import (
	"net/http"

	"github.com/rabiot125/Banking-Microservice/internal/app"
	"github.com/rabiot125/Banking-Microservice/internal/domain"
	"github.com/rabiot125/Banking-Microservice/internal/logger"
)

// CardInfo is a card as embedded in an account view. PAN is masked upstream.
type CardInfo struct {
	CardID    int64           `json:"cardId"`
	CardAlias string          `json:"cardAlias"`
	Type      domain.CardType `json:"type"`
	PAN       string          `json:"pan"`
}

// AccountResponse is the enriched JSON shape of an account. Cards is null when
// the card lookup failed and an empty array when the owner holds none.
type AccountResponse struct {
	ID         int64      `json:"id"`
	CustomerID int64      `json:"customerId"`
	IBAN       string     `json:"iban"`
	BICSwift   string     `json:"bicSwift"`
	Cards      []CardInfo `json:"cards"`
}

// AccountListResponse is one page of enriched accounts.
type AccountListResponse struct {
	Accounts   []AccountResponse `json:"accounts"`
	Page       int               `json:"page"`
	Size       int               `json:"size"`
	TotalItems int64             `json:"totalItems"`
	TotalPages int               `json:"totalPages"`
}

func toAccountResponse(a domain.EnrichedAccount) AccountResponse {
	resp := AccountResponse{
		ID:         a.ID,
		CustomerID: a.CustomerID,
		IBAN:       a.IBAN,
		BICSwift:   a.BICSwift,
	}
	if a.Cards.Status == domain.CardsUnavailable {
		return resp
	}
	resp.Cards = make([]CardInfo, 0, len(a.Cards.Cards))
	for _, c := range a.Cards.Cards {
		resp.Cards = append(resp.Cards, CardInfo{CardID: c.ID, CardAlias: c.Alias, Type: c.Type, PAN: c.PAN})
	}
	return resp
}

// AccountHandler holds the dependencies for account-related handlers.
type AccountHandler struct {
	service *app.AccountService
	log     *logger.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(service *app.AccountService, log *logger.Logger) *AccountHandler {
	return &AccountHandler{service: service, log: log}
}

// ListAccounts handles GET /api/accounts.
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	result, err := h.service.FindAccounts(r.Context(), app.AccountQuery{
		Filter: domain.AccountFilter{
			IBAN:     optionalQuery(r, "iban"),
			BICSwift: optionalQuery(r, "bicSwift"),
		},
		CardAlias: optionalQuery(r, "cardAlias"),
		Page:      page,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	accounts := make([]AccountResponse, 0, len(result.Items))
	for _, a := range result.Items {
		accounts = append(accounts, toAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, AccountListResponse{
		Accounts:   accounts,
		Page:       result.Number,
		Size:       result.Size,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages(),
	})
}

// GetAccount handles GET /api/accounts/{id}.
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	account, err := h.service.FindAccount(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(*account))
}

// CreateAccount handles POST /api/accounts.
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeAccount(w, r)
	if !ok {
		return
	}
	account, err := h.service.CreateAccount(r.Context(), req.fields())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountResponse(*account))
}

// UpdateAccount handles PUT /api/accounts/{id}.
func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	req, ok := h.decodeAccount(w, r)
	if !ok {
		return
	}
	account, err := h.service.UpdateAccount(r.Context(), id, req.fields())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(*account))
}

// DeleteAccount handles DELETE /api/accounts/{id}.
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.service.DeleteAccount(r.Context(), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandler) decodeAccount(w http.ResponseWriter, r *http.Request) (AccountRequest, bool) {
	var req AccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return req, false
	}
	req.normalize()
	if err := validateRequest(&req); err != nil {
		writeError(w, r, h.log, err)
		return req, false
	}
	return req, true
}
