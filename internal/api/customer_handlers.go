/**
 * @description
 * This file defines the HTTP handlers for the customer-service's API endpoints.
 * Handlers are responsible for parsing requests, calling the appropriate service
 * method, and writing the response.
 */
package api

import (
	"net/http"
	"time"

	"github.com/rabiot125/Banking-Microservice/internal/app"
	"github.com/rabiot125/Banking-Microservice/internal/domain"
	"github.com/rabiot125/Banking-Microservice/internal/logger"
)

// CustomerResponse is the JSON shape of a customer.
type CustomerResponse struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	OtherName *string   `json:"otherName"`
	CreatedAt time.Time `json:"createdAt"`
}

// CustomerListResponse is one page of customers.
type CustomerListResponse struct {
	Customers  []CustomerResponse `json:"customers"`
	Page       int                `json:"page"`
	Size       int                `json:"size"`
	TotalItems int64              `json:"totalItems"`
	TotalPages int                `json:"totalPages"`
}

func toCustomerResponse(c domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		OtherName: c.OtherName,
		CreatedAt: c.CreatedAt,
	}
}

// CustomerHandler holds the dependencies for customer-related handlers.
type CustomerHandler struct {
	service *app.CustomerService
	log     *logger.Logger
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(service *app.CustomerService, log *logger.Logger) *CustomerHandler {
	return &CustomerHandler{service: service, log: log}
}

// ListCustomers handles GET /api/customers.
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	startDate, err := optionalTimeQuery(r, "startDate", false)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	endDate, err := optionalTimeQuery(r, "endDate", true)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	filter := domain.CustomerFilter{
		Name:      optionalQuery(r, "name"),
		StartDate: startDate,
		EndDate:   endDate,
	}
	result, err := h.service.ListCustomers(r.Context(), filter, page)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	customers := make([]CustomerResponse, 0, len(result.Items))
	for _, c := range result.Items {
		customers = append(customers, toCustomerResponse(c))
	}
	writeJSON(w, http.StatusOK, CustomerListResponse{
		Customers:  customers,
		Page:       result.Number,
		Size:       result.Size,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages(),
	})
}

// GetCustomer handles GET /api/customers/{id}.
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	customer, err := h.service.GetCustomer(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerResponse(*customer))
}

// CreateCustomer handles POST /api/customers.
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	req.normalize()
	if err := validateRequest(&req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	customer, err := h.service.CreateCustomer(r.Context(), app.CreateCustomerInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		OtherName: req.OtherName,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerResponse(*customer))
}

// UpdateCustomer handles PUT /api/customers/{id}.
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req UpdateCustomerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	req.normalize()
	if err := validateRequest(&req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := req.check(); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	customer, err := h.service.UpdateCustomer(r.Context(), id, domain.CustomerPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		OtherName: req.OtherName,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerResponse(*customer))
}

// DeleteCustomer handles DELETE /api/customers/{id}.
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.service.DeleteCustomer(r.Context(), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
