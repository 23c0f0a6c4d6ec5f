package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/avdev/sales-order-api/internal/domain/customer"
)

type createCustomerRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
	Email string `json:"email" binding:"required"`
}

type customerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

func toCustomerResponse(c customer.Customer) customerResponse {
	return customerResponse{
		ID:    c.ID.String(),
		Name:  c.Name,
		Phone: c.Phone,
		Email: c.Email,
	}
}

// CreateCustomer registers a new customer. Name and email must be unique;
// both are pre-checked here and backed by database constraints.
func (h *Handler) CreateCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	cust := customer.Customer{
		ID:    uuid.New(),
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
	}
	if err := customer.Validate(&cust); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()

	if _, err := h.customers.GetByEmail(ctx, cust.Email); err == nil {
		respondError(c, http.StatusConflict, "email already in use")
		return
	} else if !errors.Is(err, customer.ErrNotFound) {
		respondInternal(c, err)
		return
	}

	if _, err := h.customers.GetByName(ctx, cust.Name); err == nil {
		respondError(c, http.StatusConflict, "name already in use")
		return
	} else if !errors.Is(err, customer.ErrNotFound) {
		respondInternal(c, err)
		return
	}

	if err := h.customers.Create(ctx, &cust); err != nil {
		if errors.Is(err, customer.ErrAlreadyExists) {
			respondError(c, http.StatusConflict, "customer already exists")
			return
		}
		respondInternal(c, err)
		return
	}

	c.JSON(http.StatusCreated, toCustomerResponse(cust))
}

// GetCustomer returns a single customer by ID.
func (h *Handler) GetCustomer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid customer id")
		return
	}

	cust, err := h.customers.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			respondError(c, http.StatusNotFound, "customer not found")
			return
		}
		respondInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, toCustomerResponse(*cust))
}

// ListCustomers returns all customers.
func (h *Handler) ListCustomers(c *gin.Context) {
	customers, err := h.customers.List(c.Request.Context())
	if err != nil {
		respondInternal(c, err)
		return
	}

	out := make([]customerResponse, len(customers))
	for i, cust := range customers {
		out[i] = toCustomerResponse(cust)
	}
	c.JSON(http.StatusOK, out)
}

// SearchCustomers finds a customer by exact name, partial name, or email,
// checked in that order of query parameters.
func (h *Handler) SearchCustomers(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		cust *customer.Customer
		err  error
	)
	switch {
	case c.Query("name") != "":
		cust, err = h.customers.GetByName(ctx, c.Query("name"))
	case c.Query("partial") != "":
		cust, err = h.customers.GetByPartialName(ctx, c.Query("partial"))
	case c.Query("email") != "":
		cust, err = h.customers.GetByEmail(ctx, c.Query("email"))
	default:
		respondError(c, http.StatusBadRequest, "one of name, partial or email is required")
		return
	}

	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			respondError(c, http.StatusNotFound, "customer not found")
			return
		}
		respondInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, toCustomerResponse(*cust))
}

// DeleteCustomer removes a customer by ID.
func (h *Handler) DeleteCustomer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid customer id")
		return
	}

	if err := h.customers.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			respondError(c, http.StatusNotFound, "customer not found")
			return
		}
		respondInternal(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
