package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avdev/sales-order-api/internal/domain/customer"
	"github.com/avdev/sales-order-api/internal/domain/sale"
	"github.com/avdev/sales-order-api/internal/notify"
)

type createSaleItemRequest struct {
	ProductCode string          `json:"productCode" binding:"required"`
	Quantity    int             `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unitPrice" binding:"required"`
}

type createSaleRequest struct {
	CustomerID string                  `json:"customerId" binding:"required,uuid"`
	Items      []createSaleItemRequest `json:"items" binding:"required,min=1,dive"`
}

type saleItemResponse struct {
	ProductCode string  `json:"productCode"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

type saleResponse struct {
	ID              string             `json:"id"`
	CustomerID      string             `json:"customerId"`
	SaleDate        time.Time          `json:"saleDate"`
	TotalGrossValue float64            `json:"totalGrossValue"`
	DiscountPercent int64              `json:"discountPercent"`
	TotalNetValue   float64            `json:"totalNetValue"`
	Cancelled       bool               `json:"cancelled"`
	Items           []saleItemResponse `json:"items"`
}

func toSaleResponse(s sale.Sale) saleResponse {
	items := make([]saleItemResponse, len(s.Items))
	for i, it := range s.Items {
		items[i] = saleItemResponse{
			ProductCode: it.ProductCode,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice.InexactFloat64(),
		}
	}
	return saleResponse{
		ID:              s.ID.String(),
		CustomerID:      s.CustomerID.String(),
		SaleDate:        s.SaleDate,
		TotalGrossValue: s.TotalGrossValue.InexactFloat64(),
		DiscountPercent: s.DiscountPercent,
		TotalNetValue:   s.TotalNetValue.InexactFloat64(),
		Cancelled:       s.Cancelled,
		Items:           items,
	}
}

// CreateSale validates references, runs the pricing pipeline, and persists
// the sale. A quantity above the per-product ceiling declines the order with
// 422; nothing is persisted in that case.
func (h *Handler) CreateSale(c *gin.Context) {
	var req createSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid customer id")
		return
	}

	ctx := c.Request.Context()

	// Reference validation happens here; the sale service assumes valid
	// customer and product references.
	if _, err := h.customers.GetByID(ctx, customerID); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			respondError(c, http.StatusUnprocessableEntity, "customer not found")
			return
		}
		respondInternal(c, err)
		return
	}

	codes := make([]string, len(req.Items))
	for i, it := range req.Items {
		codes[i] = it.ProductCode
	}
	known, err := h.products.GetByCodes(ctx, codes)
	if err != nil {
		respondInternal(c, err)
		return
	}
	knownCodes := make(map[string]struct{}, len(known))
	for _, p := range known {
		knownCodes[p.Code] = struct{}{}
	}
	for _, code := range codes {
		if _, ok := knownCodes[code]; !ok {
			respondError(c, http.StatusUnprocessableEntity, "product "+code+" not found")
			return
		}
	}

	items := make([]sale.LineItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = sale.LineItem{
			ProductCode: it.ProductCode,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
	}

	s, err := h.saleService.CreateSale(ctx, customerID, items)
	if err != nil {
		h.respondSaleError(c, err)
		return
	}

	h.bus.SaleCreated(ctx, notify.SaleCreated{Sale: s})

	c.JSON(http.StatusCreated, toSaleResponse(*s))
}

// respondSaleError maps pricing-pipeline errors to HTTP responses.
func (h *Handler) respondSaleError(c *gin.Context, err error) {
	if errors.Is(err, sale.ErrQuantityLimitExceeded) {
		// Declined order, not a fault: no error logging.
		respondError(c, http.StatusUnprocessableEntity, "quantity limit exceeded: at most 20 units per product")
		return
	}
	if errors.Is(err, sale.ErrEmptyItems) {
		respondError(c, http.StatusBadRequest, "items required")
		return
	}

	var iliErr *sale.InvalidLineItemError
	if errors.As(err, &iliErr) {
		respondError(c, http.StatusBadRequest, iliErr.Error())
		return
	}

	respondInternal(c, err)
}

// GetSale returns a sale with its items.
func (h *Handler) GetSale(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid sale id")
		return
	}

	s, err := h.sales.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, sale.ErrNotFound) {
			respondError(c, http.StatusNotFound, "sale not found")
			return
		}
		respondInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, toSaleResponse(*s))
}

// ListSales returns all sale headers, newest first.
func (h *Handler) ListSales(c *gin.Context) {
	sales, err := h.sales.List(c.Request.Context())
	if err != nil {
		respondInternal(c, err)
		return
	}

	out := make([]saleResponse, len(sales))
	for i, s := range sales {
		out[i] = toSaleResponse(s)
	}
	c.JSON(http.StatusOK, out)
}

// DeleteSale removes a sale and its items.
func (h *Handler) DeleteSale(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid sale id")
		return
	}

	if err := h.sales.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, sale.ErrNotFound) {
			respondError(c, http.StatusNotFound, "sale not found")
			return
		}
		respondInternal(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CancelSale marks a sale as cancelled without removing it.
func (h *Handler) CancelSale(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid sale id")
		return
	}

	if err := h.sales.SetCancelled(c.Request.Context(), id, true); err != nil {
		if errors.Is(err, sale.ErrNotFound) {
			respondError(c, http.StatusNotFound, "sale not found")
			return
		}
		respondInternal(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
