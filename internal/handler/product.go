package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avdev/sales-order-api/internal/domain/product"
)

type createProductRequest struct {
	Code            string          `json:"code" binding:"required"`
	Description     string          `json:"description" binding:"required"`
	Category        string          `json:"category" binding:"required"`
	Image           string          `json:"image"`
	Price           decimal.Decimal `json:"price" binding:"required"`
	QuantityInStock int             `json:"quantityInStock"`
}

type productResponse struct {
	ID              string  `json:"id"`
	Code            string  `json:"code"`
	Description     string  `json:"description"`
	Category        string  `json:"category"`
	Image           string  `json:"image"`
	Price           float64 `json:"price"`
	QuantityInStock int     `json:"quantityInStock"`
}

func toProductResponse(p product.Product) productResponse {
	return productResponse{
		ID:              p.ID.String(),
		Code:            p.Code,
		Description:     p.Description,
		Category:        p.Category,
		Image:           p.Image,
		Price:           p.Price.InexactFloat64(),
		QuantityInStock: p.QuantityInStock,
	}
}

// CreateProduct adds a catalog item. Code and description must be unique;
// the code is pre-checked here and both are backed by database constraints.
func (h *Handler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	p := product.Product{
		ID:              uuid.New(),
		Code:            req.Code,
		Description:     req.Description,
		Category:        req.Category,
		Image:           req.Image,
		Price:           req.Price,
		QuantityInStock: req.QuantityInStock,
	}
	if err := product.Validate(&p); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()

	if _, err := h.products.GetByCode(ctx, p.Code); err == nil {
		respondError(c, http.StatusConflict, "product code already in use")
		return
	} else if !errors.Is(err, product.ErrNotFound) {
		respondInternal(c, err)
		return
	}

	if err := h.products.Create(ctx, &p); err != nil {
		if errors.Is(err, product.ErrAlreadyExists) {
			respondError(c, http.StatusConflict, "product already exists")
			return
		}
		respondInternal(c, err)
		return
	}

	c.JSON(http.StatusCreated, toProductResponse(p))
}

// GetProduct returns a single product by ID.
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid product id")
		return
	}

	p, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(c, http.StatusNotFound, "product not found")
			return
		}
		respondInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, toProductResponse(*p))
}

// GetProductByCode returns a single product by its unique code.
func (h *Handler) GetProductByCode(c *gin.Context) {
	p, err := h.products.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(c, http.StatusNotFound, "product not found")
			return
		}
		respondInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, toProductResponse(*p))
}

// ListProducts returns the catalog, optionally filtered by a description
// fragment via the description query parameter.
func (h *Handler) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		products []product.Product
		err      error
	)
	if term := c.Query("description"); term != "" {
		products, err = h.products.SearchByDescription(ctx, term)
	} else {
		products, err = h.products.List(ctx)
	}
	if err != nil {
		respondInternal(c, err)
		return
	}

	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p)
	}
	c.JSON(http.StatusOK, out)
}

// DeleteProduct removes a product by its unique code.
func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), c.Param("code")); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondError(c, http.StatusNotFound, "product not found")
			return
		}
		respondInternal(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
