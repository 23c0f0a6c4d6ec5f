// Package handler exposes the HTTP surface of the sales-order API.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/avdev/sales-order-api/internal/domain/customer"
	"github.com/avdev/sales-order-api/internal/domain/product"
	"github.com/avdev/sales-order-api/internal/domain/sale"
	"github.com/avdev/sales-order-api/internal/notify"
)

// Handler binds the HTTP routes to the domain repositories and the sale
// service.
type Handler struct {
	customers   customer.Repository
	products    product.Repository
	sales       sale.Repository
	saleService *sale.Service
	bus         notify.Bus
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	customers customer.Repository,
	products product.Repository,
	sales sale.Repository,
	saleService *sale.Service,
	bus notify.Bus,
) *Handler {
	return &Handler{
		customers:   customers,
		products:    products,
		sales:       sales,
		saleService: saleService,
		bus:         bus,
	}
}

// RegisterRoutes registers all API routes on the given group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	customers := r.Group("/customers")
	{
		customers.POST("", h.CreateCustomer)
		customers.GET("", h.ListCustomers)
		customers.GET("/search", h.SearchCustomers)
		customers.GET("/:id", h.GetCustomer)
		customers.DELETE("/:id", h.DeleteCustomer)
	}

	products := r.Group("/products")
	{
		products.POST("", h.CreateProduct)
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
		products.GET("/code/:code", h.GetProductByCode)
		products.DELETE("/code/:code", h.DeleteProduct)
	}

	sales := r.Group("/sales")
	{
		sales.POST("", h.CreateSale)
		sales.GET("", h.ListSales)
		sales.GET("/:id", h.GetSale)
		sales.DELETE("/:id", h.DeleteSale)
		sales.POST("/:id/cancel", h.CancelSale)
	}
}

// errorResponse is the JSON body of every non-2xx response.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, errorResponse{Code: status, Message: message})
}

// respondInternal logs the error and responds with a generic 500. Business
// outcomes never go through here.
func respondInternal(c *gin.Context, err error) {
	zctx.From(c.Request.Context()).Error("request failed", zap.Error(err))
	respondError(c, http.StatusInternalServerError, "internal server error")
}
