// Package notify publishes fire-and-forget domain notifications. The bus is
// a plain notification channel, not a durable log: delivery failures are
// logged and dropped, never surfaced to the request that triggered them.
package notify

import (
	"context"
	"time"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/avdev/sales-order-api/internal/domain/sale"
)

// SaleCreated is emitted after a sale has been committed.
type SaleCreated struct {
	Sale *sale.Sale
}

// Bus publishes notifications to interested consumers.
type Bus interface {
	SaleCreated(ctx context.Context, ev SaleCreated)
}

// LogBus writes notifications to the request-scoped structured log. It
// stands in for an external message broker.
type LogBus struct{}

// NewLogBus creates a LogBus.
func NewLogBus() *LogBus {
	return &LogBus{}
}

// SaleCreated logs the sale-created event with its JSON payload.
func (b *LogBus) SaleCreated(ctx context.Context, ev SaleCreated) {
	zctx.From(ctx).Info("sale created",
		zap.String("event", "sale.created"),
		zap.String("payload", encodeSaleCreated(ev)),
	)
}

func encodeSaleCreated(ev SaleCreated) string {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("saleId", func(e *jx.Encoder) { e.Str(ev.Sale.ID.String()) })
		e.Field("customerId", func(e *jx.Encoder) { e.Str(ev.Sale.CustomerID.String()) })
		e.Field("saleDate", func(e *jx.Encoder) { e.Str(ev.Sale.SaleDate.Format(time.RFC3339)) })
		e.Field("totalGrossValue", func(e *jx.Encoder) { e.Str(ev.Sale.TotalGrossValue.String()) })
		e.Field("discountPercent", func(e *jx.Encoder) { e.Int64(ev.Sale.DiscountPercent) })
		e.Field("totalNetValue", func(e *jx.Encoder) { e.Str(ev.Sale.TotalNetValue.String()) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, it := range ev.Sale.Items {
					e.Obj(func(e *jx.Encoder) {
						e.Field("productCode", func(e *jx.Encoder) { e.Str(it.ProductCode) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
						e.Field("unitPrice", func(e *jx.Encoder) { e.Str(it.UnitPrice.String()) })
					})
				}
			})
		})
	})
	return e.String()
}
