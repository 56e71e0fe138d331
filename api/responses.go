package api

import (
	"time"

	"github.com/shopspring/decimal"

	"order_fulfillment/domain/inventory"
	"order_fulfillment/domain/order"
	"order_fulfillment/domain/shared"
)

// ProductResponse is the wire shape of a product ledger.
type ProductResponse struct {
	ID               string    `json:"id"`
	SKU              string    `json:"sku"`
	Name             string    `json:"name"`
	StockQuantity    int       `json:"stock_quantity"`
	ReservedQuantity int       `json:"reserved_quantity"`
	AvailableStock   int       `json:"available_stock"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toProductResponse(p *inventory.Product) ProductResponse {
	return ProductResponse{
		ID:               p.ID,
		SKU:              p.SKU,
		Name:             p.Name,
		StockQuantity:    p.StockQuantity,
		ReservedQuantity: p.ReservedQuantity,
		AvailableStock:   p.AvailableStock(),
		Status:           string(p.Status),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// OrderItemResponse is one order line on the wire.
type OrderItemResponse struct {
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Currency  string          `json:"currency"`
}

// OrderResponse is the wire shape of an order.
type OrderResponse struct {
	ID                 string              `json:"id"`
	CustomerID         string              `json:"customer_id"`
	Items              []OrderItemResponse `json:"items"`
	ShippingAddress    shared.Address      `json:"shipping_address"`
	TotalAmount        decimal.Decimal     `json:"total_amount"`
	Currency           string              `json:"currency"`
	Status             string              `json:"status"`
	PaymentID          string              `json:"payment_id,omitempty"`
	ShipmentID         string              `json:"shipment_id,omitempty"`
	CancellationReason string              `json:"cancellation_reason,omitempty"`
	RejectionReason    string              `json:"rejection_reason,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

func toOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.Amount,
			Currency:  item.UnitPrice.Currency,
		})
	}
	return OrderResponse{
		ID:                 o.ID,
		CustomerID:         o.CustomerID,
		Items:              items,
		ShippingAddress:    o.ShippingAddress,
		TotalAmount:        o.TotalAmount.Amount,
		Currency:           o.TotalAmount.Currency,
		Status:             string(o.Status),
		PaymentID:          o.PaymentID,
		ShipmentID:         o.ShipmentID,
		CancellationReason: o.CancellationReason,
		RejectionReason:    o.RejectionReason,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}
