package model

import (
	"strconv"
	"time"

	"github.com/RoyceAzure/lab/cartorder/internal/domain/model"
	"github.com/shopspring/decimal"
)

type OrderPlacedItem struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	PriceAtTime decimal.Decimal `json:"price_at_time"`
}

// OrderPlacedEvent 訂單交易 commit 之後才發送
type OrderPlacedEvent struct {
	BaseEvent
	OrderID    int64             `json:"order_id"`
	OrderCode  string            `json:"order_code"`
	CustomerID int64             `json:"customer_id"`
	TotalPrice decimal.Decimal   `json:"total_price"`
	Items      []OrderPlacedItem `json:"items"`
	PlacedAt   time.Time         `json:"placed_at"`
}

func NewOrderPlacedEvent(order *model.Order) *OrderPlacedEvent {
	items := make([]OrderPlacedItem, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderPlacedItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			PriceAtTime: item.PriceAtTime,
		}
	}
	return &OrderPlacedEvent{
		BaseEvent:  newBaseEvent(order.Code, OrderPlacedEventName),
		OrderID:    order.ID,
		OrderCode:  order.Code,
		CustomerID: order.CustomerID,
		TotalPrice: order.TotalPrice,
		Items:      items,
		PlacedAt:   order.CreatedAt,
	}
}

func (e *OrderPlacedEvent) Type() EventType {
	return OrderPlacedEventName
}

type ProductDeletedEvent struct {
	BaseEvent
	ProductID int64 `json:"product_id"`
}

func NewProductDeletedEvent(productID int64) *ProductDeletedEvent {
	return &ProductDeletedEvent{
		BaseEvent: newBaseEvent(strconv.FormatInt(productID, 10), ProductDeletedEventName),
		ProductID: productID,
	}
}

func (e *ProductDeletedEvent) Type() EventType {
	return ProductDeletedEventName
}
