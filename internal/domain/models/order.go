package models

import "time"

// OrderStatus статус заказа
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid проверяет, что статус входит в перечисление.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// DeliveryMethod способ доставки
type DeliveryMethod string

const (
	DeliveryHome   DeliveryMethod = "home"
	DeliveryPickup DeliveryMethod = "pickup"
)

// OrderItem — замороженная копия строки корзины на момент оформления.
// Последующие правки товара не меняют историю заказов.
type OrderItem struct {
	ProductID     string  `json:"product_id"`
	Name          string  `json:"name"`
	Price         int     `json:"price"`
	Discount      int     `json:"discount,omitempty"`
	UnitPrice     float64 `json:"unit_price"`
	Image         string  `json:"image,omitempty"`
	Quantity      int     `json:"quantity"`
	SelectedSize  string  `json:"selected_size,omitempty"`
	SelectedColor string  `json:"selected_color,omitempty"`
}

// Order представляет заказ, созданный при оформлении корзины
type Order struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	FullName       string         `json:"full_name"`
	Phone          string         `json:"phone"`
	Address        string         `json:"address"`
	Items          []OrderItem    `json:"items"`
	DeliveryMethod DeliveryMethod `json:"delivery_method"`
	ShippingCost   int            `json:"shipping_cost"`
	TotalAmount    float64        `json:"total_amount"`
	Status         OrderStatus    `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
}

// OrderItemsFromLines делает копию строк корзины по значению.
func OrderItemsFromLines(lines []CartLine) []OrderItem {
	items := make([]OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, OrderItem{
			ProductID:     l.ID,
			Name:          l.Name,
			Price:         l.Price,
			Discount:      l.DiscountPercent(),
			UnitPrice:     l.UnitPrice(),
			Image:         l.Image,
			Quantity:      l.Quantity,
			SelectedSize:  l.SelectedSize,
			SelectedColor: l.SelectedColor,
		})
	}
	return items
}
