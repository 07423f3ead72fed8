package models

import "time"

// Order statuses.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusFailed    = "failed"
	OrderStatusCancelled = "cancelled"
)

// Order is a customer checkout. Amounts are in major currency units;
// Fee and Total are computed server-side when the order is created.
type Order struct {
	ID            string      `json:"id" gorm:"primaryKey"` // uuid
	CustomerName  string      `json:"customer_name"`
	CustomerEmail string      `json:"customer_email" gorm:"index"`
	Items         []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	Subtotal      float64     `json:"subtotal"`
	Fee           float64     `json:"fee"`
	Total         float64     `json:"total"`
	Currency      string      `json:"currency" gorm:"default:GBP"`
	Status        string      `json:"status" gorm:"index;default:pending"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// OrderItem is a line on an order. UnitPrice is snapshotted from the
// menu item at checkout so later price edits don't rewrite history.
type OrderItem struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	OrderID    string  `json:"order_id" gorm:"index"`
	MenuItemID uint    `json:"menu_item_id"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unit_price"`
	Quantity   int     `json:"quantity"`
}
