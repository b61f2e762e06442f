package order

import "time"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID               string
	TotalAmount      float64
	TotalItems       int
	Status           Status
	Paid             bool
	PaidAt           *time.Time
	ExternalChargeID *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Items            []Item
}

// Item is one order line. Name is never stored; it is enriched from the
// catalog on every read.
type Item struct {
	ProductID string
	Quantity  int
	Price     float64
	Name      string
}

// Receipt records a successful payment. At most one exists per order.
type Receipt struct {
	ID         string
	OrderID    string
	ReceiptURL string
	CreatedAt  time.Time
}

// CreateItem is a requested product-quantity pair on order creation.
type CreateItem struct {
	ProductID string
	Quantity  int
}

type PageMeta struct {
	Page     int32
	Limit    int32
	LastPage int32
	Total    int64
}

type Page struct {
	Data []*Order
	Meta PageMeta
}

// PaymentEvent is the asynchronous payment-succeeded signal.
type PaymentEvent struct {
	OrderID          string
	ExternalChargeID string
	ReceiptURL       string
}

type PaymentResult struct {
	Order       *Order
	AlreadyPaid bool
	Message     string
}
