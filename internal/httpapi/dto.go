package httpapi

import (
	"encoding/json"
	"time"

	"ordersvc/internal/order"
	"ordersvc/internal/payment"
)

type CreateOrderRequest struct {
	Items []CreateOrderItemDTO `json:"items"`
}

type CreateOrderItemDTO struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type ChangeStatusRequest struct {
	Status string `json:"status"`
}

type OrderItemResponse struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Name      string  `json:"name,omitempty"`
}

type OrderResponse struct {
	ID               string              `json:"id"`
	TotalAmount      float64             `json:"totalAmount"`
	TotalItems       int                 `json:"totalItems"`
	Status           string              `json:"status"`
	Paid             bool                `json:"paid"`
	PaidAt           *time.Time          `json:"paidAt,omitempty"`
	ExternalChargeID *string             `json:"externalChargeId,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
	Items            []OrderItemResponse `json:"items"`
}

type CreateOrderResponse struct {
	Order          OrderResponse   `json:"order"`
	PaymentSession json.RawMessage `json:"paymentSession"`
}

type PaginationMeta struct {
	Page     int32 `json:"page"`
	Limit    int32 `json:"limit"`
	LastPage int32 `json:"lastPage"`
	Total    int64 `json:"total"`
}

type ListOrdersResponse struct {
	Data []OrderResponse `json:"data"`
	Meta PaginationMeta  `json:"pagination"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func mapOrderToResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Name:      item.Name,
		})
	}

	return OrderResponse{
		ID:               o.ID,
		TotalAmount:      o.TotalAmount,
		TotalItems:       o.TotalItems,
		Status:           string(o.Status),
		Paid:             o.Paid,
		PaidAt:           o.PaidAt,
		ExternalChargeID: o.ExternalChargeID,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		Items:            items,
	}
}

func mapSessionToResponse(s *payment.Session) json.RawMessage {
	if len(s.Raw) > 0 {
		return s.Raw
	}
	data, err := json.Marshal(s)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return data
}
