package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ordersvc/internal/catalog"
	"ordersvc/internal/logger"
	"ordersvc/internal/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service orchestrates the order lifecycle: creation against the
// product catalog and payment gateway, reads enriched with catalog
// names, status transitions and payment reconciliation.
type Service interface {
	Create(ctx context.Context, items []CreateItem) (*Order, *payment.Session, error)
	Get(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, page, limit int32, status *Status) (*Page, error)
	ChangeStatus(ctx context.Context, id string, status Status) (*Order, error)
	PaymentSucceeded(ctx context.Context, evt PaymentEvent) (*PaymentResult, error)
}

type service struct {
	repo     Repository
	catalog  catalog.Client
	gateway  payment.Gateway
	currency string
}

func NewService(repo Repository, catalogClient catalog.Client, gateway payment.Gateway, currency string) Service {
	return &service{
		repo:     repo,
		catalog:  catalogClient,
		gateway:  gateway,
		currency: currency,
	}
}

func (s *service) Create(ctx context.Context, items []CreateItem) (*Order, *payment.Session, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
		zap.Int("item_count", len(items)),
	)

	if len(items) == 0 {
		return nil, nil, ErrEmptyOrder
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			log.Warn("invalid quantity", zap.String("product_id", item.ProductID))
			return nil, nil, fmt.Errorf("%w: %s", ErrInvalidItem, item.ProductID)
		}
	}

	// 1. One batch call for the full distinct id set.
	ids := distinctProductIDs(items)
	products, err := s.catalog.Validate(ctx, ids)
	if err != nil {
		log.Error("product validation failed", zap.Error(err))
		return nil, nil, fmt.Errorf("validate products: %w", err)
	}

	productsByID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		productsByID[p.ID] = p
	}

	// 2. Totals from the catalog price snapshot. Every id is present
	// here because validation succeeded.
	order := &Order{
		ID:        uuid.New().String(),
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	for _, item := range items {
		p := productsByID[item.ProductID]
		order.TotalAmount += p.Price * float64(item.Quantity)
		order.TotalItems += item.Quantity
		order.Items = append(order.Items, Item{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     p.Price,
			Name:      p.Name,
		})
	}
	order.UpdatedAt = order.CreatedAt

	log = log.With(zap.String("order_id", order.ID))

	// 3. Atomic persist of order + line items.
	if err := s.repo.CreateOrder(ctx, order); err != nil {
		log.Error("failed to persist order", zap.Error(err))
		return nil, nil, err
	}

	// 4. Payment session for the priced lines. A failure here leaves
	// the order persisted in PENDING; there is no rollback.
	sessionItems := make([]payment.SessionItem, 0, len(order.Items))
	for _, item := range order.Items {
		sessionItems = append(sessionItems, payment.SessionItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}

	session, err := s.gateway.CreateSession(ctx, payment.SessionRequest{
		OrderID:  order.ID,
		Currency: s.currency,
		Items:    sessionItems,
	})
	if err != nil {
		log.Error("payment session creation failed, order stays PENDING", zap.Error(err))
		return nil, nil, err
	}

	log.Info("order created",
		zap.Float64("total_amount", order.TotalAmount),
		zap.Int("total_items", order.TotalItems),
	)

	return order, session, nil
}

func (s *service) Get(ctx context.Context, id string) (*Order, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	// Names are never stored; fetch them live from the catalog.
	ids := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.catalog.Validate(ctx, ids)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to enrich order items",
			zap.String("order_id", id),
			zap.Error(err),
		)
		return nil, fmt.Errorf("validate products: %w", err)
	}

	namesByID := make(map[string]string, len(products))
	for _, p := range products {
		namesByID[p.ID] = p.Name
	}
	for i := range order.Items {
		order.Items[i].Name = namesByID[order.Items[i].ProductID]
	}

	return order, nil
}

func (s *service) List(ctx context.Context, page, limit int32, status *Status) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	total, err := s.repo.CountOrders(ctx, status)
	if err != nil {
		return nil, err
	}

	offset := (page - 1) * limit
	orders, err := s.repo.FetchOrders(ctx, status, limit, offset)
	if err != nil {
		return nil, err
	}

	lastPage := int32((total + int64(limit) - 1) / int64(limit))

	return &Page{
		Data: orders,
		Meta: PageMeta{
			Page:     page,
			Limit:    limit,
			LastPage: lastPage,
			Total:    total,
		},
	}, nil
}

func (s *service) ChangeStatus(ctx context.Context, id string, status Status) (*Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Idempotent no-op: same status means no write at all.
	if order.Status == status {
		return order, nil
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		logger.FromCtx(ctx).Error("failed to update order status",
			zap.String("order_id", id),
			zap.String("status", string(status)),
			zap.Error(err),
		)
		return nil, err
	}

	order.Status = status
	return order, nil
}

func (s *service) PaymentSucceeded(ctx context.Context, evt PaymentEvent) (*PaymentResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PaymentSucceeded"),
		zap.String("order_id", evt.OrderID),
		zap.String("external_charge_id", evt.ExternalChargeID),
	)

	order, err := s.repo.GetOrder(ctx, evt.OrderID)
	if err != nil {
		log.Error("failed to load order for payment confirmation", zap.Error(err))
		return nil, err
	}

	// Idempotency guard against replayed confirmation signals.
	if order.Status == StatusPaid {
		log.Info("duplicate payment confirmation ignored")
		return &PaymentResult{
			Order:       order,
			AlreadyPaid: true,
			Message:     "order already paid",
		}, nil
	}

	paidAt := time.Now().UTC()
	err = s.repo.MarkPaid(ctx, evt.OrderID, evt.ExternalChargeID, evt.ReceiptURL, paidAt)
	if errors.Is(err, ErrAlreadyPaid) {
		// Lost the race against a concurrent confirmation.
		log.Info("order paid concurrently, treating as duplicate")
		paid, getErr := s.repo.GetOrder(ctx, evt.OrderID)
		if getErr != nil {
			return nil, getErr
		}
		return &PaymentResult{
			Order:       paid,
			AlreadyPaid: true,
			Message:     "order already paid",
		}, nil
	}
	if err != nil {
		log.Error("failed to mark order as paid", zap.Error(err))
		return nil, err
	}

	order.Status = StatusPaid
	order.Paid = true
	order.PaidAt = &paidAt
	order.ExternalChargeID = &evt.ExternalChargeID

	log.Info("order paid successfully")

	return &PaymentResult{
		Order:   order,
		Message: "order paid successfully",
	}, nil
}

func distinctProductIDs(items []CreateItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}
