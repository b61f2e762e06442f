package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ordersvc/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Repository is the durable order store: orders, line items, receipts.
type Repository interface {
	CreateOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, id string) (*Order, error)
	CountOrders(ctx context.Context, status *Status) (int64, error)
	FetchOrders(ctx context.Context, status *Status, limit, offset int32) ([]*Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	MarkPaid(ctx context.Context, orderID, chargeID, receiptURL string, paidAt time.Time) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// CreateOrder inserts the order and all of its line items in one
// transaction.
func (r *repository) CreateOrder(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrder"),
		zap.String("order_id", o.ID),
		zap.Int("item_count", len(o.Items)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, total_amount, total_items, status, paid, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$6)
	`,
		o.ID,
		o.TotalAmount,
		o.TotalItems,
		o.Status,
		o.Paid,
		o.CreatedAt,
	)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return err
	}

	for i, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price)
			VALUES ($1,$2,$3,$4)
		`,
			o.ID,
			item.ProductID,
			item.Quantity,
			item.Price,
		)
		if err != nil {
			log.Error("failed to insert order item",
				zap.Int("item_index", i),
				zap.String("product_id", item.ProductID),
				zap.Error(err),
			)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order transaction", zap.Error(err))
		return err
	}

	committed = true
	log.Info("order persisted")

	return nil
}

func (r *repository) GetOrder(ctx context.Context, id string) (*Order, error) {
	var o Order
	err := r.db.QueryRowContext(ctx, `
		SELECT id, total_amount, total_items, status, paid, paid_at,
		       external_charge_id, created_at, updated_at
		FROM orders WHERE id = $1
	`, id).Scan(
		&o.ID, &o.TotalAmount, &o.TotalItems, &o.Status, &o.Paid, &o.PaidAt,
		&o.ExternalChargeID, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, quantity, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &o, nil
}

func (r *repository) CountOrders(ctx context.Context, status *Status) (int64, error) {
	query := `SELECT COUNT(*) FROM orders`
	args := []any{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) FetchOrders(ctx context.Context, status *Status, limit, offset int32) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "FetchOrders"),
		zap.Int32("limit", limit),
		zap.Int32("offset", offset),
	)

	query := `
		SELECT id, total_amount, total_items, status, paid, paid_at,
		       external_charge_id, created_at, updated_at
		FROM orders
	`
	args := []any{}
	argIndex := 1

	if status != nil {
		query += fmt.Sprintf(" WHERE status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID, &o.TotalAmount, &o.TotalItems, &o.Status, &o.Paid, &o.PaidAt,
			&o.ExternalChargeID, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, err
	}

	return orders, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2
	`, status, id)
	if err != nil {
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// MarkPaid flips the order to PAID and records the receipt in one
// transaction. The update is guarded on the current status so a
// concurrent confirmation cannot pay the same order twice.
func (r *repository) MarkPaid(ctx context.Context, orderID, chargeID, receiptURL string, paidAt time.Time) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "MarkPaid"),
		zap.String("order_id", orderID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $2, paid = TRUE, paid_at = $3,
		    external_charge_id = $4, updated_at = NOW()
		WHERE id = $1
		  AND status <> $2
	`, orderID, StatusPaid, paidAt, chargeID)
	if err != nil {
		log.Error("failed to update order status", zap.Error(err))
		return err
	}

	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrAlreadyPaid
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO order_receipts (id, order_id, receipt_url)
		VALUES ($1,$2,$3)
	`, uuid.New().String(), orderID, receiptURL)
	if err != nil {
		log.Error("failed to insert order receipt", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit payment transaction", zap.Error(err))
		return err
	}

	committed = true
	log.Info("order marked as paid", zap.String("external_charge_id", chargeID))

	return nil
}
