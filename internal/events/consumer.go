package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"ordersvc/internal/logger"
	"ordersvc/internal/order"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// paymentSucceededEvent is the wire shape of the payment-succeeded
// signal published by the payment service.
type paymentSucceededEvent struct {
	OrderID          string `json:"orderId"`
	ExternalChargeID string `json:"externalChargeId"`
	ReceiptURL       string `json:"receiptUrl"`
}

// Consumer reconciles orders from asynchronous payment-succeeded
// events. Delivery is at least once; the order service is responsible
// for making the reconcile idempotent.
type Consumer struct {
	reader *kafka.Reader
	svc    order.Service
}

func NewConsumer(brokersCSV, topic, groupID string, svc order.Service) *Consumer {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})

	return &Consumer{
		reader: reader,
		svc:    svc,
	}
}

// Run consumes until the context is cancelled. This is a one-way event
// stream: handler failures are logged, never returned to a caller.
func (c *Consumer) Run(ctx context.Context) error {
	log := logger.L().With(
		zap.String("topic", c.reader.Config().Topic),
		zap.String("group_id", c.reader.Config().GroupID),
	)
	log.Info("payment event consumer started")

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				log.Info("payment event consumer stopped")
				return nil
			}
			log.Error("failed to fetch message", zap.Error(err))
			return err
		}

		c.handle(ctx, m.Value)

		// Commit regardless of handler outcome: a permanently failing
		// event would otherwise poison the partition. Failures were
		// already logged with the payload.
		if err := c.reader.CommitMessages(ctx, m); err != nil {
			log.Error("failed to commit message", zap.Error(err))
		}
	}
}

func (c *Consumer) handle(ctx context.Context, value []byte) {
	log := logger.L()

	var evt paymentSucceededEvent
	if err := json.Unmarshal(value, &evt); err != nil {
		log.Error("malformed payment event",
			zap.ByteString("payload", value),
			zap.Error(err),
		)
		return
	}

	log = log.With(
		zap.String("order_id", evt.OrderID),
		zap.String("external_charge_id", evt.ExternalChargeID),
	)

	result, err := c.svc.PaymentSucceeded(ctx, order.PaymentEvent{
		OrderID:          evt.OrderID,
		ExternalChargeID: evt.ExternalChargeID,
		ReceiptURL:       evt.ReceiptURL,
	})
	if err != nil {
		log.Error("failed to process payment event", zap.Error(err))
		return
	}

	if result.AlreadyPaid {
		log.Info("payment event ignored, order already paid")
		return
	}
	log.Info("payment event processed")
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
