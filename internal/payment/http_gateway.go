package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ordersvc/internal/logger"

	"go.uber.org/zap"
)

type httpGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPGateway builds a Gateway talking to the payment service.
func NewHTTPGateway(baseURL, apiKey string) Gateway {
	if apiKey == "" {
		logger.L().Warn("payment API key is empty")
	}

	return &httpGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (g *httpGateway) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("order_id", req.OrderID),
		zap.String("currency", req.Currency),
		zap.Int("item_count", len(req.Items)),
	)

	jsonBody, err := json.Marshal(req)
	if err != nil {
		log.Error("failed to marshal payment session request", zap.Error(err))
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/payment_sessions", bytes.NewBuffer(jsonBody))
	if err != nil {
		log.Error("failed creating payment request", zap.Error(err))
		return nil, err
	}

	httpReq.SetBasicAuth(g.apiKey, "")
	httpReq.Header.Set("Content-Type", "application/json")

	log.Info("requesting payment session")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		log.Error("payment gateway request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrSessionFailed, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("failed to read payment gateway response", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrSessionFailed, err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Error("payment gateway returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return nil, fmt.Errorf("%w: %s", ErrSessionFailed, string(bodyBytes))
	}

	var session Session
	if err := json.Unmarshal(bodyBytes, &session); err != nil {
		log.Error("failed decoding payment gateway response", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrSessionFailed, err)
	}
	session.Raw = json.RawMessage(bodyBytes)

	log.Info("payment session created",
		zap.String("session_id", session.ID),
	)

	return &session, nil
}
