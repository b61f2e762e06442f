package catalog

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

type httpClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient builds a Client talking to the product catalog service.
func NewHTTPClient(baseURL, apiKey string) Client {
	if baseURL == "" {
		logger.L().Warn("catalog base URL is empty")
	}

	return &httpClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type validateRequest struct {
	IDs []string `json:"ids"`
}

func (c *httpClient) Validate(ctx context.Context, ids []string) ([]Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.Int("id_count", len(ids)),
	)

	jsonBody, err := json.Marshal(validateRequest{IDs: ids})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/products/validate", bytes.NewBuffer(jsonBody))
	if err != nil {
		log.Error("failed creating catalog request", zap.Error(err))
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.SetBasicAuth(c.apiKey, "")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Error("catalog request failed", zap.Error(err))
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("failed to read catalog response body", zap.Error(err))
		return nil, fmt.Errorf("failed to read catalog response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		log.Warn("catalog reported unknown products", zap.ByteString("response", bodyBytes))
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, string(bodyBytes))
	}

	if resp.StatusCode != http.StatusOK {
		log.Error("catalog returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return nil, fmt.Errorf("catalog error: %s", string(bodyBytes))
	}

	var products []Product
	if err := json.Unmarshal(bodyBytes, &products); err != nil {
		log.Error("failed decoding catalog response", zap.Error(err))
		return nil, err
	}

	// The catalog must resolve every id. Guard against a misbehaving
	// server omitting records instead of failing.
	byID := make(map[string]struct{}, len(products))
	for _, p := range products {
		byID[p.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			log.Warn("catalog response missing requested product", zap.String("product_id", id))
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
	}

	return products, nil
}
