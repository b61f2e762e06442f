package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ordersvc/internal/catalog"
	"ordersvc/internal/order"
	"ordersvc/internal/payment"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, items []order.CreateItem) (*order.Order, *payment.Session, error) {
	args := m.Called(ctx, items)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*order.Order), args.Get(1).(*payment.Session), args.Error(2)
}

func (m *MockOrderService) Get(ctx context.Context, id string) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, page, limit int32, status *order.Status) (*order.Page, error) {
	args := m.Called(ctx, page, limit, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Page), args.Error(1)
}

func (m *MockOrderService) ChangeStatus(ctx context.Context, id string, status order.Status) (*order.Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) PaymentSucceeded(ctx context.Context, evt order.PaymentEvent) (*order.PaymentResult, error) {
	args := m.Called(ctx, evt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.PaymentResult), args.Error(1)
}

var testSecret = []byte("test-secret")

func newTestServer(svc order.Service) http.Handler {
	return NewRouter(NewHandler(svc), nil, testSecret)
}

func signedToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(testSecret)
	require.NoError(t, err)
	return signed
}

func TestHandler_CreateOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockOrderService)
		created := &order.Order{
			ID:          "ord-1",
			TotalAmount: 20,
			TotalItems:  2,
			Status:      order.StatusPending,
			Items:       []order.Item{{ProductID: "p1", Quantity: 2, Price: 10, Name: "Widget"}},
		}
		session := &payment.Session{
			ID:  "sess_1",
			URL: "https://pay/sess_1",
			Raw: json.RawMessage(`{"id":"sess_1","url":"https://pay/sess_1"}`),
		}

		svc.On("Create", mock.Anything, []order.CreateItem{{ProductID: "p1", Quantity: 2}}).
			Return(created, session, nil)

		body := bytes.NewBufferString(`{"items":[{"productId":"p1","quantity":2}]}`)
		req := httptest.NewRequest(http.MethodPost, "/orders", body)
		rec := httptest.NewRecorder()

		newTestServer(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)

		var resp CreateOrderResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ord-1", resp.Order.ID)
		assert.Equal(t, float64(20), resp.Order.TotalAmount)
		assert.Equal(t, "Widget", resp.Order.Items[0].Name)
		assert.JSONEq(t, `{"id":"sess_1","url":"https://pay/sess_1"}`, string(resp.PaymentSession))
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		svc := new(MockOrderService)

		req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(`{`))
		rec := httptest.NewRecorder()

		newTestServer(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("UnknownProduct", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("Create", mock.Anything, mock.Anything).
			Return(nil, nil, catalog.ErrProductNotFound)

		body := bytes.NewBufferString(`{"items":[{"productId":"p9","quantity":1}]}`)
		req := httptest.NewRequest(http.MethodPost, "/orders", body)
		rec := httptest.NewRecorder()

		newTestServer(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("PaymentSessionError", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("Create", mock.Anything, mock.Anything).
			Return(nil, nil, payment.ErrSessionFailed)

		body := bytes.NewBufferString(`{"items":[{"productId":"p1","quantity":1}]}`)
		req := httptest.NewRequest(http.MethodPost, "/orders", body)
		rec := httptest.NewRecorder()

		newTestServer(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestHandler_GetOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("Get", mock.Anything, "ord-1").Return(&order.Order{
			ID:     "ord-1",
			Status: order.StatusPending,
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/orders/ord-1", nil)
		rec := httptest.NewRecorder()

		newTestServer(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp OrderResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ord-1", resp.ID)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("Get", mock.Anything, "missing").Return(nil, order.ErrOrderNotFound)

		req := httptest.NewRequest(http.MethodGet, "/orders/missing", nil)
		rec := httptest.NewRecorder()

		newTestServer(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_ListOrders(t *testing.T) {
	t.Run("WithStatusFilter", func(t *testing.T) {
		svc := new(MockOrderService)
		status := order.StatusPaid
		svc.On("List", mock.Anything, int32(2), int32(5), &status).Return(&order.Page{
			Data: []*order.Order{{ID: "ord-1", Status: order.StatusPaid}},
			Meta: order.PageMeta{Page: 2, Limit: 5, LastPage: 3, Total: 11},
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/orders?page=2&limit=5&status=PAID", nil)
		rec := httptest.NewRecorder()

		newTestServer(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp ListOrdersResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Data, 1)
		assert.Equal(t, int32(3), resp.Meta.LastPage)
		assert.Equal(t, int64(11), resp.Meta.Total)
	})

	t.Run("InvalidStatus", func(t *testing.T) {
		svc := new(MockOrderService)

		req := httptest.NewRequest(http.MethodGet, "/orders?status=NOPE", nil)
		rec := httptest.NewRecorder()

		newTestServer(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandler_ChangeStatus(t *testing.T) {
	t.Run("RequiresAuth", func(t *testing.T) {
		svc := new(MockOrderService)

		body := bytes.NewBufferString(`{"status":"PAID"}`)
		req := httptest.NewRequest(http.MethodPatch, "/orders/ord-1/status", body)
		rec := httptest.NewRecorder()

		newTestServer(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		svc.AssertNotCalled(t, "ChangeStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Success", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("ChangeStatus", mock.Anything, "ord-1", order.StatusPaid).
			Return(&order.Order{ID: "ord-1", Status: order.StatusPaid}, nil)

		body := bytes.NewBufferString(`{"status":"PAID"}`)
		req := httptest.NewRequest(http.MethodPatch, "/orders/ord-1/status", body)
		req.Header.Set("Authorization", "Bearer "+signedToken(t))
		rec := httptest.NewRecorder()

		newTestServer(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp OrderResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "PAID", resp.Status)
	})

	t.Run("InvalidStatus", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("ChangeStatus", mock.Anything, "ord-1", order.Status("NOPE")).
			Return(nil, order.ErrInvalidStatus)

		body := bytes.NewBufferString(`{"status":"NOPE"}`)
		req := httptest.NewRequest(http.MethodPatch, "/orders/ord-1/status", body)
		req.Header.Set("Authorization", "Bearer "+signedToken(t))
		rec := httptest.NewRecorder()

		newTestServer(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_Healthz(t *testing.T) {
	svc := new(MockOrderService)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	newTestServer(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
