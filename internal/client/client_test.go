package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"trading-journal-go/internal/config"
	"trading-journal-go/internal/models"
)

// setupTestServer creates a new test server and a Client configured to use it.
func setupTestServer(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)

	c := &Client{
		client:  resty.New().SetBaseURL(server.URL),
		logger:  zap.NewNop(),
		limiter: rate.NewLimiter(rate.Inf, 1), // Allow all requests in tests
		backoff: func(int) time.Duration { return time.Millisecond },
	}
	return c, server
}

func TestOrders(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/orders", r.URL.Path)
			assert.Equal(t, http.MethodGet, r.Method)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"_id":"65a000000000000000000002","name":"TCS","qty":1,"price":10,"mode":"SELL"},
				{"_id":"65a000000000000000000001","name":"INFY","qty":10,"price":1500,"mode":"BUY"}]`))
		})
		c, server := setupTestServer(handler)
		defer server.Close()

		orders, err := c.Orders(context.Background())

		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, "TCS", orders[0].Name)
		assert.Equal(t, "65a000000000000000000001", orders[1].ID.Hex())
	})

	t.Run("RetriesServerErrors", func(t *testing.T) {
		var calls int32
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if atomic.AddInt32(&calls, 1) < 3 {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"message":"Error fetching orders"}`))
				return
			}
			_, _ = w.Write([]byte(`[]`))
		})
		c, server := setupTestServer(handler)
		defer server.Close()

		orders, err := c.Orders(context.Background())

		require.NoError(t, err)
		assert.Empty(t, orders)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("GivesUpAfterMaxRetries", func(t *testing.T) {
		var calls int32
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message":"Error fetching orders"}`))
		})
		c, server := setupTestServer(handler)
		defer server.Close()

		_, err := c.Orders(context.Background())

		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusInternalServerError, se.Code)
		assert.Equal(t, "Error fetching orders", se.Message)
		assert.Contains(t, err.Error(), "failed to get orders")
		assert.Equal(t, int32(maxRetries), atomic.LoadInt32(&calls))
	})
}

func TestHoldingsErrorBody(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"Failed to fetch holdings"}`))
	})
	c, server := setupTestServer(handler)
	defer server.Close()

	_, err := c.Holdings(context.Background())

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.Code)
	assert.Equal(t, "Failed to fetch holdings", se.Message)
}

func TestPositions(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/allpositions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"_id":"65a000000000000000000003","product":"CNC","name":"EVEREADY","qty":2}]`))
	})
	c, server := setupTestServer(handler)
	defer server.Close()

	ps, err := c.Positions(context.Background())

	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "CNC", ps[0].Product)
}

func TestNewOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/newOrder", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)

			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "INFY", body["name"])
			assert.Equal(t, float64(10), body["qty"])
			assert.Equal(t, "BUY", body["mode"])

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"message":"Order saved!"}`))
		})
		c, server := setupTestServer(handler)
		defer server.Close()

		msg, err := c.NewOrder(context.Background(), models.Order{Name: "INFY", Qty: 10, Price: 1500, Mode: models.ModeBuy})

		require.NoError(t, err)
		assert.Equal(t, "Order saved!", msg)
	})

	t.Run("NotRetried", func(t *testing.T) {
		var calls int32
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message":"Failed to save order"}`))
		})
		c, server := setupTestServer(handler)
		defer server.Close()

		_, err := c.NewOrder(context.Background(), models.Order{Name: "INFY", Qty: 1, Mode: models.ModeBuy})

		assert.ErrorContains(t, err, "Failed to save order")
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})
}

func TestNewClient(t *testing.T) {
	c := NewClient(&config.Client{BaseURL: "http://localhost:3002", RateLimit: 0}, zap.NewNop())
	assert.NotNil(t, c)
	assert.Equal(t, rate.Inf, c.limiter.Limit())
	assert.Equal(t, "http://localhost:3002", c.client.BaseURL)

	c = NewClient(&config.Client{BaseURL: "http://x", RateLimit: 5, RateLimitBurst: 2}, zap.NewNop())
	assert.Equal(t, rate.Limit(5), c.limiter.Limit())
	assert.Equal(t, 2, c.limiter.Burst())
}
