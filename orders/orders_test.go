package orders_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-order-portal/api"
	"github.com/jrsteele09/go-order-portal/internal/errors"
	"github.com/jrsteele09/go-order-portal/internal/utils"
	"github.com/jrsteele09/go-order-portal/orders"
	"github.com/stretchr/testify/require"
)

func setupClient(t *testing.T, handler http.HandlerFunc) *orders.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return orders.NewClient(api.NewClient(srv.URL, srv.Client()))
}

func TestClient_ListQuery(t *testing.T) {
	c := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/orders", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, []string{"PENDING", "SHIPPED"}, q["statuses"])
		require.Equal(t, "0", q.Get("page"))
		require.Equal(t, "5", q.Get("size"))
		_, _ = w.Write([]byte(`{"content":[{"id":7,"userId":2,"status":"PENDING","totalPrice":12.5,"orderItems":[]}],"totalElements":1,"totalPages":1,"first":true,"last":true}`))
	})

	page, err := c.List(context.Background(), orders.ListParams{
		PageRequest: api.PageRequest{Page: utils.Ptr(0), Size: 5},
		Statuses:    []orders.Status{orders.StatusPending, orders.StatusShipped},
	})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	require.Equal(t, orders.StatusPending, page.Content[0].Status)
	require.Equal(t, int64(1), page.TotalElements)
}

func TestClient_Create(t *testing.T) {
	c := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.NotContains(t, body, "userId")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":9,"status":"PENDING"}`))
	})

	o, err := c.Create(context.Background(), orders.CreateRequest{OrderItems: []orders.ItemRequest{{ItemID: 1, Quantity: 1}}})
	require.NoError(t, err)
	require.Equal(t, int64(9), o.ID)
}

func TestClient_GetNotFound(t *testing.T) {
	c := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/orders/404", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"message":"Order not found"}`))
	})

	_, err := c.Get(context.Background(), 404)
	require.True(t, errors.Is(err, errors.ErrNotFound))
	require.Equal(t, "Order not found", errors.Message(err, ""))
}
