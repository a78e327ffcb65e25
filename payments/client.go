package payments

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrsteele09/go-order-portal/api"
)

const basePath = "/api/v1/payments"

// Client is the payments resource. Every response is envelope-wrapped.
type Client struct {
	api *api.Client
}

func NewClient(c *api.Client) *Client {
	return &Client{api: c}
}

func (c *Client) Search(ctx context.Context, p SearchParams) ([]Payment, error) {
	q := url.Values{}
	if p.UserID != nil {
		q.Set("userId", strconv.FormatInt(*p.UserID, 10))
	}
	if p.OrderID != nil {
		q.Set("orderId", strconv.FormatInt(*p.OrderID, 10))
	}
	if p.Status != "" {
		q.Set("status", string(p.Status))
	}
	return c.list(ctx, "[payments.Search]", basePath+"/search", q)
}

func (c *Client) ListByUser(ctx context.Context, userID int64) ([]Payment, error) {
	return c.list(ctx, "[payments.ListByUser]", basePath+"/user/"+strconv.FormatInt(userID, 10), nil)
}

func (c *Client) ListByOrder(ctx context.Context, orderID int64) ([]Payment, error) {
	return c.list(ctx, "[payments.ListByOrder]", basePath+"/order/"+strconv.FormatInt(orderID, 10), nil)
}

func (c *Client) ListByStatus(ctx context.Context, status Status) ([]Payment, error) {
	return c.list(ctx, "[payments.ListByStatus]", basePath+"/status/"+string(status), nil)
}

func (c *Client) Get(ctx context.Context, id int64) (*Payment, error) {
	p, err := api.Call[Payment](ctx, c.api, api.Request{Path: basePath + "/" + strconv.FormatInt(id, 10)})
	if err != nil {
		return nil, fmt.Errorf("[payments.Get] %w", err)
	}
	return &p, nil
}

// Create pays for an order.
func (c *Client) Create(ctx context.Context, req CreateRequest) (*Payment, error) {
	p, err := api.Call[Payment](ctx, c.api, api.Request{Method: http.MethodPost, Path: basePath, Body: req})
	if err != nil {
		return nil, fmt.Errorf("[payments.Create] %w", err)
	}
	return &p, nil
}

// TotalByUser sums a user's payments between two yyyy-mm-dd dates.
func (c *Client) TotalByUser(ctx context.Context, userID int64, from, to string) (float64, error) {
	path := basePath + "/user/" + strconv.FormatInt(userID, 10) + "/total"
	return c.total(ctx, "[payments.TotalByUser]", path, from, to)
}

// Total sums every payment between two yyyy-mm-dd dates. Admin only.
func (c *Client) Total(ctx context.Context, from, to string) (float64, error) {
	return c.total(ctx, "[payments.Total]", basePath+"/total", from, to)
}

func (c *Client) list(ctx context.Context, op, path string, q url.Values) ([]Payment, error) {
	ps, err := api.Call[[]Payment](ctx, c.api, api.Request{Path: path, Query: q})
	if err != nil {
		return nil, fmt.Errorf("%s %w", op, err)
	}
	return ps, nil
}

func (c *Client) total(ctx context.Context, op, path, from, to string) (float64, error) {
	q := url.Values{"startDate": {from}, "endDate": {to}}
	sum, err := api.Call[float64](ctx, c.api, api.Request{Path: path, Query: q})
	if err != nil {
		return 0, fmt.Errorf("%s %w", op, err)
	}
	return sum, nil
}
