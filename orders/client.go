package orders

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-order-portal/api"
)

const basePath = "/api/v1/orders"

// Client is the orders resource. Users see their own orders, admins see all.
type Client struct {
	api *api.Client
}

func NewClient(c *api.Client) *Client {
	return &Client{api: c}
}

func (c *Client) List(ctx context.Context, p ListParams) (*api.Page[Order], error) {
	q := p.PageRequest.Values()
	for _, s := range p.Statuses {
		q.Add("statuses", string(s))
	}
	var page api.Page[Order]
	if err := c.api.Do(ctx, api.Request{Path: basePath, Query: q}, &page); err != nil {
		return nil, fmt.Errorf("[orders.List] %w", err)
	}
	return &page, nil
}

func (c *Client) ListByUser(ctx context.Context, userID int64, p api.PageRequest) (*api.Page[Order], error) {
	var page api.Page[Order]
	path := basePath + "/user/" + strconv.FormatInt(userID, 10)
	if err := c.api.Do(ctx, api.Request{Path: path, Query: p.Values()}, &page); err != nil {
		return nil, fmt.Errorf("[orders.ListByUser] %w", err)
	}
	return &page, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*Order, error) {
	var o Order
	if err := c.api.Do(ctx, api.Request{Path: orderPath(id)}, &o); err != nil {
		return nil, fmt.Errorf("[orders.Get] %w", err)
	}
	return &o, nil
}

func (c *Client) Create(ctx context.Context, req CreateRequest) (*Order, error) {
	var o Order
	if err := c.api.Do(ctx, api.Request{Method: http.MethodPost, Path: basePath, Body: req}, &o); err != nil {
		return nil, fmt.Errorf("[orders.Create] %w", err)
	}
	return &o, nil
}

func (c *Client) Update(ctx context.Context, id int64, req UpdateRequest) (*Order, error) {
	var o Order
	if err := c.api.Do(ctx, api.Request{Method: http.MethodPut, Path: orderPath(id), Body: req}, &o); err != nil {
		return nil, fmt.Errorf("[orders.Update] %w", err)
	}
	return &o, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	if err := c.api.Do(ctx, api.Request{Method: http.MethodDelete, Path: orderPath(id)}, nil); err != nil {
		return fmt.Errorf("[orders.Delete] %w", err)
	}
	return nil
}

func orderPath(id int64) string {
	return basePath + "/" + strconv.FormatInt(id, 10)
}
