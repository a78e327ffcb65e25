package users

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-order-portal/api"
)

const basePath = "/api/v1/users"

// listResponse is the user listing shape; unlike orders it nests content under data.
type listResponse struct {
	Data struct {
		Content []User `json:"content"`
	} `json:"data"`
	Pageable      api.Pageable `json:"pageable"`
	TotalElements int64        `json:"totalElements"`
	TotalPages    int          `json:"totalPages"`
	First         bool         `json:"first"`
	Last          bool         `json:"last"`
	Empty         bool         `json:"empty"`
}

func (l listResponse) page() *api.Page[User] {
	return &api.Page[User]{
		Content:          l.Data.Content,
		Pageable:         l.Pageable,
		TotalElements:    l.TotalElements,
		TotalPages:       l.TotalPages,
		NumberOfElements: len(l.Data.Content),
		Size:             l.Pageable.PageSize,
		Number:           l.Pageable.PageNumber,
		First:            l.First,
		Last:             l.Last,
		Empty:            l.Empty,
	}
}

// Client is the users resource of the API gateway. Every method needs an
// authenticated session; listing needs ADMIN.
type Client struct {
	api *api.Client
}

func NewClient(c *api.Client) *Client {
	return &Client{api: c}
}

func (c *Client) List(ctx context.Context, p api.PageRequest) (*api.Page[User], error) {
	var resp listResponse
	if err := c.api.Do(ctx, api.Request{Path: basePath, Query: p.Values()}, &resp); err != nil {
		return nil, fmt.Errorf("[users.List] %w", err)
	}
	return resp.page(), nil
}

func (c *Client) Filter(ctx context.Context, f FilterParams) (*api.Page[User], error) {
	q := api.PageRequest{Page: f.Page, Size: f.Size}.Values()
	if f.Name != "" {
		q.Set("name", f.Name)
	}
	if f.Surname != "" {
		q.Set("surname", f.Surname)
	}
	var resp listResponse
	if err := c.api.Do(ctx, api.Request{Path: basePath + "/filter", Query: q}, &resp); err != nil {
		return nil, fmt.Errorf("[users.Filter] %w", err)
	}
	return resp.page(), nil
}

func (c *Client) Get(ctx context.Context, id int64) (*User, error) {
	var u User
	if err := c.api.Do(ctx, api.Request{Path: userPath(id)}, &u); err != nil {
		return nil, fmt.Errorf("[users.Get] %w", err)
	}
	return &u, nil
}

func (c *Client) Update(ctx context.Context, id int64, req UpdateRequest) (*User, error) {
	var u User
	if err := c.api.Do(ctx, api.Request{Method: http.MethodPut, Path: userPath(id), Body: req}, &u); err != nil {
		return nil, fmt.Errorf("[users.Update] %w", err)
	}
	return &u, nil
}

// SetActive blocks or unblocks a user.
func (c *Client) SetActive(ctx context.Context, id int64, active bool) (*User, error) {
	var u User
	err := c.api.Do(ctx, api.Request{
		Method: http.MethodPatch,
		Path:   userPath(id) + "/status",
		Query:  map[string][]string{"active": {strconv.FormatBool(active)}},
	}, &u)
	if err != nil {
		return nil, fmt.Errorf("[users.SetActive] %w", err)
	}
	return &u, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	if err := c.api.Do(ctx, api.Request{Method: http.MethodDelete, Path: userPath(id)}, nil); err != nil {
		return fmt.Errorf("[users.Delete] %w", err)
	}
	return nil
}

func userPath(id int64) string {
	return basePath + "/" + strconv.FormatInt(id, 10)
}
