package orders

import (
	"github.com/jrsteele09/go-order-portal/api"
	"github.com/jrsteele09/go-order-portal/users"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

type Item struct {
	ID        int64   `json:"id"`
	ItemID    int64   `json:"itemId"`
	Quantity  int     `json:"quantity"`
	ItemName  string  `json:"itemName"`
	ItemPrice float64 `json:"itemPrice"`
}

type Order struct {
	ID         int64       `json:"id"`
	UserID     int64       `json:"userId"`
	UserEmail  string      `json:"userEmail"`
	Status     Status      `json:"status"`
	TotalPrice float64     `json:"totalPrice"`
	CreatedAt  string      `json:"createdAt,omitempty"`
	UpdatedAt  string      `json:"updatedAt,omitempty"`
	OrderItems []Item      `json:"orderItems"`
	UserInfo   *users.User `json:"userInfo,omitempty"`
}

// ItemRequest adds or changes one line of an order. ID is set only when
// updating an existing line.
type ItemRequest struct {
	ID       *int64 `json:"id,omitempty"`
	ItemID   int64  `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// CreateRequest places an order. UserID is only honoured for admins.
type CreateRequest struct {
	UserID     *int64        `json:"userId,omitempty"`
	OrderItems []ItemRequest `json:"orderItems"`
}

type UpdateRequest struct {
	Status     Status        `json:"status,omitempty"`
	UserID     int64         `json:"userID"`
	OrderItems []ItemRequest `json:"orderItems,omitempty"`
}

// ListParams pages through orders, optionally restricted to some statuses.
type ListParams struct {
	api.PageRequest
	Statuses []Status
}
