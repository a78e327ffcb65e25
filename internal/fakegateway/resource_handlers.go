package fakegateway

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/jrsteele09/go-order-portal/api"
	"github.com/jrsteele09/go-order-portal/orders"
	"github.com/jrsteele09/go-order-portal/payments"
	"github.com/jrsteele09/go-order-portal/users"
)

type catalogItem struct {
	name  string
	price float64
}

var catalog = map[int64]catalogItem{
	1: {name: "Widget", price: 9.99},
	2: {name: "Gadget", price: 24.50},
	3: {name: "Doohickey", price: 3.25},
}

// addOrder stores an order for owner. The caller holds the lock (or is New).
func (s *Server) addOrder(owner *users.User, items []orders.ItemRequest) (*orders.Order, bool) {
	now := NowTimeFunc().UTC().Format(time.RFC3339)
	o := &orders.Order{
		ID:        int64(len(s.orders) + 1),
		UserID:    owner.ID,
		UserEmail: owner.Email,
		Status:    orders.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i, it := range items {
		c, ok := catalog[it.ItemID]
		if !ok || it.Quantity <= 0 {
			return nil, false
		}
		o.OrderItems = append(o.OrderItems, orders.Item{
			ID:        int64(i + 1),
			ItemID:    it.ItemID,
			Quantity:  it.Quantity,
			ItemName:  c.name,
			ItemPrice: c.price,
		})
		o.TotalPrice += c.price * float64(it.Quantity)
	}
	s.orders = append(s.orders, o)
	return o, true
}

func visible(u *users.User, ownerID int64) bool {
	return u.Role.IsAdmin() || u.ID == ownerID
}

func (s *Server) listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	u := userFromContext(r.Context())
	statuses := r.URL.Query()["statuses"]

	s.lock.Lock()
	content := make([]orders.Order, 0)
	for _, o := range s.orders {
		if !visible(u, o.UserID) || !statusMatches(o.Status, statuses) {
			continue
		}
		content = append(content, *o)
	}
	s.lock.Unlock()

	writeJSON(w, http.StatusOK, api.Page[orders.Order]{
		Content:          content,
		Pageable:         api.Pageable{PageNumber: 0, PageSize: len(content)},
		TotalElements:    int64(len(content)),
		TotalPages:       1,
		NumberOfElements: len(content),
		Size:             len(content),
		First:            true,
		Last:             true,
		Empty:            len(content) == 0,
	})
}

func statusMatches(status orders.Status, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, w := range wanted {
		if string(status) == w {
			return true
		}
	}
	return false
}

func (s *Server) getOrderHandler(w http.ResponseWriter, r *http.Request) {
	u := userFromContext(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	for _, o := range s.orders {
		if o.ID != id {
			continue
		}
		if !visible(u, o.UserID) {
			writeFailure(w, http.StatusForbidden, "Not your order")
			return
		}
		writeJSON(w, http.StatusOK, o)
		return
	}
	writeFailure(w, http.StatusNotFound, "Order not found")
}

func (s *Server) createOrderHandler(w http.ResponseWriter, r *http.Request) {
	u := userFromContext(r.Context())
	var req orders.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.OrderItems) == 0 {
		writeFailure(w, http.StatusBadRequest, "Order needs at least one item")
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	owner := u
	if req.UserID != nil && u.Role.IsAdmin() {
		owner = s.userByID(*req.UserID)
		if owner == nil {
			writeFailure(w, http.StatusNotFound, "User not found")
			return
		}
	}
	o, ok := s.addOrder(owner, req.OrderItems)
	if !ok {
		writeFailure(w, http.StatusBadRequest, "Unknown item or bad quantity")
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) userByID(id int64) *users.User {
	for _, acc := range s.accounts {
		if acc.user.ID == id {
			u := acc.user
			return &u
		}
	}
	return nil
}

func (s *Server) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	content := make([]users.User, 0, len(s.accounts))
	for id := int64(1); id <= s.nextUserID; id++ {
		if u := s.userByID(id); u != nil {
			content = append(content, *u)
		}
	}
	s.lock.Unlock()

	var resp struct {
		Data struct {
			Content []users.User `json:"content"`
		} `json:"data"`
		Pageable      api.Pageable `json:"pageable"`
		TotalElements int64        `json:"totalElements"`
		TotalPages    int          `json:"totalPages"`
		First         bool         `json:"first"`
		Last          bool         `json:"last"`
		Empty         bool         `json:"empty"`
	}
	resp.Data.Content = content
	resp.Pageable = api.Pageable{PageSize: len(content)}
	resp.TotalElements = int64(len(content))
	resp.TotalPages = 1
	resp.First, resp.Last, resp.Empty = true, true, len(content) == 0
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) searchPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	u := userFromContext(r.Context())
	q := r.URL.Query()

	s.lock.Lock()
	out := make([]payments.Payment, 0)
	for _, p := range s.payments {
		if !visible(u, p.UserID) {
			continue
		}
		if v := q.Get("orderId"); v != "" && v != strconv.FormatInt(p.OrderID, 10) {
			continue
		}
		if v := q.Get("userId"); v != "" && v != strconv.FormatInt(p.UserID, 10) {
			continue
		}
		if v := q.Get("status"); v != "" && v != string(p.Status) {
			continue
		}
		out = append(out, *p)
	}
	s.lock.Unlock()

	writeEnvelope(w, http.StatusOK, true, "", out)
}

func (s *Server) createPaymentHandler(w http.ResponseWriter, r *http.Request) {
	u := userFromContext(r.Context())
	var req payments.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Malformed request")
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	var order *orders.Order
	for _, o := range s.orders {
		if o.ID == req.OrderID {
			order = o
		}
	}
	if order == nil {
		writeFailure(w, http.StatusNotFound, "Order not found")
		return
	}
	if !visible(u, order.UserID) {
		writeFailure(w, http.StatusForbidden, "Not your order")
		return
	}

	status := payments.StatusCompleted
	if req.PaymentAmount < order.TotalPrice {
		status = payments.StatusFailed
	} else {
		order.Status = orders.StatusConfirmed
	}
	p := &payments.Payment{
		ID:            int64(len(s.payments) + 1),
		OrderID:       order.ID,
		UserID:        order.UserID,
		Status:        status,
		Timestamp:     NowTimeFunc().UTC().Format(time.RFC3339),
		PaymentAmount: req.PaymentAmount,
	}
	s.payments = append(s.payments, p)
	writeEnvelope(w, http.StatusCreated, true, "Payment processed", *p)
}
