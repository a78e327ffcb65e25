package payments

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

type Payment struct {
	ID            int64   `json:"id"`
	OrderID       int64   `json:"orderId"`
	UserID        int64   `json:"userId"`
	Status        Status  `json:"status"`
	Timestamp     string  `json:"timestamp,omitempty"`
	PaymentAmount float64 `json:"paymentAmount"`
}

type CreateRequest struct {
	OrderID       int64   `json:"orderId"`
	UserID        int64   `json:"userId"`
	PaymentAmount float64 `json:"paymentAmount"`
}

// SearchParams filters payments; nil and empty fields are ignored.
type SearchParams struct {
	UserID  *int64
	OrderID *int64
	Status  Status
}
