package usecase

import (
	"context"
	"errors"

	"github.com/carloscruz65/domrealce-site-sub000/internal/entity"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrNumeroTaken = errors.New("order number taken")
)

type OrderRepo interface {
	// Create fails with ErrNumeroTaken when the human order number is
	// already in use.
	Create(ctx context.Context, o *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetByNumero(ctx context.Context, numero string) (*entity.Order, error)
	// GetByReference resolves a gateway reference or request id back to
	// its order (callback reconciliation).
	GetByReference(ctx context.Context, ref string) (*entity.Order, error)
	List(ctx context.Context) ([]*entity.Order, error)
	// Update writes the full record. expectedVersion >= 0 makes the write
	// conditional on the stored version; a negative value writes
	// unconditionally (last-write-wins). Returns false when the
	// conditional write matched nothing.
	Update(ctx context.Context, o *entity.Order, expectedVersion int64) (bool, error)
	Delete(ctx context.Context, id string) error
}

type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	// Unlock releases a lock taken by TryLock so a failed operation can
	// be retried with the same key.
	Unlock(ctx context.Context, scope, key string) error
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

// StatusCache shields the gateway from duplicate status polling
// (two tabs pointed at the same payment).
type StatusCache interface {
	GetStatus(ctx context.Context, requestID string) (string, bool, error)
	SetStatus(ctx context.Context, requestID, status string) error
}

// PaymentRequest is the internal shape handed to the gateway adapter.
type PaymentRequest struct {
	OrderID     string
	Amount      float64
	Email       string
	Phone       string
	Description string
	ReturnURLs  *ReturnURLs
}

type ReturnURLs struct {
	Success string `json:"success"`
	Error   string `json:"error"`
	Cancel  string `json:"cancel"`
}

type MultibancoData struct {
	Entity    string `json:"entity"`
	Reference string `json:"reference"`
	Amount    string `json:"amount"`
	OrderID   string `json:"orderId"`
}

type MBWayData struct {
	RequestID string `json:"requestId"`
	Amount    string `json:"amount"`
	OrderID   string `json:"orderId"`
	Status    string `json:"status"`
}

type PayByLinkData struct {
	RequestID  string `json:"requestId"`
	PaymentURL string `json:"paymentUrl"`
	OrderID    string `json:"orderId"`
}

// PaymentGateway has one operation per payment method plus the raw status
// query. Adapters do no retries and no status normalization.
type PaymentGateway interface {
	MultibancoReference(ctx context.Context, req PaymentRequest) (*MultibancoData, error)
	MBWayPayment(ctx context.Context, req PaymentRequest) (*MBWayData, error)
	CardPayByLink(ctx context.Context, req PaymentRequest) (*PayByLinkData, error)
	PaymentStatus(ctx context.Context, requestID string) (string, error)
}
