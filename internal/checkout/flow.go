// Package checkout drives a purchase attempt end to end the way the
// storefront frontend does: create the order, request a payment, and for
// MB WAY poll the status endpoint until the customer confirms, declines
// or the attempt budget runs out. Reference-based methods terminate with
// static payment instructions and never poll.
package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/carloscruz65/domrealce-site-sub000/internal/entity"
	"github.com/carloscruz65/domrealce-site-sub000/internal/usecase"
)

type State string

const (
	StateCollecting           State = "collecting"
	StateSubmittingOrder      State = "submitting-order"
	StateOrderCreated         State = "order-created"
	StateRequestingPayment    State = "requesting-payment"
	StateAwaitingConfirmation State = "awaiting-confirmation"
	StateInstructionsShown    State = "instructions-shown"
	StateConfirmed            State = "confirmed"
	StateExpired              State = "expired"
	StateTimedOut             State = "timed-out"
	StateFailed               State = "failed"
)

var (
	ErrNoMethod        = errors.New("no payment method selected")
	ErrGatewayDown     = errors.New("gateway unreachable")
	ErrTimedOut        = errors.New("payment confirmation timed out")
	ErrPaymentExpired  = errors.New("payment expired or declined")
	ErrMissingRequired = entity.ErrMissingField
)

// PaymentResult is the method-dependent payload of a created payment.
type PaymentResult struct {
	Method     string                  `json:"method"`
	MBWay      *usecase.MBWayData      `json:"mbway,omitempty"`
	Multibanco *usecase.MultibancoData `json:"multibanco,omitempty"`
	PayByLink  *usecase.PayByLinkData  `json:"paybylink,omitempty"`
}

// API is the server surface the flow drives.
type API interface {
	CreateOrder(ctx context.Context, o *entity.Order) (*entity.Order, error)
	CreatePayment(ctx context.Context, method, orderID string, amount float64, email, phone string, urls *usecase.ReturnURLs) (*PaymentResult, error)
	MBWayStatus(ctx context.Context, requestID string) (string, error)
	SetPaymentState(ctx context.Context, orderID string, state entity.PaymentState) error
}

type Config struct {
	PollInterval         time.Duration // default 5s
	MaxAttempts          int           // default 48 (4 minutes)
	MaxConsecutiveErrors int           // default 6
	ConfirmedCode        string        // default "000"
	ExpiredCodes         []string      // default {"020", "101"}
	// Sleep is injectable for tests; defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (c *Config) defaults() {
	if c.PollInterval == 0 {
		c.PollInterval = 5 * time.Second
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 48
	}
	if c.MaxConsecutiveErrors == 0 {
		c.MaxConsecutiveErrors = 6
	}
	if c.ConfirmedCode == "" {
		c.ConfirmedCode = "000"
	}
	if c.ExpiredCodes == nil {
		c.ExpiredCodes = []string{"020", "101"}
	}
	if c.Sleep == nil {
		c.Sleep = func(ctx context.Context, d time.Duration) error {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
				return nil
			}
		}
	}
}

type Submission struct {
	Order      *entity.Order
	Method     string
	ReturnURLs *usecase.ReturnURLs
	// ClearCart is invoked exactly once, on the confirmed path.
	ClearCart func()
}

type Result struct {
	State   State
	Order   *entity.Order
	Payment *PaymentResult
	Err     error
}

type Flow struct {
	api API
	cfg Config
}

func New(api API, cfg Config) *Flow {
	cfg.defaults()
	return &Flow{api: api, cfg: cfg}
}

// Run executes the whole checkout. It never panics and always returns a
// terminal (or back-to-collecting) Result.
func (f *Flow) Run(ctx context.Context, sub Submission) Result {
	// collecting -> submitting-order: guarded by required-field
	// validation and a selected method. Validation failures never leave
	// the collecting state.
	if err := sub.Order.ValidateCustomer(); err != nil {
		return Result{State: StateCollecting, Err: err}
	}
	if sub.Method == "" {
		return Result{State: StateCollecting, Err: ErrNoMethod}
	}

	order, err := f.api.CreateOrder(ctx, sub.Order)
	if err != nil {
		// no automatic retry: back to the form with the error surfaced
		return Result{State: StateCollecting, Err: err}
	}

	// order-created -> requesting-payment, chained immediately
	payment, err := f.api.CreatePayment(ctx, sub.Method, order.ID, order.Total, order.Email, order.Telefone, sub.ReturnURLs)
	if err != nil {
		return Result{State: StateFailed, Order: order, Err: err}
	}

	if sub.Method != "mbway" {
		// Reference-based methods have no live confirmation channel; the
		// order stays pendente/pendente until out-of-band reconciliation.
		return Result{State: StateInstructionsShown, Order: order, Payment: payment}
	}

	return f.awaitConfirmation(ctx, order, payment, sub.ClearCart)
}

func (f *Flow) awaitConfirmation(ctx context.Context, order *entity.Order, payment *PaymentResult, clearCart func()) Result {
	requestID := ""
	if payment.MBWay != nil {
		requestID = payment.MBWay.RequestID
	}

	consecutiveErrors := 0
	for attempt := 0; attempt < f.cfg.MaxAttempts; attempt++ {
		if err := f.cfg.Sleep(ctx, f.cfg.PollInterval); err != nil {
			return Result{State: StateFailed, Order: order, Payment: payment, Err: err}
		}

		status, err := f.api.MBWayStatus(ctx, requestID)
		if err != nil {
			// Swallowed as "still pending" unless the gateway looks dead.
			consecutiveErrors++
			if consecutiveErrors >= f.cfg.MaxConsecutiveErrors {
				return Result{State: StateFailed, Order: order, Payment: payment, Err: ErrGatewayDown}
			}
			continue
		}
		consecutiveErrors = 0

		switch f.classify(status) {
		case StateConfirmed:
			if clearCart != nil {
				clearCart()
			}
			err := f.api.SetPaymentState(ctx, order.ID, entity.PaymentPaid)
			return Result{State: StateConfirmed, Order: order, Payment: payment, Err: err}
		case StateExpired:
			_ = f.api.SetPaymentState(ctx, order.ID, entity.PaymentFailed)
			return Result{State: StateExpired, Order: order, Payment: payment, Err: ErrPaymentExpired}
		}
		// anything else: still pending, keep polling
	}

	// Ceiling exhausted: the order is left untouched (pendente/pendente).
	return Result{State: StateTimedOut, Order: order, Payment: payment, Err: ErrTimedOut}
}

func (f *Flow) classify(status string) State {
	if status == f.cfg.ConfirmedCode {
		return StateConfirmed
	}
	for _, c := range f.cfg.ExpiredCodes {
		if status == c {
			return StateExpired
		}
	}
	return StateAwaitingConfirmation
}
