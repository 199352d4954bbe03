// Package checkout sequences the three-phase transaction behind "complete
// order": authorize with the backend, confirm with the payment processor,
// record the order. Each phase is an explicit state; each failure path is a
// named transition back to Idle so the same draft can be resubmitted.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/payment"
)

// Phase is the orchestrator's current position in a checkout attempt.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseAwaitingAuthorization
	PhaseConfirmingPayment
	PhaseRecordingOrder
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseValidating:
		return "validating"
	case PhaseAwaitingAuthorization:
		return "awaiting-authorization"
	case PhaseConfirmingPayment:
		return "confirming-payment"
	case PhaseRecordingOrder:
		return "recording-order"
	case PhaseComplete:
		return "complete"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

var (
	// ErrSubmissionInFlight rejects a submit while another one is running.
	// Letting a second one through risks a double charge.
	ErrSubmissionInFlight = errors.New("checkout submission already in flight")

	// ErrEmptyCart rejects a submit with nothing in the bag.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrPaymentNotSucceeded is returned when the processor answers the
	// confirm call with a terminal status other than succeeded.
	ErrPaymentNotSucceeded = errors.New("payment was not completed")
)

// Backend is the slice of the remote API the orchestrator needs.
type Backend interface {
	CreatePaymentIntent(ctx context.Context, req api.PaymentIntentRequest) (string, error)
	CreateOrder(ctx context.Context, req api.OrderRequest) (string, error)
}

// Receipt is the outcome of a completed checkout. OrderNumber is empty when
// payment succeeded but order recording failed.
type Receipt struct {
	OrderNumber      string `json:"orderNumber,omitempty"`
	PaymentReference string `json:"paymentReference"`
	Totals           Totals `json:"totals"`
}

type Orchestrator struct {
	mu       sync.Mutex
	inFlight bool
	phase    Phase

	backend   Backend
	processor payment.Confirmer
	cart      *cart.Store
	validate  *validator.Validate
	log       logrus.FieldLogger
}

func NewOrchestrator(backend Backend, processor payment.Confirmer, bag *cart.Store, log logrus.FieldLogger) *Orchestrator {
	return &Orchestrator{
		backend:   backend,
		processor: processor,
		cart:      bag,
		validate:  validator.New(),
		log:       log.WithField("component", "checkout"),
	}
}

// Phase reports the orchestrator's current phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// Submit runs one checkout attempt to completion. Phases run strictly in
// sequence; a failed phase leaves the cart untouched and the machine back at
// Idle so the caller may retry with the same draft. Only order recording is
// non-fatal: by then payment has succeeded, so the attempt completes and the
// cart is cleared even if no order number came back.
func (o *Orchestrator) Submit(ctx context.Context, draft Draft) (*Receipt, error) {
	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	o.inFlight = true
	o.phase = PhaseValidating
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.inFlight = false
		o.mu.Unlock()
	}()

	attempt := uuid.NewString()
	log := o.log.WithField("attempt", attempt)

	if draft.DiscountCode != "" {
		// Accepted for parity with the form; pricing ignores it.
		log.WithField("code", draft.DiscountCode).Info("discount code submitted")
	}

	if err := validateDraft(o.validate, draft); err != nil {
		return nil, o.fail(log, err)
	}

	items := o.cart.Items()
	if len(items) == 0 {
		return nil, o.fail(log, ErrEmptyCart)
	}
	totals := ComputeTotals(o.cart.Subtotal(), draft.ShippingOption)

	o.setPhase(PhaseAwaitingAuthorization)
	clientSecret, err := o.backend.CreatePaymentIntent(ctx, api.PaymentIntentRequest{
		Items:          intentItems(items),
		ShippingOption: string(draft.ShippingOption),
		Customer: api.Customer{
			Email:     draft.Customer.Email,
			FirstName: draft.Customer.FirstName,
			LastName:  draft.Customer.LastName,
		},
	})
	if err != nil {
		return nil, o.fail(log, fmt.Errorf("payment authorization: %w", err))
	}

	o.setPhase(PhaseConfirmingPayment)
	conf, err := o.processor.ConfirmPayment(ctx, clientSecret, draft.Card, payment.BillingContact{
		Name:  draft.Customer.FirstName + " " + draft.Customer.LastName,
		Email: draft.Customer.Email,
		Phone: draft.Customer.Phone,
	})
	if err != nil {
		return nil, o.fail(log, err)
	}
	if conf.Status != payment.StatusSucceeded {
		return nil, o.fail(log, fmt.Errorf("%w: status %q", ErrPaymentNotSucceeded, conf.Status))
	}

	// Payment has succeeded; from here the user-visible outcome is fixed.
	o.setPhase(PhaseRecordingOrder)
	orderNumber, err := o.backend.CreateOrder(ctx, api.OrderRequest{
		Customer:        customerPayload(draft.Customer),
		ShippingAddress: addressPayload(draft.Shipping),
		BillingAddress:  billingPayload(draft),
		Items:           orderItems(items),
		ShippingOption:  string(draft.ShippingOption),
		PaymentIntentID: conf.ID,
	})
	if err != nil {
		// Not retried; the confirmation screen simply lacks an order number.
		log.WithError(err).Warn("order recording failed after successful payment")
		orderNumber = ""
	}

	o.setPhase(PhaseComplete)
	o.cart.Clear()
	log.WithFields(logrus.Fields{
		"orderNumber": orderNumber,
		"total":       totals.Total,
	}).Info("checkout complete")

	return &Receipt{
		OrderNumber:      orderNumber,
		PaymentReference: conf.ID,
		Totals:           totals,
	}, nil
}

func (o *Orchestrator) setPhase(p Phase) {
	o.mu.Lock()
	o.phase = p
	o.mu.Unlock()
}

// fail is the named transition back to Idle from any in-flight phase.
func (o *Orchestrator) fail(log logrus.FieldLogger, err error) error {
	o.mu.Lock()
	from := o.phase
	o.phase = PhaseIdle
	o.mu.Unlock()
	log.WithError(err).WithField("phase", from.String()).Warn("checkout failed")
	return err
}

func intentItems(items []cart.LineItem) []api.Item {
	out := make([]api.Item, 0, len(items))
	for _, item := range items {
		out = append(out, api.Item{
			ID:           item.ProductID,
			Name:         item.Name,
			PriceNumeric: item.PriceNumeric,
			Quantity:     item.Quantity,
			Category:     item.Category,
		})
	}
	return out
}

// orderItems includes the image so the backend can render order history.
func orderItems(items []cart.LineItem) []api.Item {
	out := intentItems(items)
	for i := range out {
		out[i].Image = items[i].Image
	}
	return out
}

func customerPayload(c Customer) api.Customer {
	return api.Customer{
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Phone:     c.Phone,
	}
}

func addressPayload(a Address) api.Address {
	return api.Address{
		Address:    a.Address,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// billingPayload resolves the billing variant: the distinct block when
// present, the shipping address otherwise.
func billingPayload(draft Draft) api.Address {
	if draft.Billing == nil {
		return addressPayload(draft.Shipping)
	}
	b := draft.Billing
	return api.Address{
		FirstName:  b.FirstName,
		LastName:   b.LastName,
		Email:      b.Email,
		Phone:      b.Phone,
		Address:    b.Address.Address,
		City:       b.Address.City,
		PostalCode: b.Address.PostalCode,
		Country:    b.Address.Country,
	}
}
