// Package checkout drives the three-step checkout flow: Shipping, Payment,
// Review, then a terminal Submitted state. Forward moves pass the current
// step's gate; backward moves are always free. The order total is recomputed
// from the latest state at every step, never carried over.
package checkout

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/commerce"
	"github.com/jafarshop/storefront/internal/discount"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/loyalty"
	"github.com/jafarshop/storefront/internal/pricing"
	"github.com/jafarshop/storefront/pkg/errors"
)

// Submitter is the slice of the upstream API the wizard needs.
type Submitter interface {
	CreateOrder(ctx context.Context, req commerce.CreateOrderRequest, idempotencyKey string) (*domain.Order, error)
}

// Wizard accumulates shipping address, payment method and notes across the
// steps and submits one consolidated order on confirm.
type Wizard struct {
	cart     *cart.Store
	discount *discount.Resolver
	loyalty  *loyalty.Redeemer
	client   Submitter

	shippingFee int64
	logger      *zap.Logger

	// The wizard is driven from a single shopper's event stream; it is not
	// safe for concurrent use and is confined to its session.
	step    domain.CheckoutStep
	guest   bool
	email   string
	address *domain.Address
	payment domain.PaymentMethod
	notes   string

	// One idempotency key per submission attempt series; the key only
	// rotates after a successful order, so confirm retries dedupe upstream.
	idempotencyKey string
}

// NewWizard creates a checkout wizard at the Shipping step. guest marks an
// unauthenticated shopper, who must supply an email before leaving Shipping.
// Cart clearing resets the discount and loyalty state through the store's
// listener, whether triggered here or from a cart page.
func NewWizard(
	cartStore *cart.Store,
	resolver *discount.Resolver,
	redeemer *loyalty.Redeemer,
	client Submitter,
	shippingFee int64,
	guest bool,
	logger *zap.Logger,
) *Wizard {
	cartStore.OnClear(func() {
		resolver.Clear()
		redeemer.Clear()
	})

	return &Wizard{
		cart:           cartStore,
		discount:       resolver,
		loyalty:        redeemer,
		client:         client,
		shippingFee:    shippingFee,
		guest:          guest,
		logger:         logger,
		step:           domain.StepShipping,
		idempotencyKey: uuid.NewString(),
	}
}

// Step returns the current checkout step.
func (w *Wizard) Step() domain.CheckoutStep {
	return w.step
}

// IsGuest reports whether this is a guest checkout.
func (w *Wizard) IsGuest() bool {
	return w.guest
}

// SetShippingAddress records the shipping address, from the address book or
// freshly entered. Validation happens at the step gate, not here.
func (w *Wizard) SetShippingAddress(addr domain.Address) {
	w.address = &addr
}

// ShippingAddress returns the currently selected address, if any.
func (w *Wizard) ShippingAddress() *domain.Address {
	return w.address
}

// SetGuestEmail records the guest's email address.
func (w *Wizard) SetGuestEmail(email string) {
	w.email = email
}

// SetPaymentMethod records the chosen payment method.
func (w *Wizard) SetPaymentMethod(method domain.PaymentMethod) error {
	if !method.IsValid() {
		return &errors.ErrValidation{Field: "paymentMethod", Message: "unknown payment method"}
	}
	w.payment = method
	return nil
}

// PaymentMethod returns the chosen payment method, empty if none yet.
func (w *Wizard) PaymentMethod() domain.PaymentMethod {
	return w.payment
}

// SetNotes records optional order notes.
func (w *Wizard) SetNotes(notes string) {
	w.notes = notes
}

// Next advances one step if the current step's gate passes. The step is
// unchanged when the gate fails.
func (w *Wizard) Next() error {
	switch w.step {
	case domain.StepShipping:
		if err := w.validateShipping(); err != nil {
			return err
		}
		w.step = domain.StepPayment
	case domain.StepPayment:
		if w.payment == "" {
			return &errors.ErrValidation{Field: "paymentMethod", Message: "select a payment method"}
		}
		w.step = domain.StepReview
	case domain.StepReview:
		return &errors.ErrInvalidStateTransition{From: string(w.step), To: string(domain.StepSubmitted)}
	default:
		return &errors.ErrInvalidStateTransition{From: string(w.step), To: ""}
	}
	return nil
}

// Back moves one step backward. Always allowed; a no-op on the first step
// and after submission.
func (w *Wizard) Back() {
	if w.step == domain.StepSubmitted {
		return
	}
	w.step = w.step.Prev()
}

// Totals recomputes the order total from the latest cart, discount and
// loyalty state. Called at every step transition and render.
func (w *Wizard) Totals() pricing.Breakdown {
	return pricing.NewBreakdown(
		w.cart.Subtotal(),
		w.shippingFee,
		w.discount.Amount(),
		w.loyalty.AppliedValue(),
	)
}

// ApplyDiscount resolves a discount code and, because the redemption cap
// depends on the discounted subtotal, re-confirms any active loyalty
// redemption with the server.
func (w *Wizard) ApplyDiscount(ctx context.Context, code string) (discount.State, error) {
	state, err := w.discount.Apply(ctx, code)
	if err != nil {
		return state, err
	}

	if w.loyalty.State().Active() {
		if _, err := w.loyalty.Reapply(ctx); err != nil {
			w.logger.Warn("loyalty recompute after discount failed", zap.Error(err))
		}
	}
	return state, nil
}

// RemoveDiscount clears the active code and re-confirms any active loyalty
// redemption against the restored cap.
func (w *Wizard) RemoveDiscount(ctx context.Context) {
	w.discount.Clear()
	if w.loyalty.State().Active() {
		if _, err := w.loyalty.Reapply(ctx); err != nil {
			w.logger.Warn("loyalty recompute after discount removal failed", zap.Error(err))
		}
	}
}

// ApplyPoints redeems loyalty points through the redeemer's clamped path.
func (w *Wizard) ApplyPoints(ctx context.Context, points int) (loyalty.Redemption, error) {
	return w.loyalty.Apply(ctx, points)
}

// ApplyAllPoints redeems the whole available balance.
func (w *Wizard) ApplyAllPoints(ctx context.Context) (loyalty.Redemption, error) {
	return w.loyalty.ApplyAll(ctx)
}

// DisablePoints toggles redemption off without a network call.
func (w *Wizard) DisablePoints() loyalty.Redemption {
	return w.loyalty.Disable()
}

// Discount returns the active discount state.
func (w *Wizard) Discount() discount.State {
	return w.discount.State()
}

// Loyalty returns the current redemption state.
func (w *Wizard) Loyalty() loyalty.Redemption {
	return w.loyalty.State()
}

// Confirm submits the consolidated order. Only valid from Review. On success
// the cart is cleared (which resets discount and loyalty state) and the
// wizard reaches the terminal Submitted step; on failure everything stays as
// it was, with the wizard still on Review.
func (w *Wizard) Confirm(ctx context.Context) (*domain.Order, error) {
	if w.step != domain.StepReview {
		return nil, &errors.ErrInvalidStateTransition{From: string(w.step), To: string(domain.StepSubmitted)}
	}
	if w.payment == "" {
		return nil, &errors.ErrValidation{Field: "paymentMethod", Message: "select a payment method"}
	}
	if w.guest {
		if err := validateEmail(w.email); err != nil {
			return nil, err
		}
	}
	if w.address == nil {
		return nil, &errors.ErrValidation{Field: "shippingAddress", Message: "shipping address is required"}
	}

	req := commerce.CreateOrderRequest{
		ShippingAddress:   *w.address,
		PaymentMethod:     w.payment,
		LoyaltyPointsUsed: w.loyalty.State().AppliedPoints,
		Notes:             w.notes,
	}
	if state := w.discount.State(); state.Applied() {
		code := state.Code
		req.DiscountCode = &code
	}
	if w.guest {
		req.Email = w.email
	}

	order, err := w.client.CreateOrder(ctx, req, w.idempotencyKey)
	if err != nil {
		w.logger.Error("order submission failed", zap.Error(err))
		return nil, err
	}

	w.logger.Info("order submitted",
		zap.String("order_number", order.OrderNumber),
		zap.Int64("total", order.Total),
	)

	// Tear down: empty the cart and retire the idempotency key. A failed
	// clear is logged but does not undo the submitted order.
	if _, err := w.cart.Clear(ctx); err != nil {
		w.logger.Warn("cart clear after order submission failed", zap.Error(err))
	}
	w.idempotencyKey = uuid.NewString()
	w.step = domain.StepSubmitted

	return order, nil
}

func (w *Wizard) validateShipping() error {
	if w.guest {
		if err := validateEmail(w.email); err != nil {
			return err
		}
	}
	if w.address == nil {
		return &errors.ErrValidation{Field: "shippingAddress", Message: "select or enter a shipping address"}
	}
	return validateAddress(*w.address)
}
