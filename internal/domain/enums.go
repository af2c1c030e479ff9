package domain

// PaymentMethod identifies how the shopper intends to pay. Payment here is a
// label forwarded to the order service; bank transfer shows static
// instructions only.
type PaymentMethod string

const (
	PaymentMethodBankTransfer   PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
)

// IsValid checks if the payment method is a known value.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodBankTransfer, PaymentMethodCashOnDelivery:
		return true
	default:
		return false
	}
}

// CheckoutStep represents where the shopper is in the checkout flow.
type CheckoutStep string

const (
	StepShipping  CheckoutStep = "SHIPPING"
	StepPayment   CheckoutStep = "PAYMENT"
	StepReview    CheckoutStep = "REVIEW"
	StepSubmitted CheckoutStep = "SUBMITTED"
)

// IsValid checks if the checkout step is a known value.
func (s CheckoutStep) IsValid() bool {
	switch s {
	case StepShipping, StepPayment, StepReview, StepSubmitted:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a step transition is allowed. Forward moves go
// one step at a time; backward moves are unrestricted. SUBMITTED is terminal.
func (s CheckoutStep) CanTransitionTo(next CheckoutStep) bool {
	switch s {
	case StepShipping:
		return next == StepPayment
	case StepPayment:
		return next == StepReview || next == StepShipping
	case StepReview:
		return next == StepSubmitted || next == StepPayment || next == StepShipping
	case StepSubmitted:
		return false // Terminal state
	default:
		return false
	}
}

// Prev returns the step immediately before s, or s itself when already at the
// first step.
func (s CheckoutStep) Prev() CheckoutStep {
	switch s {
	case StepPayment:
		return StepShipping
	case StepReview:
		return StepPayment
	default:
		return s
	}
}
