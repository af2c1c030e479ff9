// Package discount resolves user-supplied discount codes against the
// upstream verification endpoint. At most one code is active at a time.
package discount

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/pkg/errors"
)

// Codes are exactly 5 uppercase alphanumerics. Anything else is rejected
// locally, before any network call.
var codePattern = regexp.MustCompile(`^[A-Z0-9]{5}$`)

// State is the active discount. Code is empty and Amount zero when no code
// is applied; Amount is only ever set from a successful server verification
// of exactly that code.
type State struct {
	Code   string `json:"code,omitempty"`
	Amount int64  `json:"amount"`
}

// Applied reports whether a verified code is active.
func (s State) Applied() bool {
	return s.Code != ""
}

// Verifier is the slice of the upstream API the resolver needs.
type Verifier interface {
	VerifyDiscount(ctx context.Context, code string) (int64, error)
}

// Resolver validates, verifies and holds the active discount code.
type Resolver struct {
	client Verifier
	logger *zap.Logger

	mu    sync.Mutex
	state State
}

// NewResolver creates a discount resolver.
func NewResolver(client Verifier, logger *zap.Logger) *Resolver {
	return &Resolver{client: client, logger: logger}
}

// Apply verifies a code and makes it the active discount, replacing any
// previously applied code. A format violation never reaches the network; a
// server rejection leaves the prior state untouched.
func (r *Resolver) Apply(ctx context.Context, code string) (State, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !codePattern.MatchString(code) {
		return r.State(), &errors.ErrValidation{
			Field:   "code",
			Message: "discount code must be 5 uppercase letters or digits",
		}
	}

	amount, err := r.client.VerifyDiscount(ctx, code)
	if err != nil {
		return r.State(), err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = State{Code: code, Amount: amount}
	r.logger.Info("discount applied",
		zap.String("code", code),
		zap.Int64("amount", amount),
	)
	return r.state, nil
}

// Clear resets the discount to none. Called when the cart is cleared.
func (r *Resolver) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = State{}
}

// State returns the active discount.
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Amount returns the active discount amount in minor units.
func (r *Resolver) Amount() int64 {
	return r.State().Amount
}
