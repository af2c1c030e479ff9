// Package loyalty handles point redemption. The client clamps the request to
// the available balance, but the monetary value is only trusted once the
// server confirms it: the true cap (subtotal minus discount) lives upstream.
package loyalty

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/commerce"
	"github.com/jafarshop/storefront/internal/debounce"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/pricing"
)

// redeemKey is the single debounce key: all point edits target the same
// redemption, so they coalesce together.
const redeemKey = "points"

// Redemption is the current point-redemption state. AppliedValue is
// server-confirmed; Preview-computed values are advisory only.
type Redemption struct {
	AvailablePoints int   `json:"availablePoints"`
	RequestedPoints int   `json:"requestedPoints"`
	AppliedPoints   int   `json:"appliedPoints"`
	AppliedValue    int64 `json:"appliedValue"`
}

// Active reports whether any confirmed value is applied.
func (r Redemption) Active() bool {
	return r.AppliedPoints > 0
}

// Service is the slice of the upstream API the redeemer needs.
type Service interface {
	ApplyLoyaltyPoints(ctx context.Context, points int) (commerce.ApplyPointsResponse, error)
	GetLoyaltyPoints(ctx context.Context) (*domain.LoyaltyBalance, error)
}

// Redeemer clamps, confirms and holds loyalty point redemption for one
// checkout.
type Redeemer struct {
	client     Service
	pointValue int64
	logger     *zap.Logger
	deb        *debounce.Debouncer

	mu    sync.Mutex
	state Redemption
}

// NewRedeemer creates a redeemer. pointValue is the configured minor-unit
// value of one point; debounceDelay is the quiet period for slider/text
// point edits.
func NewRedeemer(client Service, pointValue int64, debounceDelay time.Duration, logger *zap.Logger) *Redeemer {
	return &Redeemer{
		client:     client,
		pointValue: pointValue,
		logger:     logger,
		deb:        debounce.New(debounceDelay),
	}
}

// RefreshBalance loads the available point balance from the server.
func (r *Redeemer) RefreshBalance(ctx context.Context) (int, error) {
	balance, err := r.client.GetLoyaltyPoints(ctx)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.AvailablePoints = balance.Points
	return balance.Points, nil
}

// Preview computes the advisory client-side value of a request: points at
// the fixed rate, capped at the payable amount net of the discount. The
// server-confirmed value from Apply is the one that counts.
func (r *Redeemer) Preview(points int, subtotal, discountAmount int64) int64 {
	r.mu.Lock()
	available := r.state.AvailablePoints
	r.mu.Unlock()

	value := pricing.PointsValue(pricing.ClampPoints(points, available), r.pointValue)
	if cap := pricing.RedeemableCap(subtotal, discountAmount); value > cap {
		return cap
	}
	return value
}

// Apply requests a redemption of the given point count. The request is
// clamped to [0, available] rather than rejected; zero points short-circuits
// without a network call.
func (r *Redeemer) Apply(ctx context.Context, points int) (Redemption, error) {
	r.deb.Cancel(redeemKey)

	r.mu.Lock()
	points = pricing.ClampPoints(points, r.state.AvailablePoints)
	r.state.RequestedPoints = points
	r.mu.Unlock()

	if points == 0 {
		return r.reset(), nil
	}

	resp, err := r.client.ApplyLoyaltyPoints(ctx, points)
	if err != nil {
		return r.State(), err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.AppliedPoints = resp.PointsApplied
	r.state.AppliedValue = resp.PointsValue
	r.logger.Info("loyalty points applied",
		zap.Int("points", resp.PointsApplied),
		zap.Int64("value", resp.PointsValue),
	)
	return r.state, nil
}

// ApplyAll redeems the entire available balance through the normal Apply
// path.
func (r *Redeemer) ApplyAll(ctx context.Context) (Redemption, error) {
	r.mu.Lock()
	available := r.state.AvailablePoints
	r.mu.Unlock()
	return r.Apply(ctx, available)
}

// ApplyDebounced coalesces rapid point edits and applies only the last one
// after the quiet period. done, if non-nil, receives the eventual outcome.
func (r *Redeemer) ApplyDebounced(points int, done func(Redemption, error)) {
	r.deb.Trigger(redeemKey, func() {
		state, err := r.Apply(context.Background(), points)
		if err != nil {
			r.logger.Warn("debounced loyalty redemption failed",
				zap.Int("points", points),
				zap.Error(err),
			)
		}
		if done != nil {
			done(state, err)
		}
	})
}

// Reapply re-confirms the current request with the server. Called after a
// discount change moves the redemption cap.
func (r *Redeemer) Reapply(ctx context.Context) (Redemption, error) {
	r.mu.Lock()
	requested := r.state.RequestedPoints
	r.mu.Unlock()
	return r.Apply(ctx, requested)
}

// Disable turns redemption off: the applied value is cleared immediately,
// with no network call, so no stale value stays visible.
func (r *Redeemer) Disable() Redemption {
	r.deb.Cancel(redeemKey)
	return r.reset()
}

// Clear resets all redemption state except the known balance. Called when
// the cart is cleared.
func (r *Redeemer) Clear() {
	r.deb.Cancel(redeemKey)
	r.reset()
}

// State returns the current redemption.
func (r *Redeemer) State() Redemption {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// AppliedValue returns the server-confirmed redemption value in minor units.
func (r *Redeemer) AppliedValue() int64 {
	return r.State().AppliedValue
}

// Close drops any pending debounced work.
func (r *Redeemer) Close() {
	r.deb.Stop()
}

func (r *Redeemer) reset() Redemption {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.RequestedPoints = 0
	r.state.AppliedPoints = 0
	r.state.AppliedValue = 0
	return r.state
}
