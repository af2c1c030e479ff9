// Package cart holds the authoritative cart snapshot for one shopper
// session. Every mutation goes to the upstream cart service and the local
// snapshot is replaced wholesale with the server's response; the client never
// derives totals itself beyond optimistic pre-validation.
package cart

import (
	"context"
	goerrors "errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/debounce"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/pricing"
)

// ErrSuperseded is returned when a request's response arrived after a newer
// request was dispatched. The late response is discarded.
var ErrSuperseded = goerrors.New("cart: response superseded by a newer request")

// Service is the slice of the upstream API the store needs.
type Service interface {
	GetCart(ctx context.Context) (*domain.Cart, error)
	AddItem(ctx context.Context, variantID string, quantity int) (*domain.Cart, error)
	UpdateItem(ctx context.Context, variantID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, variantID string) (*domain.Cart, error)
	ClearCart(ctx context.Context) (*domain.Cart, error)
}

// Store keeps the last server-confirmed cart snapshot. Failed requests keep
// the prior snapshot. Every dispatch, fetch or mutation or clear, takes the
// next value of one store-wide counter, and only the latest dispatch may
// commit its response; a refresh dispatched before an update cannot revert
// the update's result, and an update resolving after a clear cannot
// resurrect the cleared cart.
type Store struct {
	client Service
	logger *zap.Logger
	deb    *debounce.Debouncer

	mu       sync.Mutex
	cart     domain.Cart
	dispatch uint64
	onClear  []func()
}

// NewStore creates a cart store. debounceDelay is the quiet period applied to
// free-text quantity edits.
func NewStore(client Service, debounceDelay time.Duration, logger *zap.Logger) *Store {
	return &Store{
		client: client,
		logger: logger,
		deb:    debounce.New(debounceDelay),
	}
}

// OnClear registers fn to run after the cart is successfully cleared. The
// checkout flow uses this to reset discount and loyalty state.
func (s *Store) OnClear(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClear = append(s.onClear, fn)
}

// Snapshot returns a copy of the last confirmed cart.
func (s *Store) Snapshot() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subtotal returns the server-computed subtotal of the last confirmed cart.
func (s *Store) Subtotal() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Subtotal
}

// ItemCount returns the server-computed item count of the last confirmed cart.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.ItemCount
}

// Refresh fetches the cart from the server. A refresh that resolves after any
// newer request was dispatched is discarded.
func (s *Store) Refresh(ctx context.Context) (domain.Cart, error) {
	mySeq := s.nextDispatch()
	cart, err := s.client.GetCart(ctx)
	return s.commit(mySeq, cart, err)
}

// AddItem adds quantity of a variant. Dispatches immediately.
func (s *Store) AddItem(ctx context.Context, variantID string, quantity int) (domain.Cart, error) {
	if quantity < 1 {
		quantity = 1
	}

	mySeq := s.nextDispatch()
	cart, err := s.client.AddItem(ctx, variantID, quantity)
	return s.commit(mySeq, cart, err)
}

// UpdateItem sets a line's quantity, clamped to [1, inventoryCap] before the
// request is sent. The server stays the final authority and may still reject;
// the prior snapshot is kept in that case.
func (s *Store) UpdateItem(ctx context.Context, variantID string, quantity int) (domain.Cart, error) {
	quantity = s.clampForLine(variantID, quantity)
	s.deb.Cancel(quantityKey(variantID))

	mySeq := s.nextDispatch()
	cart, err := s.client.UpdateItem(ctx, variantID, quantity)
	return s.commit(mySeq, cart, err)
}

// UpdateItemDebounced coalesces rapid quantity edits for a line and sends
// only the last one after the quiet period. done, if non-nil, receives the
// eventual outcome.
func (s *Store) UpdateItemDebounced(variantID string, quantity int, done func(domain.Cart, error)) {
	quantity = s.clampForLine(variantID, quantity)

	s.deb.Trigger(quantityKey(variantID), func() {
		mySeq := s.nextDispatch()
		cart, err := s.client.UpdateItem(context.Background(), variantID, quantity)
		snapshot, err := s.commit(mySeq, cart, err)
		if err != nil && !goerrors.Is(err, ErrSuperseded) {
			s.logger.Warn("debounced quantity update failed",
				zap.String("variant_id", variantID),
				zap.Int("quantity", quantity),
				zap.Error(err),
			)
		}
		if done != nil {
			done(snapshot, err)
		}
	})
}

// RemoveItem deletes a line. Any pending quantity edit for it is dropped.
func (s *Store) RemoveItem(ctx context.Context, variantID string) (domain.Cart, error) {
	s.deb.Cancel(quantityKey(variantID))

	mySeq := s.nextDispatch()
	cart, err := s.client.RemoveItem(ctx, variantID)
	return s.commit(mySeq, cart, err)
}

// Clear empties the cart and notifies OnClear listeners. Pending quantity
// edits are dropped first so they cannot resurrect removed lines.
func (s *Store) Clear(ctx context.Context) (domain.Cart, error) {
	s.deb.Stop()

	mySeq := s.nextDispatch()
	cart, err := s.client.ClearCart(ctx)

	s.mu.Lock()
	if s.dispatch != mySeq {
		snapshot := s.snapshotLocked()
		s.mu.Unlock()
		return snapshot, ErrSuperseded
	}
	if err != nil {
		snapshot := s.snapshotLocked()
		s.mu.Unlock()
		return snapshot, err
	}
	s.cart = *cart
	snapshot := s.snapshotLocked()
	listeners := make([]func(), len(s.onClear))
	copy(listeners, s.onClear)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
	return snapshot, nil
}

// Close drops all pending debounced work.
func (s *Store) Close() {
	s.deb.Stop()
}

func (s *Store) nextDispatch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatch++
	return s.dispatch
}

// commit applies a response unless a newer request was dispatched in the
// meantime.
func (s *Store) commit(mySeq uint64, cart *domain.Cart, err error) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dispatch != mySeq {
		return s.snapshotLocked(), ErrSuperseded
	}
	if err != nil {
		// Rollback by no-op: the prior snapshot stays authoritative.
		return s.snapshotLocked(), err
	}
	s.cart = *cart
	return s.snapshotLocked(), nil
}

func (s *Store) clampForLine(variantID string, quantity int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if line, ok := s.cart.Line(variantID); ok {
		return pricing.ClampQuantity(quantity, line.InventoryCap)
	}
	if quantity < 1 {
		return 1
	}
	return quantity
}

func (s *Store) snapshotLocked() domain.Cart {
	snapshot := s.cart
	snapshot.Lines = make([]domain.CartLine, len(s.cart.Lines))
	copy(snapshot.Lines, s.cart.Lines)
	return snapshot
}

func quantityKey(variantID string) string {
	return "quantity:" + variantID
}
