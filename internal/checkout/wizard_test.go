package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/commerce"
	"github.com/jafarshop/storefront/internal/discount"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/loyalty"
	"github.com/jafarshop/storefront/pkg/errors"
)

// fakeUpstream stands in for the whole commerce API: one cart, one discount
// table, loyalty valuation capped at subtotal minus discount.
type fakeUpstream struct {
	mu sync.Mutex

	cart      domain.Cart
	discounts map[string]int64
	applied   int64 // discount amount it currently knows about
	balance   int

	orderErr   error
	orders     []commerce.CreateOrderRequest
	orderKeys  []string
	clearCalls int
}

func (f *fakeUpstream) snapshot() *domain.Cart {
	lines := make([]domain.CartLine, len(f.cart.Lines))
	copy(lines, f.cart.Lines)
	c := domain.Cart{Lines: lines}
	for _, l := range lines {
		c.Subtotal += l.LineTotal()
		c.ItemCount += l.Quantity
	}
	return &c
}

func (f *fakeUpstream) GetCart(ctx context.Context) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot(), nil
}

func (f *fakeUpstream) AddItem(ctx context.Context, variantID string, quantity int) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cart.Lines = append(f.cart.Lines, domain.CartLine{
		VariantID: variantID, UnitPrice: 100000, Quantity: quantity, InventoryCap: 10,
	})
	return f.snapshot(), nil
}

func (f *fakeUpstream) UpdateItem(ctx context.Context, variantID string, quantity int) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.cart.Lines {
		if l.VariantID == variantID {
			f.cart.Lines[i].Quantity = quantity
		}
	}
	return f.snapshot(), nil
}

func (f *fakeUpstream) RemoveItem(ctx context.Context, variantID string) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]domain.CartLine, 0, len(f.cart.Lines))
	for _, l := range f.cart.Lines {
		if l.VariantID != variantID {
			lines = append(lines, l)
		}
	}
	f.cart.Lines = lines
	return f.snapshot(), nil
}

func (f *fakeUpstream) ClearCart(ctx context.Context) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearCalls++
	f.cart.Lines = nil
	return f.snapshot(), nil
}

func (f *fakeUpstream) VerifyDiscount(ctx context.Context, code string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	amount, ok := f.discounts[code]
	if !ok {
		return 0, &errors.ErrRejected{Message: "invalid discount code"}
	}
	f.applied = amount
	return amount, nil
}

func (f *fakeUpstream) ApplyLoyaltyPoints(ctx context.Context, points int) (commerce.ApplyPointsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value := int64(points) * 1000
	if cap := f.snapshot().Subtotal - f.applied; value > cap {
		value = cap
	}
	return commerce.ApplyPointsResponse{PointsApplied: points, PointsValue: value}, nil
}

func (f *fakeUpstream) GetLoyaltyPoints(ctx context.Context) (*domain.LoyaltyBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &domain.LoyaltyBalance{Points: f.balance, EquivalentValue: int64(f.balance) * 1000}, nil
}

func (f *fakeUpstream) CreateOrder(ctx context.Context, req commerce.CreateOrderRequest, key string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orderKeys = append(f.orderKeys, key)
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	f.orders = append(f.orders, req)
	return &domain.Order{OrderNumber: "ORD-001", Total: 385000, CreatedAt: time.Now()}, nil
}

func validTestAddress() domain.Address {
	return domain.Address{
		FullName:     "Rana Jafar",
		PhoneNumber:  "+628123456789",
		AddressLine1: "Jl. Melati 12",
		City:         "Jakarta",
		State:        "DKI Jakarta",
		PostalCode:   "10110",
		Country:      "ID",
	}
}

type fixture struct {
	upstream *fakeUpstream
	cart     *cart.Store
	discount *discount.Resolver
	loyalty  *loyalty.Redeemer
	wizard   *Wizard
}

func newFixture(t *testing.T, guest bool) *fixture {
	t.Helper()

	upstream := &fakeUpstream{
		cart: domain.Cart{
			Lines: []domain.CartLine{
				{VariantID: "v-1", UnitPrice: 250000, Quantity: 2, InventoryCap: 5},
			},
		},
		discounts: map[string]int64{"SAVE5": 50000},
		balance:   200,
	}

	logger := zap.NewNop()
	store := cart.NewStore(upstream, time.Millisecond, logger)
	t.Cleanup(store.Close)
	resolver := discount.NewResolver(upstream, logger)
	redeemer := loyalty.NewRedeemer(upstream, 1000, time.Millisecond, logger)
	t.Cleanup(redeemer.Close)

	ctx := context.Background()
	_, err := store.Refresh(ctx)
	require.NoError(t, err)
	_, err = redeemer.RefreshBalance(ctx)
	require.NoError(t, err)

	w := NewWizard(store, resolver, redeemer, upstream, 35000, guest, logger)
	return &fixture{upstream: upstream, cart: store, discount: resolver, loyalty: redeemer, wizard: w}
}

func (f *fixture) advanceToReview(t *testing.T) {
	t.Helper()
	f.wizard.SetShippingAddress(validTestAddress())
	if f.wizard.IsGuest() {
		f.wizard.SetGuestEmail("rana@example.com")
	}
	require.NoError(t, f.wizard.Next())
	require.NoError(t, f.wizard.SetPaymentMethod(domain.PaymentMethodBankTransfer))
	require.NoError(t, f.wizard.Next())
	require.Equal(t, domain.StepReview, f.wizard.Step())
}

func TestWizard_IncompleteAddressBlocksShipping(t *testing.T) {
	f := newFixture(t, false)

	addr := validTestAddress()
	addr.PostalCode = ""
	f.wizard.SetShippingAddress(addr)

	err := f.wizard.Next()
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Contains(t, err.Error(), "postalCode")
	assert.Equal(t, domain.StepShipping, f.wizard.Step())
}

func TestWizard_BadPhoneBlocksShipping(t *testing.T) {
	f := newFixture(t, false)

	addr := validTestAddress()
	addr.PhoneNumber = "12ab34"
	f.wizard.SetShippingAddress(addr)

	err := f.wizard.Next()
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Equal(t, domain.StepShipping, f.wizard.Step())
}

func TestWizard_GuestNeedsEmailToLeaveShipping(t *testing.T) {
	f := newFixture(t, true)
	f.wizard.SetShippingAddress(validTestAddress())

	err := f.wizard.Next()
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Contains(t, err.Error(), "email")
	assert.Equal(t, domain.StepShipping, f.wizard.Step())

	f.wizard.SetGuestEmail("not-an-email")
	err = f.wizard.Next()
	require.Error(t, err)
	assert.Equal(t, domain.StepShipping, f.wizard.Step())

	f.wizard.SetGuestEmail("rana@example.com")
	require.NoError(t, f.wizard.Next())
	assert.Equal(t, domain.StepPayment, f.wizard.Step())
}

func TestWizard_PaymentGate(t *testing.T) {
	f := newFixture(t, false)
	f.wizard.SetShippingAddress(validTestAddress())
	require.NoError(t, f.wizard.Next())

	err := f.wizard.Next()
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Equal(t, domain.StepPayment, f.wizard.Step())

	require.Error(t, f.wizard.SetPaymentMethod(domain.PaymentMethod("CHEQUE")))
	require.NoError(t, f.wizard.SetPaymentMethod(domain.PaymentMethodCashOnDelivery))
	require.NoError(t, f.wizard.Next())
	assert.Equal(t, domain.StepReview, f.wizard.Step())
}

func TestWizard_BackIsAlwaysAllowed(t *testing.T) {
	f := newFixture(t, false)
	f.advanceToReview(t)

	f.wizard.Back()
	assert.Equal(t, domain.StepPayment, f.wizard.Step())
	f.wizard.Back()
	assert.Equal(t, domain.StepShipping, f.wizard.Step())
	f.wizard.Back() // no-op on the first step
	assert.Equal(t, domain.StepShipping, f.wizard.Step())
}

// Discount then loyalty: 500000 subtotal + 35000 shipping - 50000 discount
// - 100 points at 1000 each, capped at 500000-50000 -> total 385000.
func TestWizard_DiscountThenLoyaltyScenario(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	state, err := f.wizard.ApplyDiscount(ctx, "SAVE5")
	require.NoError(t, err)
	assert.Equal(t, int64(50000), state.Amount)

	redemption, err := f.wizard.ApplyPoints(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), redemption.AppliedValue)

	totals := f.wizard.Totals()
	assert.Equal(t, int64(500000), totals.Subtotal)
	assert.Equal(t, int64(385000), totals.Total)
}

func TestWizard_DiscountRecomputesActiveRedemption(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	// Redeem everything first: 200 points fit under the 500000 cap.
	redemption, err := f.wizard.ApplyAllPoints(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(200000), redemption.AppliedValue)

	// Shrink the cart so the cap bites, then apply the discount; the active
	// redemption must be re-confirmed against the new cap.
	_, err = f.cart.UpdateItem(ctx, "v-1", 1)
	require.NoError(t, err)

	_, err = f.wizard.ApplyDiscount(ctx, "SAVE5")
	require.NoError(t, err)

	assert.Equal(t, int64(200000), f.wizard.Loyalty().AppliedValue)
	// 250000 - 50000 = 200000 cap holds exactly; totals stay consistent.
	totals := f.wizard.Totals()
	assert.Equal(t, int64(250000+35000-50000-200000), totals.Total)
}

func TestWizard_TotalsRecomputedEachStep(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	before := f.wizard.Totals()
	assert.Equal(t, int64(535000), before.Total)

	_, err := f.wizard.ApplyDiscount(ctx, "SAVE5")
	require.NoError(t, err)

	// No caching: the next read reflects the discount.
	after := f.wizard.Totals()
	assert.Equal(t, int64(485000), after.Total)
}

func TestWizard_ConfirmSubmitsConsolidatedOrder(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.wizard.ApplyDiscount(ctx, "SAVE5")
	require.NoError(t, err)
	_, err = f.wizard.ApplyPoints(ctx, 100)
	require.NoError(t, err)

	f.advanceToReview(t)
	f.wizard.SetNotes("leave at the door")

	order, err := f.wizard.Confirm(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ORD-001", order.OrderNumber)
	assert.Equal(t, domain.StepSubmitted, f.wizard.Step())

	require.Len(t, f.upstream.orders, 1)
	req := f.upstream.orders[0]
	require.NotNil(t, req.DiscountCode)
	assert.Equal(t, "SAVE5", *req.DiscountCode)
	assert.Equal(t, 100, req.LoyaltyPointsUsed)
	assert.Equal(t, "leave at the door", req.Notes)
	assert.Equal(t, domain.PaymentMethodBankTransfer, req.PaymentMethod)
	assert.NotEmpty(t, f.upstream.orderKeys[0])

	// Terminal teardown: cart cleared, discount and loyalty reset.
	assert.Equal(t, 1, f.upstream.clearCalls)
	assert.True(t, f.cart.Snapshot().IsEmpty())
	assert.False(t, f.wizard.Discount().Applied())
	assert.Equal(t, int64(0), f.wizard.Loyalty().AppliedValue)

	// Terminal means terminal.
	_, err = f.wizard.Confirm(ctx)
	require.Error(t, err)
	f.wizard.Back()
	assert.Equal(t, domain.StepSubmitted, f.wizard.Step())
}

func TestWizard_ConfirmFailurePreservesEverything(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.wizard.ApplyDiscount(ctx, "SAVE5")
	require.NoError(t, err)
	f.advanceToReview(t)

	f.upstream.mu.Lock()
	f.upstream.orderErr = &errors.ErrNetwork{Op: "POST /orders"}
	f.upstream.mu.Unlock()

	_, err = f.wizard.Confirm(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsNetwork(err))

	// Still on Review, cart untouched, discount intact.
	assert.Equal(t, domain.StepReview, f.wizard.Step())
	assert.Equal(t, 0, f.upstream.clearCalls)
	assert.Equal(t, int64(500000), f.cart.Subtotal())
	assert.True(t, f.wizard.Discount().Applied())

	// The retry reuses the same idempotency key.
	f.upstream.mu.Lock()
	f.upstream.orderErr = nil
	f.upstream.mu.Unlock()

	_, err = f.wizard.Confirm(ctx)
	require.NoError(t, err)
	require.Len(t, f.upstream.orderKeys, 2)
	assert.Equal(t, f.upstream.orderKeys[0], f.upstream.orderKeys[1])
}

func TestWizard_CartClearResetsDiscountAndLoyalty(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.wizard.ApplyDiscount(ctx, "SAVE5")
	require.NoError(t, err)
	_, err = f.wizard.ApplyPoints(ctx, 100)
	require.NoError(t, err)

	_, err = f.cart.Clear(ctx)
	require.NoError(t, err)

	assert.Equal(t, discount.State{}, f.wizard.Discount())
	assert.Equal(t, int64(0), f.wizard.Loyalty().AppliedValue)
	assert.Equal(t, 0, f.wizard.Loyalty().AppliedPoints)
}

func TestWizard_GuestEmailForwardedOnConfirm(t *testing.T) {
	f := newFixture(t, true)
	f.advanceToReview(t)

	_, err := f.wizard.Confirm(context.Background())
	require.NoError(t, err)
	require.Len(t, f.upstream.orders, 1)
	assert.Equal(t, "rana@example.com", f.upstream.orders[0].Email)
}
