package discount

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/pkg/errors"
)

type fakeVerifier struct {
	amounts map[string]int64
	calls   int
}

func (f *fakeVerifier) VerifyDiscount(ctx context.Context, code string) (int64, error) {
	f.calls++
	amount, ok := f.amounts[code]
	if !ok {
		return 0, &errors.ErrRejected{Message: "invalid discount code"}
	}
	return amount, nil
}

func TestResolver_FormatGateRejectsLocally(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"too short", "SAVE"},
		{"too long", "SAVE50"},
		{"lowercase only after trim", "sa ve"},
		{"symbols", "SAV-5"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &fakeVerifier{}
			r := NewResolver(verifier, zap.NewNop())

			_, err := r.Apply(context.Background(), tt.code)
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
			// No network call was made.
			assert.Equal(t, 0, verifier.calls)
			assert.False(t, r.State().Applied())
		})
	}
}

func TestResolver_AppliesVerifiedCode(t *testing.T) {
	verifier := &fakeVerifier{amounts: map[string]int64{"SAVE5": 50000}}
	r := NewResolver(verifier, zap.NewNop())

	// Lowercase input with padding is normalized before the format gate.
	state, err := r.Apply(context.Background(), "  save5 ")
	require.NoError(t, err)
	assert.Equal(t, "SAVE5", state.Code)
	assert.Equal(t, int64(50000), state.Amount)
	assert.True(t, state.Applied())
}

func TestResolver_ApplyIsIdempotent(t *testing.T) {
	verifier := &fakeVerifier{amounts: map[string]int64{"SAVE5": 50000}}
	r := NewResolver(verifier, zap.NewNop())

	first, err := r.Apply(context.Background(), "SAVE5")
	require.NoError(t, err)
	second, err := r.Apply(context.Background(), "SAVE5")
	require.NoError(t, err)

	assert.Equal(t, first.Amount, second.Amount)
	assert.Equal(t, first, second)
}

func TestResolver_NewCodeReplacesPrior(t *testing.T) {
	verifier := &fakeVerifier{amounts: map[string]int64{"SAVE5": 50000, "SAVE9": 90000}}
	r := NewResolver(verifier, zap.NewNop())

	_, err := r.Apply(context.Background(), "SAVE5")
	require.NoError(t, err)

	state, err := r.Apply(context.Background(), "SAVE9")
	require.NoError(t, err)
	assert.Equal(t, "SAVE9", state.Code)
	assert.Equal(t, int64(90000), state.Amount)
}

func TestResolver_RejectionKeepsPriorState(t *testing.T) {
	verifier := &fakeVerifier{amounts: map[string]int64{"SAVE5": 50000}}
	r := NewResolver(verifier, zap.NewNop())

	_, err := r.Apply(context.Background(), "SAVE5")
	require.NoError(t, err)

	state, err := r.Apply(context.Background(), "NOPE1")
	require.Error(t, err)
	assert.True(t, errors.IsRejected(err))
	assert.EqualError(t, err, "invalid discount code")
	assert.Equal(t, "SAVE5", state.Code)
	assert.Equal(t, int64(50000), state.Amount)
}

func TestResolver_Clear(t *testing.T) {
	verifier := &fakeVerifier{amounts: map[string]int64{"SAVE5": 50000}}
	r := NewResolver(verifier, zap.NewNop())

	_, err := r.Apply(context.Background(), "SAVE5")
	require.NoError(t, err)

	r.Clear()
	assert.Equal(t, State{}, r.State())
	assert.Equal(t, int64(0), r.Amount())
}
