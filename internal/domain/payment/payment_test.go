//go:build unit

package payment_test

import (
	"testing"
	"time"

	"rental-engine/internal/domain/payment"
	"rental-engine/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in       string
		want     payment.Method
		external bool
		wantErr  bool
	}{
		{in: "wallet", want: payment.MethodWallet},
		{in: "card", want: payment.MethodCard, external: true},
		{in: "online", want: payment.MethodOnline, external: true},
		{in: "bank_transfer", want: payment.MethodBankTransfer, external: true},
		{in: "cash", want: payment.MethodCash, external: true},
		{in: "cheque", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, err := payment.ParseMethod(tt.in)
			if tt.wantErr {
				assert.True(t, errs.Is(err, errs.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m)
			assert.Equal(t, tt.external, m.IsExternal())
		})
	}
}

func TestNewWalletPayment(t *testing.T) {
	p, err := payment.NewWalletPayment(uuid.New(), uuid.New(), uuid.New(), dec("5000"), dec("3840"), now)
	require.NoError(t, err)

	assert.Equal(t, payment.StatusCompleted, p.Status())
	assert.Equal(t, payment.MethodWallet, p.Method())
	assert.True(t, dec("5000").Equal(p.RequestedAmount()))
	assert.True(t, dec("3840").Equal(p.Amount()))
	require.NotNil(t, p.CompletedAt())
	assert.True(t, p.IsSettled())

	_, err = payment.NewWalletPayment(uuid.New(), uuid.New(), uuid.New(), dec("10"), decimal.Zero, now)
	assert.ErrorIs(t, err, payment.ErrNonPositiveAmount)
}

func TestPendingCapture(t *testing.T) {
	newCapture := func(t *testing.T) *payment.Payment {
		p, err := payment.NewPendingCapture(uuid.New(), uuid.New(), uuid.New(), payment.MethodCard, dec("3840"), "ref-1", "", now)
		require.NoError(t, err)
		return p
	}

	t.Run("starts pending with nothing applied", func(t *testing.T) {
		p := newCapture(t)
		assert.Equal(t, payment.StatusPending, p.Status())
		assert.True(t, p.Amount().IsZero())
		assert.Equal(t, "ref-1", *p.ExternalReference())
		assert.False(t, p.IsSettled())
	})

	t.Run("complete records the applied amount", func(t *testing.T) {
		p := newCapture(t)
		require.NoError(t, p.AttachRedirect("https://pay.example.test/ref-1"))
		require.NoError(t, p.Complete(dec("3000"), now.Add(time.Minute)))

		assert.Equal(t, payment.StatusCompleted, p.Status())
		assert.True(t, dec("3000").Equal(p.Amount()))
		assert.Equal(t, now.Add(time.Minute), *p.CompletedAt())
	})

	t.Run("settled capture cannot change again", func(t *testing.T) {
		p := newCapture(t)
		require.NoError(t, p.Fail("card declined", now))

		assert.Equal(t, "card declined", *p.FailureReason())
		assert.ErrorIs(t, p.Complete(dec("1"), now), payment.ErrAlreadySettled)
		assert.ErrorIs(t, p.Fail("again", now), payment.ErrAlreadySettled)
		assert.ErrorIs(t, p.AttachRedirect("https://x"), payment.ErrAlreadySettled)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := payment.NewPendingCapture(uuid.New(), uuid.New(), uuid.New(), payment.MethodWallet, dec("1"), "ref", "", now)
		assert.ErrorIs(t, err, payment.ErrNotExternalPayment)

		_, err = payment.NewPendingCapture(uuid.New(), uuid.New(), uuid.New(), payment.MethodCard, dec("0"), "ref", "", now)
		assert.ErrorIs(t, err, payment.ErrNonPositiveAmount)

		_, err = payment.NewPendingCapture(uuid.New(), uuid.New(), uuid.New(), payment.MethodCard, dec("1"), "", "", now)
		assert.ErrorIs(t, err, payment.ErrMissingReference)
	})
}
