package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canteen/internal/models"
	"canteen/internal/pricing"
)

func validCard(amount float64) Details {
	return Details{
		Method:     models.PaymentCard,
		Amount:     amount,
		CardNumber: "4111 1111 1111 1111",
		CardHolder: "Priya Sharma",
		Expiry:     "12/39",
		CVV:        "123",
	}
}

func TestProcessRejectsAmountOutOfRange(t *testing.T) {
	g := NewDeterministicGateway(pricing.DefaultPolicy(), true)

	for _, amount := range []float64{9.99, 0, -5, 10000.01} {
		progress, outcome, err := g.Process(context.Background(), validCard(amount))
		require.NotNil(t, err, "amount %v", amount)
		assert.Equal(t, ErrInvalidAmount, err.Code)
		assert.Nil(t, progress)
		assert.Nil(t, outcome)
	}
}

func TestValidateCardFields(t *testing.T) {
	g := NewDeterministicGateway(pricing.DefaultPolicy(), true)

	cases := []struct {
		name   string
		mutate func(*Details)
		code   ErrorCode
	}{
		{"short number", func(d *Details) { d.CardNumber = "4111" }, ErrInvalidCard},
		{"long number", func(d *Details) { d.CardNumber = "41111111111111111111" }, ErrInvalidCard},
		{"letters in number", func(d *Details) { d.CardNumber = "4111abcd11111111" }, ErrInvalidCard},
		{"missing holder", func(d *Details) { d.CardHolder = "  " }, ErrInvalidCard},
		{"past expiry", func(d *Details) { d.Expiry = "01/20" }, ErrInvalidExpiry},
		{"bad expiry format", func(d *Details) { d.Expiry = "1/2039" }, ErrInvalidExpiry},
		{"bad month", func(d *Details) { d.Expiry = "13/39" }, ErrInvalidExpiry},
		{"short cvv", func(d *Details) { d.CVV = "12" }, ErrInvalidCVV},
		{"alpha cvv", func(d *Details) { d.CVV = "12a" }, ErrInvalidCVV},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			details := validCard(100)
			tc.mutate(&details)
			err := g.Validate(details)
			require.NotNil(t, err)
			assert.Equal(t, tc.code, err.Code)
		})
	}
}

func TestValidateExpiryMonthBoundary(t *testing.T) {
	g := NewDeterministicGateway(pricing.DefaultPolicy(), true)
	g.now = func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) }

	details := validCard(100)
	details.Expiry = "08/26"
	assert.Nil(t, g.Validate(details), "card is valid through the last day of its expiry month")

	details.Expiry = "07/26"
	err := g.Validate(details)
	require.NotNil(t, err)
	assert.Equal(t, ErrInvalidExpiry, err.Code)
}

func TestValidateUPI(t *testing.T) {
	g := NewDeterministicGateway(pricing.DefaultPolicy(), true)

	err := g.Validate(Details{Method: models.PaymentUPI, Amount: 100, UPIID: "priya-okbank"})
	require.NotNil(t, err)
	assert.Equal(t, ErrInvalidUPI, err.Code)

	assert.Nil(t, g.Validate(Details{Method: models.PaymentUPI, Amount: 100, UPIID: "priya@okbank"}))
}

func TestValidateCashNeedsNoInstrument(t *testing.T) {
	g := NewDeterministicGateway(pricing.DefaultPolicy(), true)
	assert.Nil(t, g.Validate(Details{Method: models.PaymentCash, Amount: 50}))
}

func TestValidateUnknownMethod(t *testing.T) {
	g := NewDeterministicGateway(pricing.DefaultPolicy(), true)
	err := g.Validate(Details{Method: "crypto", Amount: 50})
	require.NotNil(t, err)
	assert.Equal(t, ErrInvalidMethod, err.Code)
}

func TestProcessSuccess(t *testing.T) {
	g := NewDeterministicGateway(pricing.DefaultPolicy(), true)

	progress, outcome, verr := g.Process(context.Background(), validCard(250))
	require.Nil(t, verr)

	var percents []int
	for p := range progress {
		percents = append(percents, p.Percent)
	}
	assert.Equal(t, []int{20, 40, 60, 80, 100}, percents)

	out, open := <-outcome
	require.True(t, open)
	require.Nil(t, out.Err)
	require.NotNil(t, out.Result)
	assert.True(t, len(out.Result.TransactionID) > len("TXN-"))
	assert.Contains(t, out.Result.TransactionID, "TXN-")
	assert.Equal(t, 250.0, out.Result.Amount)
	assert.Equal(t, 5.0, out.Result.ProcessingFee)
	assert.Equal(t, models.PaymentCard, out.Result.Method)

	_, open = <-outcome
	assert.False(t, open, "outcome channel closes after the attempt ends")
}

func TestProcessDecline(t *testing.T) {
	g := NewDeterministicGateway(pricing.DefaultPolicy(), false)

	progress, outcome, verr := g.Process(context.Background(), validCard(250))
	require.Nil(t, verr)

	for range progress {
	}

	out := <-outcome
	require.NotNil(t, out.Err)
	assert.Nil(t, out.Result)
	assert.Equal(t, ErrDeclined, out.Err.Code)
	assert.Contains(t, declineReasons, out.Err.Message)
}

func TestProcessCancelled(t *testing.T) {
	g := NewDeterministicGateway(pricing.DefaultPolicy(), true)
	g.StepDelay = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	progress, outcome, verr := g.Process(ctx, validCard(250))
	require.Nil(t, verr)

	for range progress {
	}

	out := <-outcome
	require.NotNil(t, out.Err)
	assert.Equal(t, ErrCancelled, out.Err.Code)
}

func TestRefund(t *testing.T) {
	g := NewDeterministicGateway(pricing.DefaultPolicy(), true)

	_, err := g.Refund(context.Background(), "  ", 100)
	require.NotNil(t, err)
	assert.Equal(t, ErrInvalidRefund, err.Code)

	_, err = g.Refund(context.Background(), "TXN-abc", 0)
	require.NotNil(t, err)
	assert.Equal(t, ErrInvalidRefund, err.Code)

	result, err := g.Refund(context.Background(), "TXN-abc", 530)
	require.Nil(t, err)
	assert.Equal(t, "TXN-abc", result.TransactionID)
	assert.Contains(t, result.RefundID, "RFND-")
	assert.Equal(t, 530.0, result.Amount)
}
