package payment

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"canteen/internal/models"
	"canteen/internal/pricing"
)

const (
	MinAmount = 10
	MaxAmount = 10000
)

// Details describes one payment attempt.
type Details struct {
	Method     models.PaymentMethod
	Amount     float64
	CardNumber string
	CardHolder string
	Expiry     string // MM/YY
	CVV        string
	UPIID      string
}

// Progress reports a processing step as a completed percentage.
type Progress struct {
	Percent int
}

// Outcome is the tagged completion of an attempt: exactly one of Result and
// Err is set.
type Outcome struct {
	Result *models.PaymentResult
	Err    *Error
}

// Gateway abstracts the payment processor. The simulated implementation
// below stands in for a real integration and doubles as the test fake.
type Gateway interface {
	// Process validates the details synchronously; a validation problem is
	// returned immediately and nothing is charged. Otherwise processing runs
	// in the background, progress arrives on the first channel and the final
	// outcome on the second. Both channels are closed when the attempt ends.
	Process(ctx context.Context, details Details) (<-chan Progress, <-chan Outcome, *Error)

	// Refund reverses a captured payment. Synchronous.
	Refund(ctx context.Context, transactionID string, amount float64) (models.PaymentResult, *Error)
}

var declineReasons = []string{
	"insufficient funds",
	"card declined by issuer",
	"gateway timeout, try again",
	"issuing bank unavailable",
	"transaction limit exceeded",
}

// SimulatedGateway fakes a payment processor entirely in-process: staged
// progress over a few seconds and a fixed-probability outcome. It must never
// be mistaken for a real authorization flow.
type SimulatedGateway struct {
	policy      pricing.Policy
	successRate float64

	// StepDelay overrides the randomized per-step wait; tests set it to keep
	// runs fast and deterministic.
	StepDelay time.Duration

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

func NewSimulatedGateway(policy pricing.Policy) *SimulatedGateway {
	return &SimulatedGateway{
		policy:      policy,
		successRate: 0.9,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		now:         time.Now,
	}
}

// NewDeterministicGateway returns a gateway with a fixed outcome and no
// artificial latency, for tests and local development.
func NewDeterministicGateway(policy pricing.Policy, succeed bool) *SimulatedGateway {
	g := NewSimulatedGateway(policy)
	g.StepDelay = time.Millisecond
	if succeed {
		g.successRate = 1
	} else {
		g.successRate = 0
	}
	return g
}

func (g *SimulatedGateway) randFloat() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}

func (g *SimulatedGateway) randIntn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Intn(n)
}

// Validate applies the synchronous field checks without charging anything.
func (g *SimulatedGateway) Validate(details Details) *Error {
	if details.Amount < MinAmount || details.Amount > MaxAmount {
		return newError(ErrInvalidAmount,
			fmt.Sprintf("amount must be between %d and %d", MinAmount, MaxAmount))
	}

	switch details.Method {
	case models.PaymentCard:
		return g.validateCard(details)
	case models.PaymentUPI:
		if !strings.Contains(details.UPIID, "@") {
			return newError(ErrInvalidUPI, "UPI id must contain @")
		}
		return nil
	case models.PaymentCash:
		return nil
	default:
		return newError(ErrInvalidMethod, "unsupported payment method")
	}
}

func (g *SimulatedGateway) validateCard(details Details) *Error {
	number := strings.ReplaceAll(details.CardNumber, " ", "")
	if len(number) < 13 || len(number) > 19 || !digitsOnly(number) {
		return newError(ErrInvalidCard, "card number must be 13-19 digits")
	}
	if strings.TrimSpace(details.CardHolder) == "" {
		return newError(ErrInvalidCard, "card holder name is required")
	}
	if !expiryInFuture(details.Expiry, g.now()) {
		return newError(ErrInvalidExpiry, "card expiry must be MM/YY in the future")
	}
	cvv := strings.TrimSpace(details.CVV)
	if len(cvv) < 3 || len(cvv) > 4 || !digitsOnly(cvv) {
		return newError(ErrInvalidCVV, "CVV must be 3 or 4 digits")
	}
	return nil
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// expiryInFuture accepts MM/YY and treats the card as valid through the last
// day of the expiry month.
func expiryInFuture(expiry string, now time.Time) bool {
	parts := strings.Split(strings.TrimSpace(expiry), "/")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return false
	}
	if !digitsOnly(parts[0]) || !digitsOnly(parts[1]) {
		return false
	}
	month := int(parts[0][0]-'0')*10 + int(parts[0][1]-'0')
	year := 2000 + int(parts[1][0]-'0')*10 + int(parts[1][1]-'0')
	if month < 1 || month > 12 {
		return false
	}
	endOfMonth := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	return now.Before(endOfMonth)
}

func (g *SimulatedGateway) stepDelay() time.Duration {
	if g.StepDelay > 0 {
		return g.StepDelay
	}
	// 2-5 seconds total across 5 equal steps.
	total := 2*time.Second + time.Duration(g.randFloat()*float64(3*time.Second))
	return total / 5
}

func (g *SimulatedGateway) Process(ctx context.Context, details Details) (<-chan Progress, <-chan Outcome, *Error) {
	if err := g.Validate(details); err != nil {
		return nil, nil, err
	}

	progress := make(chan Progress, 5)
	outcome := make(chan Outcome, 1)
	step := g.stepDelay()

	go func() {
		defer close(progress)
		defer close(outcome)

		for i := 1; i <= 5; i++ {
			select {
			case <-ctx.Done():
				outcome <- Outcome{Err: newError(ErrCancelled, "payment cancelled")}
				return
			case <-time.After(step):
			}
			progress <- Progress{Percent: i * 20}
		}

		if g.randFloat() >= g.successRate {
			reason := declineReasons[g.randIntn(len(declineReasons))]
			outcome <- Outcome{Err: newError(ErrDeclined, reason)}
			return
		}

		outcome <- Outcome{Result: &models.PaymentResult{
			TransactionID: "TXN-" + uuid.New().String(),
			AuthCode:      fmt.Sprintf("AUTH-%06d", g.randIntn(1000000)),
			GatewayRef:    "SIMGW-" + uuid.New().String(),
			Method:        details.Method,
			Amount:        details.Amount,
			ProcessingFee: g.policy.ProcessingFee(details.Amount),
			ProcessedAt:   g.now(),
		}}
	}()

	return progress, outcome, nil
}

// Refund produces a simulated refund id. There is no ledger behind it.
func (g *SimulatedGateway) Refund(ctx context.Context, transactionID string, amount float64) (models.PaymentResult, *Error) {
	if strings.TrimSpace(transactionID) == "" {
		return models.PaymentResult{}, newError(ErrInvalidRefund, "transaction id is required")
	}
	if amount <= 0 {
		return models.PaymentResult{}, newError(ErrInvalidRefund, "refund amount must be positive")
	}

	return models.PaymentResult{
		TransactionID: transactionID,
		RefundID:      "RFND-" + uuid.New().String(),
		Amount:        amount,
		ProcessedAt:   g.now(),
	}, nil
}
