// Package pricing holds the single authoritative pricing policy: tax,
// delivery charges and gateway processing fees. Checkout handlers and order
// construction both go through it so the two can never disagree.
package pricing

type Policy struct {
	TaxRate               float64
	DeliveryFlatFee       float64
	FreeDeliveryThreshold float64
	ProcessingFeeRate     float64
	ProcessingFeeMin      float64
	ProcessingFeeMax      float64
}

func DefaultPolicy() Policy {
	return Policy{
		TaxRate:               0.08,
		DeliveryFlatFee:       40,
		FreeDeliveryThreshold: 299,
		ProcessingFeeRate:     0.02,
		ProcessingFeeMin:      1,
		ProcessingFeeMax:      10,
	}
}

// Tax returns the tax due on an order subtotal.
func (p Policy) Tax(subtotal float64) float64 {
	if subtotal <= 0 {
		return 0
	}
	return subtotal * p.TaxRate
}

// DeliveryCharge returns the delivery fee for an order subtotal. Pickup
// orders are always free; delivery orders pay the flat fee unless the
// subtotal crosses the free-delivery threshold.
func (p Policy) DeliveryCharge(subtotal float64, delivery bool) float64 {
	if !delivery {
		return 0
	}
	if subtotal >= p.FreeDeliveryThreshold {
		return 0
	}
	return p.DeliveryFlatFee
}

// ProcessingFee is the simulated gateway surcharge: a percentage of the
// charged amount clamped to the configured range.
func (p Policy) ProcessingFee(amount float64) float64 {
	fee := amount * p.ProcessingFeeRate
	if fee < p.ProcessingFeeMin {
		fee = p.ProcessingFeeMin
	}
	if fee > p.ProcessingFeeMax {
		fee = p.ProcessingFeeMax
	}
	return fee
}
