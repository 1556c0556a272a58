package pricing

import "testing"

func TestTax(t *testing.T) {
	p := DefaultPolicy()

	if got := p.Tax(500); got != 40 {
		t.Fatalf("expected tax 40 on 500, got %v", got)
	}
	if got := p.Tax(0); got != 0 {
		t.Fatalf("expected no tax on empty subtotal, got %v", got)
	}
	if got := p.Tax(-10); got != 0 {
		t.Fatalf("expected no tax on negative subtotal, got %v", got)
	}
}

func TestDeliveryCharge(t *testing.T) {
	p := DefaultPolicy()

	if got := p.DeliveryCharge(100, false); got != 0 {
		t.Fatalf("expected pickup to be free, got %v", got)
	}
	if got := p.DeliveryCharge(298.99, true); got != 40 {
		t.Fatalf("expected flat fee below threshold, got %v", got)
	}
	if got := p.DeliveryCharge(299, true); got != 0 {
		t.Fatalf("expected free delivery at threshold, got %v", got)
	}
}

func TestProcessingFeeClamp(t *testing.T) {
	p := DefaultPolicy()

	// 2% of 10 is 0.20, clamped up to the minimum.
	if got := p.ProcessingFee(10); got != 1 {
		t.Fatalf("expected minimum fee 1, got %v", got)
	}
	if got := p.ProcessingFee(250); got != 5 {
		t.Fatalf("expected fee 5 on 250, got %v", got)
	}
	// 2% of 10000 is 200, clamped down to the maximum.
	if got := p.ProcessingFee(10000); got != 10 {
		t.Fatalf("expected maximum fee 10, got %v", got)
	}
}
