package handlers

import "testing"

func floatPtr(v float64) *float64 { return &v }

func TestValidateDiscountFields(t *testing.T) {
	if err := validateDiscountFields(100, 20); err != nil {
		t.Fatalf("expected valid fields, got %v", err)
	}
	if err := validateDiscountFields(100, 0); err != nil {
		t.Fatalf("expected zero discount to be valid, got %v", err)
	}
	if err := validateDiscountFields(0, 20); err == nil {
		t.Fatal("expected zero price to be rejected")
	}
	if err := validateDiscountFields(-5, 20); err == nil {
		t.Fatal("expected negative price to be rejected")
	}
	if err := validateDiscountFields(100, -1); err == nil {
		t.Fatal("expected negative discount to be rejected")
	}
	if err := validateDiscountFields(100, 100.5); err == nil {
		t.Fatal("expected discount above 100 to be rejected")
	}
}

func TestResolveDiscountUpdateKeepsExisting(t *testing.T) {
	result, err := resolveDiscountUpdate(120, 10, discountUpdateInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Price != 120 || result.DiscountPercent != 10 {
		t.Fatalf("expected existing values kept, got %+v", result)
	}
	if result.SetDiscountPercent {
		t.Fatal("expected SetDiscountPercent false when the patch omits it")
	}
}

func TestResolveDiscountUpdatePatchesPriceOnly(t *testing.T) {
	result, err := resolveDiscountUpdate(120, 10, discountUpdateInput{Price: floatPtr(150)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Price != 150 || result.DiscountPercent != 10 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestResolveDiscountUpdatePatchesDiscount(t *testing.T) {
	result, err := resolveDiscountUpdate(120, 10, discountUpdateInput{DiscountPercent: floatPtr(25)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DiscountPercent != 25 || !result.SetDiscountPercent {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestResolveDiscountUpdateRejectsBadCombination(t *testing.T) {
	if _, err := resolveDiscountUpdate(120, 10, discountUpdateInput{Price: floatPtr(0)}); err == nil {
		t.Fatal("expected patched zero price to be rejected")
	}
	if _, err := resolveDiscountUpdate(120, 10, discountUpdateInput{DiscountPercent: floatPtr(120)}); err == nil {
		t.Fatal("expected patched discount above 100 to be rejected")
	}
}
