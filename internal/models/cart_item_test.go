package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func snackItem(price float64, discountPercent float64) FoodItem {
	return FoodItem{
		ID:              primitive.NewObjectID(),
		Name:            "Samosa",
		Price:           price,
		DiscountPercent: discountPercent,
		Category:        "Snacks",
		PrepTimeMinutes: 10,
		IsAvailable:     true,
		Stock:           50,
	}
}

func TestNewCartItemFreezesDiscountedUnitPrice(t *testing.T) {
	item := snackItem(100, 20)
	line := NewCartItem(item, 2)

	if line.UnitPrice != 80 {
		t.Fatalf("expected unit price 80, got %v", line.UnitPrice)
	}
	if line.TotalPrice != 160 {
		t.Fatalf("expected total 160, got %v", line.TotalPrice)
	}

	// A later catalog change must not reprice the existing line.
	item.DiscountPercent = 50
	item.Price = 10
	if line.UnitPrice != 80 {
		t.Fatalf("expected unit price to stay 80, got %v", line.UnitPrice)
	}
}

func TestNewCartItemQuantityFloor(t *testing.T) {
	line := NewCartItem(snackItem(100, 0), 0)
	if line.Quantity != 1 {
		t.Fatalf("expected quantity floor of 1, got %d", line.Quantity)
	}
}

func TestApplyDiscountBounds(t *testing.T) {
	line := NewCartItem(snackItem(100, 0), 2)

	if line.ApplyDiscount(0) {
		t.Fatal("expected zero discount to be rejected")
	}
	if line.ApplyDiscount(-5) {
		t.Fatal("expected negative discount to be rejected")
	}
	if line.ApplyDiscount(200.01) {
		t.Fatal("expected discount above subtotal to be rejected")
	}
	if line.DiscountApplied != 0 {
		t.Fatalf("expected rejected discounts to leave the line untouched, got %v", line.DiscountApplied)
	}

	if !line.ApplyDiscount(50) {
		t.Fatal("expected valid discount to be accepted")
	}
	if line.TotalPrice != 150 {
		t.Fatalf("expected total 150, got %v", line.TotalPrice)
	}
}

func TestApplyPercentageDiscount(t *testing.T) {
	line := NewCartItem(snackItem(100, 0), 3)

	if !line.ApplyPercentageDiscount(10) {
		t.Fatal("expected 10% discount to be accepted")
	}
	if line.DiscountApplied != 30 {
		t.Fatalf("expected discount 30, got %v", line.DiscountApplied)
	}
	if line.TotalPrice != 270 {
		t.Fatalf("expected total 270, got %v", line.TotalPrice)
	}

	for _, pct := range []float64{0, -1, 100.5} {
		if line.ApplyPercentageDiscount(pct) {
			t.Fatalf("expected pct=%v to be rejected", pct)
		}
	}
}

func TestRemoveDiscount(t *testing.T) {
	line := NewCartItem(snackItem(100, 0), 2)
	line.ApplyDiscount(40)
	line.RemoveDiscount()

	if line.DiscountApplied != 0 || line.TotalPrice != 200 {
		t.Fatalf("expected clean line, got discount=%v total=%v", line.DiscountApplied, line.TotalPrice)
	}
}

func TestQuantityMutations(t *testing.T) {
	line := NewCartItem(snackItem(50, 0), 1)

	line.IncrementQuantity()
	if line.Quantity != 2 || line.TotalPrice != 100 {
		t.Fatalf("expected qty 2 total 100, got %d %v", line.Quantity, line.TotalPrice)
	}

	line.DecrementQuantity()
	line.DecrementQuantity()
	if line.Quantity != 1 {
		t.Fatalf("expected quantity floor of 1, got %d", line.Quantity)
	}

	if line.SetQuantity(0) {
		t.Fatal("expected SetQuantity(0) to be rejected")
	}
	if !line.SetQuantity(4) {
		t.Fatal("expected SetQuantity(4) to be accepted")
	}
	if line.TotalPrice != 200 {
		t.Fatalf("expected total 200, got %v", line.TotalPrice)
	}
}

func TestMergeWithSumsQuantitiesAndDiscounts(t *testing.T) {
	item := snackItem(100, 0)
	a := NewCartItem(item, 2)
	b := NewCartItem(item, 3)
	b.ApplyDiscount(20)

	if !a.MergeWith(b) {
		t.Fatal("expected merge of same food item to succeed")
	}
	if a.Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", a.Quantity)
	}
	if a.DiscountApplied != 20 {
		t.Fatalf("expected merged discount 20, got %v", a.DiscountApplied)
	}
	if a.TotalPrice != 480 {
		t.Fatalf("expected merged total 480, got %v", a.TotalPrice)
	}

	other := NewCartItem(snackItem(10, 0), 1)
	if a.MergeWith(other) {
		t.Fatal("expected merge of different food items to be rejected")
	}
}

func TestTotalPriceClampedAtZero(t *testing.T) {
	line := NewCartItem(snackItem(100, 0), 2)
	line.ApplyDiscount(200)
	line.DecrementQuantity()

	if line.TotalPrice != 0 {
		t.Fatalf("expected clamped total 0, got %v", line.TotalPrice)
	}
}

func TestTotalPreparationTime(t *testing.T) {
	line := NewCartItem(snackItem(100, 0), 1)
	if got := line.TotalPreparationTime(); got != 10 {
		t.Fatalf("expected 10 minutes for a single unit, got %d", got)
	}

	line.SetQuantity(4)
	if got := line.TotalPreparationTime(); got != 16 {
		t.Fatalf("expected 10 + 2*3 = 16 minutes, got %d", got)
	}
}
