package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"canteen/internal/pricing"
)

// testPolicy keeps the free-delivery threshold out of reach so delivery
// charges stay visible in the totals being asserted.
func testPolicy() pricing.Policy {
	p := pricing.DefaultPolicy()
	p.FreeDeliveryThreshold = 1000
	return p
}

func orderLines(price float64, qty int) []CartItem {
	return []CartItem{NewCartItem(snackItem(price, 0), qty)}
}

func TestNewOrderTotals(t *testing.T) {
	order := NewOrder(primitive.NewObjectID(), orderLines(250, 2), DeliveryDelivery, testPolicy())
	order.ApplyOrderDiscount(50)

	if order.TotalAmount != 500 {
		t.Fatalf("expected subtotal 500, got %v", order.TotalAmount)
	}
	if order.TaxAmount != 40 {
		t.Fatalf("expected tax 40, got %v", order.TaxAmount)
	}
	if order.DeliveryCharges != 40 {
		t.Fatalf("expected delivery 40, got %v", order.DeliveryCharges)
	}
	// 500 - 50 + 40 + 40
	if order.FinalAmount != 530 {
		t.Fatalf("expected final 530, got %v", order.FinalAmount)
	}
	if order.Status != OrderPending {
		t.Fatalf("expected new order to be pending, got %s", order.Status)
	}
	if _, stamped := order.StatusTimes[string(OrderPending)]; !stamped {
		t.Fatal("expected pending to be stamped at creation")
	}
}

func TestNewOrderCopiesItems(t *testing.T) {
	lines := orderLines(100, 1)
	order := NewOrder(primitive.NewObjectID(), lines, DeliveryPickup, testPolicy())

	lines[0].SetQuantity(9)
	if order.Items[0].Quantity != 1 {
		t.Fatalf("expected placed order to be isolated from cart edits, got qty %d", order.Items[0].Quantity)
	}
}

func TestFinalAmountNeverNegative(t *testing.T) {
	order := NewOrder(primitive.NewObjectID(), orderLines(50, 1), DeliveryPickup, testPolicy())
	order.ApplyOrderDiscount(10000)

	if order.FinalAmount != 0 {
		t.Fatalf("expected final amount clamped to 0, got %v", order.FinalAmount)
	}
}

func TestPrepTimeIsSlowestLine(t *testing.T) {
	fast := snackItem(50, 0)
	fast.PrepTimeMinutes = 5
	slow := snackItem(120, 0)
	slow.PrepTimeMinutes = 20

	items := []CartItem{
		NewCartItem(fast, 3), // 5 + 2*2 = 9
		NewCartItem(slow, 1), // 20
	}
	order := NewOrder(primitive.NewObjectID(), items, DeliveryPickup, testPolicy())

	if order.PrepTimeMinutes != 20 {
		t.Fatalf("expected prep time 20 (slowest line), got %d", order.PrepTimeMinutes)
	}
}

func TestSetDeliveryType(t *testing.T) {
	order := NewOrder(primitive.NewObjectID(), orderLines(100, 1), DeliveryPickup, testPolicy())
	if order.DeliveryCharges != 0 {
		t.Fatalf("expected pickup to be free, got %v", order.DeliveryCharges)
	}

	order.SetDeliveryType(DeliveryDelivery, testPolicy())
	if order.DeliveryCharges != 40 {
		t.Fatalf("expected delivery charge 40, got %v", order.DeliveryCharges)
	}
	if order.FinalAmount != 148 {
		t.Fatalf("expected final 100+8+40=148, got %v", order.FinalAmount)
	}
}

func TestSetStatusStampsOnce(t *testing.T) {
	order := NewOrder(primitive.NewObjectID(), orderLines(100, 1), DeliveryPickup, testPolicy())

	if err := order.SetStatus(OrderConfirmed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := order.StatusTimes[string(OrderConfirmed)]

	time.Sleep(5 * time.Millisecond)
	if err := order.SetStatus(OrderConfirmed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !order.StatusTimes[string(OrderConfirmed)].Equal(first) {
		t.Fatal("expected the first confirmed timestamp to be kept")
	}
	if !order.LastUpdatedAt.After(first) {
		t.Fatal("expected lastUpdatedAt to move on every status call")
	}
}

func TestSetStatusRejectsLeavingTerminal(t *testing.T) {
	order := NewOrder(primitive.NewObjectID(), orderLines(100, 1), DeliveryPickup, testPolicy())
	order.SetStatus(OrderConfirmed)
	order.SetStatus(OrderDelivered)

	if err := order.SetStatus(OrderPending); err != ErrOrderTerminal {
		t.Fatalf("expected ErrOrderTerminal, got %v", err)
	}
	if order.Status != OrderDelivered {
		t.Fatalf("expected status to stay delivered, got %s", order.Status)
	}
}

func TestCanBeCancelled(t *testing.T) {
	order := NewOrder(primitive.NewObjectID(), orderLines(100, 1), DeliveryPickup, testPolicy())
	if !order.CanBeCancelled() {
		t.Fatal("expected pending order to be cancellable")
	}

	order.SetStatus(OrderConfirmed)
	if !order.CanBeCancelled() {
		t.Fatal("expected confirmed order to be cancellable")
	}

	order.SetStatus(OrderPreparing)
	if order.CanBeCancelled() {
		t.Fatal("expected preparing order to be uncancellable")
	}
}

func TestValidOrderStatus(t *testing.T) {
	for _, raw := range []string{"pending", "confirmed", "preparing", "ready", "delivered", "cancelled", "refunded"} {
		if !ValidOrderStatus(raw) {
			t.Fatalf("expected %q to be valid", raw)
		}
	}
	for _, raw := range []string{"", "PENDING", "shipped"} {
		if ValidOrderStatus(raw) {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}
