package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNormalizeMenuItemDocumentStockTypes(t *testing.T) {
	cases := []struct {
		name  string
		stock interface{}
		want  int
	}{
		{"int32", int32(7), 7},
		{"int64", int64(12), 12},
		{"float64", float64(3), 3},
		{"string falls back to zero", "lots", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := bson.M{
				"_id":   primitive.NewObjectID(),
				"name":  "Samosa",
				"price": 100.0,
				"stock": tc.stock,
			}
			item, err := normalizeMenuItemDocument(raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if item.Stock != tc.want {
				t.Fatalf("expected stock %d, got %d", tc.want, item.Stock)
			}
			if item.InStock != (tc.want > 0) {
				t.Fatalf("expected inStock %v for stock %d", tc.want > 0, tc.want)
			}
		})
	}
}

func TestNormalizeMenuItemDocumentMissingStock(t *testing.T) {
	raw := bson.M{
		"_id":   primitive.NewObjectID(),
		"name":  "Chai",
		"price": 20.0,
	}
	item, err := normalizeMenuItemDocument(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Stock != 0 || item.InStock {
		t.Fatalf("expected zero stock and inStock=false, got %d %v", item.Stock, item.InStock)
	}
}

func TestNormalizeMenuItemDocumentDiscountFlag(t *testing.T) {
	raw := bson.M{
		"_id":             primitive.NewObjectID(),
		"name":            "Dosa",
		"price":           80.0,
		"discountPercent": 15.0,
		"stock":           int32(5),
	}
	item, err := normalizeMenuItemDocument(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !item.IsOnDiscount {
		t.Fatal("expected isOnDiscount for a 15% discount")
	}
	if got := item.EffectivePrice(); got != 68 {
		t.Fatalf("expected effective price 68, got %v", got)
	}

	raw["discountPercent"] = 0.0
	item, err = normalizeMenuItemDocument(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.IsOnDiscount {
		t.Fatal("expected no discount flag at 0%")
	}
}
