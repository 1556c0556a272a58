package cart

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"canteen/internal/models"
)

func TestSnapshotRoundTrip(t *testing.T) {
	item := models.FoodItem{
		ID:       primitive.NewObjectID(),
		Name:     "Samosa",
		Price:    100,
		Category: "Snacks",
	}
	snap := NewSnapshot("u1", []models.CartItem{models.NewCartItem(item, 2)})

	if snap.Version != SnapshotVersion {
		t.Fatalf("expected version %d, got %d", SnapshotVersion, snap.Version)
	}

	data, err := EncodeSnapshot(snap)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	decoded, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.UserID != "u1" || len(decoded.Items) != 1 {
		t.Fatalf("unexpected snapshot: %+v", decoded)
	}
	if decoded.Items[0].TotalPrice != 200 {
		t.Fatalf("expected line total 200, got %v", decoded.Items[0].TotalPrice)
	}
}

func TestDecodeSnapshotRejectsUnknownVersion(t *testing.T) {
	if _, err := DecodeSnapshot([]byte(`{"version":2,"userId":"u1","items":[]}`)); err == nil {
		t.Fatal("expected unknown version to be rejected")
	}
}

func TestDecodeSnapshotRejectsGarbage(t *testing.T) {
	if _, err := DecodeSnapshot([]byte("{broken")); err == nil {
		t.Fatal("expected garbage to be rejected")
	}
}
