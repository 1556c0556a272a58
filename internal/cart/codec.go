package cart

import (
	"encoding/json"
	"fmt"
	"time"

	"canteen/internal/models"
)

// SnapshotVersion is bumped whenever the persisted cart layout changes, so
// format changes are tracked in one place instead of field-by-field reads.
const SnapshotVersion = 1

// Snapshot is the persisted form of a cart, shared by the session store and
// the per-user mirror document.
type Snapshot struct {
	Version int               `json:"version" bson:"version"`
	UserID  string            `json:"userId" bson:"userId"`
	Items   []models.CartItem `json:"items" bson:"items"`
	SavedAt time.Time         `json:"savedAt" bson:"savedAt"`
}

func NewSnapshot(userID string, items []models.CartItem) Snapshot {
	return Snapshot{
		Version: SnapshotVersion,
		UserID:  userID,
		Items:   items,
		SavedAt: time.Now(),
	}
}

func EncodeSnapshot(snap Snapshot) ([]byte, error) {
	return json.Marshal(snap)
}

// DecodeSnapshot parses a stored cart blob. Unknown versions are rejected;
// callers treat any decode failure as an empty cart.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, err
	}
	if snap.Version != SnapshotVersion {
		return Snapshot{}, fmt.Errorf("unsupported cart snapshot version %d", snap.Version)
	}
	return snap, nil
}
