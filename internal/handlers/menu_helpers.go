package handlers

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"canteen/internal/models"
)

func normalizeMenuItemDocument(raw bson.M) (models.FoodItem, error) {
	if val, ok := raw["stock"]; ok {
		switch typed := val.(type) {
		case int32:
			raw["stock"] = int(typed)
		case int64:
			raw["stock"] = int(typed)
		case float64:
			raw["stock"] = int(typed)
		case int:
			raw["stock"] = typed
		default:
			raw["stock"] = 0
		}
	} else {
		raw["stock"] = 0
	}

	data, err := bson.Marshal(raw)
	if err != nil {
		return models.FoodItem{}, err
	}

	var item models.FoodItem
	if err := bson.Unmarshal(data, &item); err != nil {
		return models.FoodItem{}, err
	}

	item.InStock = item.Stock > 0
	item.IsOnDiscount = item.HasActiveDiscount()

	return item, nil
}

func decodeMenuItems(ctx context.Context, cursor *mongo.Cursor) ([]models.FoodItem, error) {
	items := make([]models.FoodItem, 0)

	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}

		item, err := normalizeMenuItemDocument(raw)
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
