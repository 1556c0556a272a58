package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FoodItem struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	Price           float64            `bson:"price" json:"price"`
	DiscountPercent float64            `bson:"discountPercent" json:"discountPercent"`
	IsOnDiscount    bool               `bson:"-" json:"isOnDiscount"`
	Category        string             `bson:"category" json:"category"`
	ImageURL        string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	IsVegetarian    bool               `bson:"isVegetarian" json:"isVegetarian"`
	PrepTimeMinutes int                `bson:"prepTimeMinutes" json:"prepTimeMinutes"`
	IsAvailable     bool               `bson:"isAvailable" json:"isAvailable"`
	Stock           int                `bson:"stock" json:"stock"`
	InStock         bool               `bson:"-" json:"inStock"`
	IsDeleted       bool               `bson:"isDeleted" json:"isDeleted,omitempty"`
	DeletedAt       *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasActiveDiscount reports whether the item carries a usable discount
// percentage, i.e. one in (0, 100].
func (f FoodItem) HasActiveDiscount() bool {
	return f.DiscountPercent > 0 && f.DiscountPercent <= 100
}

// EffectivePrice returns the price after the item discount. Cart lines freeze
// this value at add time, so later catalog changes never reprice an existing
// line.
func (f FoodItem) EffectivePrice() float64 {
	if f.HasActiveDiscount() {
		return f.Price * (1 - f.DiscountPercent/100)
	}
	return f.Price
}
