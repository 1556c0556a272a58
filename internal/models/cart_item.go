package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one cart line: a frozen snapshot of a food item plus quantity,
// an absolute discount and free-text kitchen instructions.
type CartItem struct {
	CartItemID          string    `bson:"cartItemId" json:"cartItemId"`
	FoodItem            FoodItem  `bson:"foodItem" json:"foodItem"`
	Quantity            int       `bson:"quantity" json:"quantity"`
	UnitPrice           float64   `bson:"unitPrice" json:"unitPrice"`
	DiscountApplied     float64   `bson:"discountApplied" json:"discountApplied"`
	SpecialInstructions string    `bson:"specialInstructions,omitempty" json:"specialInstructions,omitempty"`
	TotalPrice          float64   `bson:"totalPrice" json:"totalPrice"`
	AddedAt             time.Time `bson:"addedAt" json:"addedAt"`
}

// NewCartItem builds a cart line from a catalog item. The unit price is the
// item's effective (discounted) price at this moment and does not change if
// the catalog item is later repriced.
func NewCartItem(item FoodItem, quantity int) CartItem {
	if quantity < 1 {
		quantity = 1
	}
	line := CartItem{
		CartItemID: uuid.New().String(),
		FoodItem:   item,
		Quantity:   quantity,
		UnitPrice:  item.EffectivePrice(),
		AddedAt:    time.Now(),
	}
	line.recalculate()
	return line
}

func (c *CartItem) recalculate() {
	total := c.UnitPrice*float64(c.Quantity) - c.DiscountApplied
	if total < 0 {
		total = 0
	}
	c.TotalPrice = total
}

// Subtotal is the pre-discount line total.
func (c CartItem) Subtotal() float64 {
	return c.UnitPrice * float64(c.Quantity)
}

// OriginalSubtotal prices the line at the catalog price, before any item
// discount frozen into UnitPrice.
func (c CartItem) OriginalSubtotal() float64 {
	return c.FoodItem.Price * float64(c.Quantity)
}

// ApplyDiscount sets an absolute discount on the line. Amounts that are not
// positive or exceed the pre-discount subtotal leave the line untouched.
func (c *CartItem) ApplyDiscount(amount float64) bool {
	if amount <= 0 || amount > c.Subtotal() {
		return false
	}
	c.DiscountApplied = amount
	c.recalculate()
	return true
}

// ApplyPercentageDiscount applies pct of the pre-discount subtotal as the
// line discount. Valid range is (0, 100].
func (c *CartItem) ApplyPercentageDiscount(pct float64) bool {
	if pct <= 0 || pct > 100 {
		return false
	}
	c.DiscountApplied = c.Subtotal() * pct / 100
	c.recalculate()
	return true
}

func (c *CartItem) RemoveDiscount() {
	c.DiscountApplied = 0
	c.recalculate()
}

func (c *CartItem) IncrementQuantity() {
	c.Quantity++
	c.recalculate()
}

// DecrementQuantity lowers the quantity, never below one. Removing a line is
// the cart's job, not the line's.
func (c *CartItem) DecrementQuantity() {
	if c.Quantity > 1 {
		c.Quantity--
		c.recalculate()
	}
}

// SetQuantity replaces the quantity. Values below one are ignored.
func (c *CartItem) SetQuantity(quantity int) bool {
	if quantity <= 0 {
		return false
	}
	c.Quantity = quantity
	c.recalculate()
	return true
}

func (c *CartItem) SetSpecialInstructions(instructions string) {
	c.SpecialInstructions = instructions
}

// SameFoodItem reports whether both lines reference the same catalog item,
// which makes them merge candidates.
func (c CartItem) SameFoodItem(other CartItem) bool {
	return c.FoodItem.ID == other.FoodItem.ID
}

// MergeWith folds another line for the same catalog item into this one,
// summing quantities and discounts. Lines for different items are rejected.
func (c *CartItem) MergeWith(other CartItem) bool {
	if !c.SameFoodItem(other) {
		return false
	}
	c.Quantity += other.Quantity
	c.DiscountApplied += other.DiscountApplied
	c.recalculate()
	return true
}

// TotalPreparationTime estimates kitchen time for the line: the item's base
// prep time plus 2 minutes for every unit beyond the first.
func (c CartItem) TotalPreparationTime() int {
	if c.Quantity <= 1 {
		return c.FoodItem.PrepTimeMinutes
	}
	return c.FoodItem.PrepTimeMinutes + 2*(c.Quantity-1)
}
