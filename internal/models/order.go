package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"canteen/internal/pricing"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
	OrderRefunded  OrderStatus = "refunded"
)

type DeliveryType string

const (
	DeliveryPickup   DeliveryType = "pickup"
	DeliveryDelivery DeliveryType = "delivery"
)

var ErrOrderTerminal = errors.New("order is in a terminal state")

// OrderAddress captures where a delivery order goes.
type OrderAddress struct {
	Title  string `bson:"title" json:"title"`
	Detail string `bson:"detail" json:"detail"`
	Note   string `bson:"note,omitempty" json:"note,omitempty"`
}

// Order is the persisted order document: a frozen copy of the cart lines at
// checkout plus a status/payment lifecycle.
type Order struct {
	ID              primitive.ObjectID    `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID    `bson:"userId" json:"userId"`
	Items           []CartItem            `bson:"items" json:"items"`
	TotalAmount     float64               `bson:"totalAmount" json:"totalAmount"`
	DiscountAmount  float64               `bson:"discountAmount" json:"discountAmount"`
	TaxAmount       float64               `bson:"taxAmount" json:"taxAmount"`
	DeliveryCharges float64               `bson:"deliveryCharges" json:"deliveryCharges"`
	FinalAmount     float64               `bson:"finalAmount" json:"finalAmount"`
	Status          OrderStatus           `bson:"status" json:"status"`
	DeliveryType    DeliveryType          `bson:"deliveryType" json:"deliveryType"`
	Address         *OrderAddress         `bson:"address,omitempty" json:"address,omitempty"`
	PaymentMethod   string                `bson:"paymentMethod" json:"paymentMethod"`
	Payment         *PaymentResult        `bson:"payment,omitempty" json:"payment,omitempty"`
	PrepTimeMinutes int                   `bson:"prepTimeMinutes" json:"prepTimeMinutes"`
	StatusTimes     map[string]time.Time  `bson:"statusTimes" json:"statusTimes"`
	CreatedAt       time.Time             `bson:"createdAt" json:"createdAt"`
	LastUpdatedAt   time.Time             `bson:"lastUpdatedAt" json:"lastUpdatedAt"`
}

// NewOrder snapshots the given cart lines into a pending order. The lines are
// copied so later cart mutation cannot reach into a placed order.
func NewOrder(userID primitive.ObjectID, items []CartItem, deliveryType DeliveryType, policy pricing.Policy) Order {
	now := time.Now()
	copied := make([]CartItem, len(items))
	copy(copied, items)

	order := Order{
		UserID:       userID,
		Items:        copied,
		Status:       OrderPending,
		DeliveryType: deliveryType,
		StatusTimes:  map[string]time.Time{string(OrderPending): now},
		CreatedAt:    now,
		LastUpdatedAt: now,
	}
	order.CalculateTotals(policy)
	return order
}

// CalculateTotals recomputes every derived amount from the held lines. Tax is
// always 8% of the line subtotal (per the policy), and the final amount never
// goes negative however large the discount is.
func (o *Order) CalculateTotals(policy pricing.Policy) {
	total := 0.0
	prep := 0
	for _, item := range o.Items {
		total += item.TotalPrice
		if t := item.TotalPreparationTime(); t > prep {
			prep = t
		}
	}
	o.TotalAmount = total
	// Kitchen lines cook in parallel, so the order estimate is the slowest
	// line, not the sum.
	o.PrepTimeMinutes = prep
	o.TaxAmount = policy.Tax(o.TotalAmount)
	o.DeliveryCharges = policy.DeliveryCharge(o.TotalAmount, o.DeliveryType == DeliveryDelivery)
	o.refreshFinalAmount()
}

func (o *Order) refreshFinalAmount() {
	final := o.TotalAmount - o.DiscountAmount + o.TaxAmount + o.DeliveryCharges
	if final < 0 {
		final = 0
	}
	o.FinalAmount = final
}

// ApplyOrderDiscount sets the order-level discount and refreshes the final
// amount.
func (o *Order) ApplyOrderDiscount(amount float64) {
	if amount < 0 {
		amount = 0
	}
	o.DiscountAmount = amount
	o.refreshFinalAmount()
}

// SetDeliveryType switches pickup/delivery and reprices the delivery charge
// through the policy.
func (o *Order) SetDeliveryType(deliveryType DeliveryType, policy pricing.Policy) {
	o.DeliveryType = deliveryType
	o.DeliveryCharges = policy.DeliveryCharge(o.TotalAmount, deliveryType == DeliveryDelivery)
	o.refreshFinalAmount()
	o.LastUpdatedAt = time.Now()
}

// IsTerminal reports whether no further status change is allowed.
func (o Order) IsTerminal() bool {
	switch o.Status {
	case OrderDelivered, OrderCancelled, OrderRefunded:
		return true
	}
	return false
}

// CanBeCancelled is true only while the kitchen has not started.
func (o Order) CanBeCancelled() bool {
	return o.Status == OrderPending || o.Status == OrderConfirmed
}

// SetStatus moves the order to a new status. The first time a status is
// reached its timestamp is stamped; re-entering a status later never
// overwrites that first stamp. Transitions out of a terminal status are
// rejected.
func (o *Order) SetStatus(status OrderStatus) error {
	if o.IsTerminal() && status != o.Status {
		return ErrOrderTerminal
	}

	now := time.Now()
	o.Status = status
	if o.StatusTimes == nil {
		o.StatusTimes = make(map[string]time.Time)
	}
	if _, stamped := o.StatusTimes[string(status)]; !stamped {
		o.StatusTimes[string(status)] = now
	}
	o.LastUpdatedAt = now
	return nil
}

// ValidOrderStatus reports whether the raw value names a known status.
func ValidOrderStatus(raw string) bool {
	switch OrderStatus(raw) {
	case OrderPending, OrderConfirmed, OrderPreparing, OrderReady,
		OrderDelivered, OrderCancelled, OrderRefunded:
		return true
	}
	return false
}
