package models

import "time"

type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentUPI  PaymentMethod = "upi"
	PaymentCash PaymentMethod = "cash"
)

// PaymentResult is the outcome of one gateway attempt. It is only persisted
// as part of the order it paid for.
type PaymentResult struct {
	TransactionID string        `bson:"transactionId" json:"transactionId"`
	AuthCode      string        `bson:"authCode,omitempty" json:"authCode,omitempty"`
	GatewayRef    string        `bson:"gatewayRef,omitempty" json:"gatewayRef,omitempty"`
	Method        PaymentMethod `bson:"method" json:"method"`
	Amount        float64       `bson:"amount" json:"amount"`
	ProcessingFee float64       `bson:"processingFee" json:"processingFee"`
	RefundID      string        `bson:"refundId,omitempty" json:"refundId,omitempty"`
	ProcessedAt   time.Time     `bson:"processedAt" json:"processedAt"`
}

func ValidPaymentMethod(raw string) bool {
	switch PaymentMethod(raw) {
	case PaymentCard, PaymentUPI, PaymentCash:
		return true
	}
	return false
}
