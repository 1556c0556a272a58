package payment

import "fmt"

type ErrorCode string

const (
	ErrInvalidAmount ErrorCode = "INVALID_AMOUNT"
	ErrInvalidMethod ErrorCode = "INVALID_METHOD"
	ErrInvalidCard   ErrorCode = "INVALID_CARD"
	ErrInvalidExpiry ErrorCode = "INVALID_EXPIRY"
	ErrInvalidCVV    ErrorCode = "INVALID_CVV"
	ErrInvalidUPI    ErrorCode = "INVALID_UPI"
	ErrDeclined      ErrorCode = "PAYMENT_DECLINED"
	ErrCancelled     ErrorCode = "CANCELLED"
	ErrInvalidRefund ErrorCode = "INVALID_REFUND"
)

// Error is the one structured error category in the payment flow: a code the
// client can branch on plus a human-readable message.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}
