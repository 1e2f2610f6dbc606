// Package payment defines the contract with the external payment gateway.
// The service layer only sees the two-state pending -> settled shape: a call
// returns either an approval with a transaction id or a decline with a
// reason.
package payment

import (
	"context"
	"errors"
)

var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// Authorization is the settled result of an authorize call.
type Authorization struct {
	Approved      bool
	TransactionID string
	DeclineReason string
}

// Gateway authorizes a charge against a payment method.
type Gateway interface {
	Authorize(ctx context.Context, amount float64, paymentMethod string) (Authorization, error)
}
