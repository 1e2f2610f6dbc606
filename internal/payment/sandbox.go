package payment

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// sandboxGateway approves everything except a few deterministic decline
// triggers, so checkout flows can be exercised end to end without a real
// processor.
type sandboxGateway struct{}

// NewSandboxGateway returns the gateway used in sandbox mode and in tests.
func NewSandboxGateway() Gateway {
	return sandboxGateway{}
}

func (sandboxGateway) Authorize(ctx context.Context, amount float64, paymentMethod string) (Authorization, error) {
	if err := ctx.Err(); err != nil {
		return Authorization{}, err
	}

	if amount <= 0 {
		return Authorization{Approved: false, DeclineReason: "invalid amount"}, nil
	}
	// Any method ending in "-declined" simulates a card decline.
	if strings.HasSuffix(paymentMethod, "-declined") {
		return Authorization{Approved: false, DeclineReason: "card declined"}, nil
	}

	return Authorization{
		Approved:      true,
		TransactionID: "sbx_" + uuid.NewString(),
	}, nil
}
