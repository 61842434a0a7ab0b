package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ApplyPayment is the shared payment-recorder arithmetic used by both the
// sale and receivables surfaces: it validates a payment against the running
// paid amount and returns the new paid total. The bound 0 <= paid <= total
// holds before and after.
func ApplyPayment(currentPaid, total, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("%w: payment must be positive", ErrInvalidAmount)
	}
	newPaid := currentPaid.Add(amount)
	if newPaid.GreaterThan(total) {
		return decimal.Zero, ErrOverpayment
	}
	return newPaid, nil
}

// DeriveReceivableStatus derives PAID/PARTIAL/PENDING from the paid/total
// pair. OVERDUE is never derived here; it is stamped externally when the
// due date passes.
func DeriveReceivableStatus(paid, amount decimal.Decimal) ReceivableStatus {
	switch {
	case paid.GreaterThanOrEqual(amount):
		return ReceivablePaid
	case paid.GreaterThan(decimal.Zero):
		return ReceivablePartial
	default:
		return ReceivablePending
	}
}
