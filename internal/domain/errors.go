package domain

import "errors"

// Domain error taxonomy. Services return these (usually wrapped with
// context via fmt.Errorf and %w); the gateway maps them onto HTTP status
// codes and never exposes raw storage errors to clients.
var (
	// ErrNotFound: a referenced sale/product/customer/branch/receivable
	// does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidReference: the referenced entity exists but cannot be used
	// (product not IN_STOCK, category mismatch).
	ErrInvalidReference = errors.New("invalid reference")

	// ErrInvalidState: the operation is not allowed in the aggregate's
	// current status.
	ErrInvalidState = errors.New("invalid state for operation")

	// ErrOverpayment: a payment would push paidAmount past the total.
	ErrOverpayment = errors.New("payment amount exceeds total amount")

	// ErrInvalidAmount: a refund or payment amount is out of range.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrNegativeStock: an adjustment would drive a quantity below zero.
	ErrNegativeStock = errors.New("adjustment would result in negative quantity")

	// ErrConstraint: duplicate invoice number or foreign-key conflict,
	// translated from storage-layer error codes.
	ErrConstraint = errors.New("constraint violation")

	// ErrValidation: request payload failed a domain-level check.
	ErrValidation = errors.New("validation failed")
)
