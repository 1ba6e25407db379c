// Package errors provides custom error types for order operations.
package errors

import "errors"

// ErrOrderNotFound covers both a missing order and one belonging to another
// party, so existence is not leaked across vendors or customers.
var ErrOrderNotFound = errors.New("order not found or unauthorized")

var ErrEmptyOrder = errors.New("order has no purchasable items")

// ErrInvalidTransition is returned when a status update skips a step,
// moves backwards, or leaves a terminal status.
var ErrInvalidTransition = errors.New("invalid order status transition")

var ErrInvalidStatus = errors.New("unknown order status")

var ErrCreateOrder = errors.New("failed to create order")
