// Package errors provides custom error types for catalog operations.
package errors

import "errors"

// ErrProductNotFound covers both a missing product and one owned by another
// vendor, so existence is not leaked across vendors.
var ErrProductNotFound = errors.New("product not found or unauthorized")

var ErrInsufficientStock = errors.New("insufficient stock")
