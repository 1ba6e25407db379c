// Package errors provides custom error types for user-related operations.
package errors

import "errors"

var ErrUserNotFound = errors.New("user not found")
var ErrEmailAlreadyExists = errors.New("email already registered")
var ErrInvalidCredentials = errors.New("invalid email or password")
var ErrNotVendor = errors.New("user is not a vendor")
