package types

import "errors"

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrDuplicateEmail        = errors.New("email already registered")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrConfigurationNotFound = errors.New("configuration not found")
	ErrTransactionNotFound   = errors.New("transaction not found")
	ErrNoData                = errors.New("no data found for the given criteria")
	ErrUnknownState          = errors.New("unknown state code")
	ErrStateTableMissing     = errors.New("no data table for state")
	ErrFilterColumnMissing   = errors.New("filtered column not present for state")
	ErrBadIdentifier         = errors.New("invalid column identifier")
)
