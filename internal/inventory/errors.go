package inventory

import "errors"

// Sentinel errors for inventory scanning. Callers wrap them with the path
// that failed.
var (
	ErrInventoryRootNotFound = errors.New("inventory root not found")
	ErrInventoryReadFailed   = errors.New("inventory read failed")
)
