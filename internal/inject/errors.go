package inject

import "errors"

// Sentinel errors returned by the injector. Callers wrap them with the slot
// and page involved.
var (
	ErrInvalidMarker      = errors.New("invalid slot marker")
	ErrMarkerNotFound     = errors.New("slot marker not found")
	ErrRegionUnterminated = errors.New("slot region has no end")
	ErrPageNotFound       = errors.New("template page not found")
)
