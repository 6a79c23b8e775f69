package entities

import "errors"

// Error kinds shared by the store gateway, the linkage engine and the
// transition validator. Callers test for them with errors.Is.
var (
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrReferentialConflict = errors.New("referential conflict")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrNotFound            = errors.New("not found")

	ErrUnknownStatus = errors.New("unknown status")
	ErrInvalidValue  = errors.New("invalid value")
)
