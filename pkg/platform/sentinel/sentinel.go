package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and clients return these
// (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in the store or on the ledger
// - ErrConflict: a uniqueness constraint rejected the write
// - ErrInvalidState: entity in wrong state for the requested transition
// - ErrUnavailable: external system (ledger, content store, renderer) down
// - ErrTimeout: bounded wait elapsed before the operation completed
//
// For validation errors (bad input, missing fields), use pkg/domain-errors
// directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
	ErrTimeout      = errors.New("timeout")
)
