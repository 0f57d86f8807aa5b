package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and snapshotters return
// these (optionally wrapped) so the engine can translate them into domain
// errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: conversation does not exist in the store
// - ErrInvalidState: conversation sits in a step the flow table does not know
// - ErrTerminal: conversation already completed or cancelled
// - ErrUnavailable: snapshot backend temporarily unreachable
//
// For user input validation use the flow table's validators - those outcomes
// are responses, not errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrTerminal     = errors.New("conversation is terminal")
	ErrUnavailable  = errors.New("unavailable")
)
