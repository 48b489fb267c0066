package talon

import "errors"

var (
	ErrNoStore        = errors.New("talon: no credential store configured")
	ErrBadConcurrency = errors.New("talon: derivation concurrency must be positive")
	ErrBadDecoyHash   = errors.New("talon: decoy hash does not parse")
)
