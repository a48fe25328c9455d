package model

import "errors"

// Sentinel kinds for domain errors. Precondition errors mean the caller
// supplied unusable inputs; degenerate errors mean valid inputs produced
// an unscorable outcome. Specific sentinels across the domain packages
// wrap one of these two so callers can branch with errors.Is.
var (
	ErrPrecondition = errors.New("precondition violated")
	ErrDegenerate   = errors.New("degenerate result")
)

// Sentinel kinds for position matrix errors.
var (
	ErrEmptyMatrix  = errors.New("empty position matrix")
	ErrRaggedMatrix = errors.New("ragged position matrix")
	ErrNonFinite    = errors.New("non-finite position component")
	ErrUnknownIndex = errors.New("unknown candidate index")
)
