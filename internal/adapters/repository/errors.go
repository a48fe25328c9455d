package repository

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrNotFound     = errors.New("run not found")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
	ErrNilRecord    = errors.New("nil run record")
)
