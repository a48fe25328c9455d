package fairness

import (
	"fmt"

	"github.com/okian/psephos/internal/domain/model"
)

// Sentinel kinds for fairness errors.
var (
	ErrNilInput     = fmt.Errorf("%w: nil input", model.ErrPrecondition)
	ErrNoWinners    = fmt.Errorf("%w: result names no winners", model.ErrDegenerate)
	ErrNoVotesCast  = fmt.Errorf("%w: cannot compute fairness with zero votes cast", model.ErrDegenerate)
	ErrZeroDistance = fmt.Errorf("%w: mean distance to the electorate is zero", model.ErrDegenerate)
)
