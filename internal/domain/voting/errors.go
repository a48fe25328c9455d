package voting

import (
	"fmt"

	"github.com/okian/psephos/internal/domain/model"
)

// Sentinel kinds for voting errors. Each wraps one of the two domain
// kinds so callers can branch on errors.Is(err, model.ErrPrecondition)
// versus errors.Is(err, model.ErrDegenerate).
var (
	ErrNilElectorate             = fmt.Errorf("%w: nil electorate", model.ErrPrecondition)
	ErrNilCandidates             = fmt.Errorf("%w: nil candidates", model.ErrPrecondition)
	ErrNoCandidates              = fmt.Errorf("%w: at least one candidate required", model.ErrPrecondition)
	ErrIssueMismatch             = fmt.Errorf("%w: electorate and candidates disagree on issue dimensions", model.ErrPrecondition)
	ErrVotesPerVoter             = fmt.Errorf("%w: votes per voter must be at least 1", model.ErrPrecondition)
	ErrVotesExceedCandidates     = fmt.Errorf("%w: votes per voter exceeds candidate count", model.ErrPrecondition)
	ErrApathyRange               = fmt.Errorf("%w: apathy probability must be within [0,1]", model.ErrPrecondition)
	ErrApprovalsExceedCandidates = fmt.Errorf("%w: approvals per voter exceeds candidate count", model.ErrPrecondition)
	ErrUnknownRule               = fmt.Errorf("%w: unknown voting rule", model.ErrPrecondition)
	ErrSeatCount                 = fmt.Errorf("%w: seats to allocate must be at least 1", model.ErrPrecondition)

	ErrNoRemainingVotes = fmt.Errorf("%w: no remaining votes to allocate seats", model.ErrDegenerate)
	ErrNoEligible       = fmt.Errorf("%w: no candidate reached the minimum seat share", model.ErrDegenerate)
)
