package population

import (
	"fmt"

	"github.com/okian/psephos/internal/domain/model"
)

// Sentinel kinds for synthesis errors.
var (
	ErrUnknownScenario = fmt.Errorf("%w: unknown scenario", model.ErrPrecondition)
	ErrRowCount        = fmt.Errorf("%w: at least one position required", model.ErrPrecondition)
	ErrIssueCount      = fmt.Errorf("%w: at least one issue dimension required", model.ErrPrecondition)
)
