package service

import (
	"errors"
	"fmt"

	"github.com/okian/psephos/internal/domain/model"
)

// Sentinel errors for submission handling. ErrInvalidSpec wraps the
// domain precondition kind so transport layers can translate rejected
// specs without importing this package.
var (
	ErrInvalidSpec = fmt.Errorf("invalid run spec: %w", model.ErrPrecondition)
	ErrNotStarted  = errors.New("service not started")
)
