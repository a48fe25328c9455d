package voting

import (
	"context"
	"fmt"
	"sort"

	"github.com/okian/psephos/internal/domain/model"
)

// Rule names accepted by New.
const (
	NamePlurality    = "plurality"
	NameMajority     = "majority"
	NameApproval     = "approval"
	NameProportional = "proportional"
)

// Rule elects winners from an electorate and a candidate set. A rule
// holds its own configuration and performs one or more allocation
// passes per Elect call. Implementations are safe for concurrent use
// only when each call is given its own random source.
type Rule interface {
	// Name returns the registry name of the rule.
	Name() string
	// Elect runs the rule to completion, honoring ctx between passes.
	Elect(ctx context.Context, electorate *model.Electorate, candidates *model.Candidates) (*model.ElectionResult, error)
}

// rules is the closed set of supported voting systems. Adding a rule
// means adding a constructor here, not subclassing anything.
var rules = map[string]func(...Option) Rule{
	NamePlurality:    func(opts ...Option) Rule { return NewPlurality(opts...) },
	NameMajority:     func(opts ...Option) Rule { return NewMajority(opts...) },
	NameApproval:     func(opts ...Option) Rule { return NewApproval(opts...) },
	NameProportional: func(opts ...Option) Rule { return NewProportional(opts...) },
}

// New builds a rule by registry name.
func New(name string, opts ...Option) (Rule, error) {
	build, ok := rules[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRule, name)
	}
	return build(opts...), nil
}

// Supported returns the registry names in ascending order.
func Supported() []string {
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
