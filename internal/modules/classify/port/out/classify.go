package out

import (
	"context"

	"worklens/internal/modules/classify/domain"
)

// RuleStore persists user-supplied rule specs.
type RuleStore interface {
	Load(ctx context.Context) (domain.RuleFile, error)
	Append(ctx context.Context, target domain.RuleTarget, spec domain.RuleSpec) error
}
