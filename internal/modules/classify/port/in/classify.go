package in

import (
	"context"

	"worklens/internal/modules/classify/dto"
)

type Usecase interface {
	ClassifyApp(ctx context.Context, input dto.ClassifyAppInput) (dto.AppOutput, error)
	ClassifyURL(ctx context.Context, input dto.ClassifyURLInput) (dto.URLOutput, error)
	AddRule(ctx context.Context, input dto.AddRuleInput) (dto.RuleOutput, error)
	ListRules(ctx context.Context) ([]dto.RuleOutput, error)
}
