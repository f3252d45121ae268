package in

import (
	"context"

	"worklens/internal/modules/classify/dto"
	classifyin "worklens/internal/modules/classify/port/in"
)

type CLIHandler struct {
	usecase classifyin.Usecase
}

func NewCLIHandler(usecase classifyin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) ClassifyApp(ctx context.Context, process, title string) (dto.AppOutput, error) {
	return h.usecase.ClassifyApp(ctx, dto.ClassifyAppInput{Process: process, Title: title})
}

func (h CLIHandler) ClassifyURL(ctx context.Context, url string) (dto.URLOutput, error) {
	return h.usecase.ClassifyURL(ctx, dto.ClassifyURLInput{URL: url})
}

func (h CLIHandler) AddRule(ctx context.Context, input dto.AddRuleInput) (dto.RuleOutput, error) {
	return h.usecase.AddRule(ctx, input)
}

func (h CLIHandler) ListRules(ctx context.Context) ([]dto.RuleOutput, error) {
	return h.usecase.ListRules(ctx)
}
