package usecase

import (
	"context"
	"fmt"

	"worklens/internal/modules/classify/domain"
	"worklens/internal/modules/classify/dto"
	classifyin "worklens/internal/modules/classify/port/in"
	classifyout "worklens/internal/modules/classify/port/out"
	"worklens/internal/modules/classify/service"
)

type Interactor struct {
	classifier *service.Classifier
	store      classifyout.RuleStore
}

func NewInteractor(classifier *service.Classifier, store classifyout.RuleStore) *Interactor {
	return &Interactor{classifier: classifier, store: store}
}

var _ classifyin.Usecase = (*Interactor)(nil)

// LoadUserRules compiles the persisted rule pack into the classifier.
// Called once at bootstrap; a missing pack is fine.
func (i *Interactor) LoadUserRules(ctx context.Context) error {
	if i.store == nil {
		return nil
	}
	file, err := i.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load rule pack: %w", err)
	}
	appRules, err := compileSpecs(file.Apps)
	if err != nil {
		return fmt.Errorf("compile app rules: %w", err)
	}
	urlRules, err := compileSpecs(file.URLs)
	if err != nil {
		return fmt.Errorf("compile url rules: %w", err)
	}
	if len(appRules) > 0 || len(urlRules) > 0 {
		i.classifier.AddRules(appRules, urlRules)
	}
	return nil
}

func (i *Interactor) ClassifyApp(_ context.Context, input dto.ClassifyAppInput) (dto.AppOutput, error) {
	match := i.classifier.ClassifyApp(input.Process, input.Title)
	return dto.AppOutput{
		Category:   string(match.Category),
		Weight:     match.Weight,
		MatchType:  string(match.MatchType),
		Confidence: match.Confidence,
	}, nil
}

func (i *Interactor) ClassifyURL(_ context.Context, input dto.ClassifyURLInput) (dto.URLOutput, error) {
	match := i.classifier.ClassifyURL(input.URL)
	return dto.URLOutput{
		Domain:     match.Domain,
		Path:       match.Path,
		Category:   string(match.Category),
		Weight:     match.Weight,
		MatchType:  string(match.MatchType),
		Confidence: match.Confidence,
	}, nil
}

// AddRule validates, persists, and activates a user rule. Activation
// invalidates the classification caches.
func (i *Interactor) AddRule(ctx context.Context, input dto.AddRuleInput) (dto.RuleOutput, error) {
	target := domain.RuleTarget(input.Target)
	if err := target.Validate(); err != nil {
		return dto.RuleOutput{}, err
	}
	spec := domain.RuleSpec{
		Pattern:        input.Pattern,
		Regex:          input.Regex,
		TitlePattern:   input.TitlePattern,
		PathPattern:    input.PathPattern,
		SecondaryRegex: input.SecondaryRegex,
		Category:       domain.Category(input.Category),
		Weight:         input.Weight,
	}
	rule, err := spec.Compile(domain.SourceUser)
	if err != nil {
		return dto.RuleOutput{}, err
	}
	if i.store != nil {
		if err := i.store.Append(ctx, target, spec); err != nil {
			return dto.RuleOutput{}, fmt.Errorf("persist rule: %w", err)
		}
	}
	if target == domain.TargetApp {
		i.classifier.AddRules([]domain.Rule{rule}, nil)
	} else {
		i.classifier.AddRules(nil, []domain.Rule{rule})
	}
	return ruleOutput(string(target), rule), nil
}

func (i *Interactor) ListRules(_ context.Context) ([]dto.RuleOutput, error) {
	var out []dto.RuleOutput
	for _, rule := range i.classifier.AppRules() {
		out = append(out, ruleOutput("app", rule))
	}
	for _, rule := range i.classifier.URLRules() {
		out = append(out, ruleOutput("url", rule))
	}
	return out, nil
}

func compileSpecs(specs []domain.RuleSpec) ([]domain.Rule, error) {
	rules := make([]domain.Rule, 0, len(specs))
	for _, spec := range specs {
		rule, err := spec.Compile(domain.SourceUser)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func ruleOutput(target string, rule domain.Rule) dto.RuleOutput {
	out := dto.RuleOutput{
		Target:   target,
		Pattern:  patternString(rule.Primary),
		Kind:     string(rule.Primary.Kind),
		Category: string(rule.Category),
		Weight:   rule.EffectiveWeight(),
		Source:   string(rule.Source),
	}
	if rule.Secondary != nil {
		out.Secondary = patternString(*rule.Secondary)
	}
	return out
}

func patternString(p domain.Pattern) string {
	if p.Kind == domain.PatternRegex {
		return p.Regex.String()
	}
	return p.Exact
}
