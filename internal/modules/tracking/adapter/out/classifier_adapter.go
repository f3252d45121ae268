package out

import (
	"context"

	classifydto "worklens/internal/modules/classify/dto"
	classifyin "worklens/internal/modules/classify/port/in"
	"worklens/internal/modules/tracking/domain"
)

// ClassifierAdapter bridges the tracker's classifier port onto the
// classification module's inbound surface.
type ClassifierAdapter struct {
	usecase classifyin.Usecase
}

func NewClassifierAdapter(usecase classifyin.Usecase) *ClassifierAdapter {
	return &ClassifierAdapter{usecase: usecase}
}

func (a *ClassifierAdapter) ClassifyApp(ctx context.Context, process, title string) (domain.AppSignal, error) {
	out, err := a.usecase.ClassifyApp(ctx, classifydto.ClassifyAppInput{Process: process, Title: title})
	if err != nil {
		return domain.AppSignal{}, err
	}
	return domain.AppSignal{
		Category:   out.Category,
		Weight:     out.Weight,
		MatchType:  out.MatchType,
		Confidence: out.Confidence,
	}, nil
}

func (a *ClassifierAdapter) ClassifyURL(ctx context.Context, url string) (domain.URLSignal, error) {
	out, err := a.usecase.ClassifyURL(ctx, classifydto.ClassifyURLInput{URL: url})
	if err != nil {
		return domain.URLSignal{}, err
	}
	return domain.URLSignal{
		Domain:     out.Domain,
		Path:       out.Path,
		Category:   out.Category,
		Weight:     out.Weight,
		MatchType:  out.MatchType,
		Confidence: out.Confidence,
	}, nil
}
