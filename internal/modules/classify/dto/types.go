package dto

type ClassifyAppInput struct {
	Process string
	Title   string
}

type AppOutput struct {
	Category   string
	Weight     float64
	MatchType  string
	Confidence float64
}

type ClassifyURLInput struct {
	URL string
}

type URLOutput struct {
	Domain     string
	Path       string
	Category   string
	Weight     float64
	MatchType  string
	Confidence float64
}

type AddRuleInput struct {
	Target         string // "app" or "url"
	Pattern        string
	Regex          bool
	TitlePattern   string
	PathPattern    string
	SecondaryRegex bool
	Category       string
	Weight         *float64
}

type RuleOutput struct {
	Target    string
	Pattern   string
	Kind      string
	Secondary string
	Category  string
	Weight    float64
	Source    string
}
