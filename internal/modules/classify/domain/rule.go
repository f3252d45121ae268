package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrEmptyPattern    = errors.New("rule pattern is empty")
	ErrBadRegex        = errors.New("rule pattern is not a valid regex")
)

type Category string

const (
	CategoryProductive   Category = "productive"
	CategoryNeutral      Category = "neutral"
	CategoryUnproductive Category = "unproductive"
)

func (c Category) Validate() error {
	switch c {
	case CategoryProductive, CategoryNeutral, CategoryUnproductive:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCategory, c)
	}
}

// DefaultWeight is used when a rule carries no explicit weight.
func (c Category) DefaultWeight() float64 {
	switch c {
	case CategoryProductive:
		return 1.0
	case CategoryUnproductive:
		return 0.0
	default:
		return 0.5
	}
}

type MatchType string

const (
	MatchTitlePattern MatchType = "title_pattern"
	MatchPathPattern  MatchType = "path_pattern"
	MatchExact        MatchType = "exact"
	MatchRegex        MatchType = "regex"
	MatchSubstring    MatchType = "substring"
	MatchSubdomain    MatchType = "subdomain"
	MatchNone         MatchType = "none"
)

type PatternKind string

const (
	PatternExact PatternKind = "exact"
	PatternRegex PatternKind = "regex"
)

// Pattern is a tagged variant resolved once at rule-load time; rules
// never carry raw uncompiled strings past this point.
type Pattern struct {
	Kind  PatternKind
	Exact string
	Regex *regexp.Regexp
}

func ExactPattern(value string) Pattern {
	return Pattern{Kind: PatternExact, Exact: strings.ToLower(strings.TrimSpace(value))}
}

func RegexPattern(expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("%w: %v", ErrBadRegex, err)
	}
	return Pattern{Kind: PatternRegex, Regex: re}, nil
}

func (p Pattern) Matches(value string) bool {
	switch p.Kind {
	case PatternExact:
		return strings.ToLower(strings.TrimSpace(value)) == p.Exact
	case PatternRegex:
		return p.Regex.MatchString(value)
	default:
		return false
	}
}

// MatchesSubstring reports whether an exact pattern occurs inside
// value. Regex patterns fall back to a plain match; they already
// express their own anchoring.
func (p Pattern) MatchesSubstring(value string) bool {
	if p.Kind == PatternExact {
		return p.Exact != "" && strings.Contains(strings.ToLower(value), p.Exact)
	}
	return p.Matches(value)
}

// Rule matches a process or domain name, optionally narrowed by a
// secondary pattern over the window title or URL path.
type Rule struct {
	Primary   Pattern
	Secondary *Pattern
	Category  Category
	Weight    float64
	HasWeight bool
	Source    Source
}

type Source string

const (
	SourceBuiltin Source = "builtin"
	SourceUser    Source = "user"
)

func (r Rule) EffectiveWeight() float64 {
	if r.HasWeight {
		return r.Weight
	}
	return r.Category.DefaultWeight()
}

// AppMatch is the classification of a process/title pair.
type AppMatch struct {
	Category   Category
	Weight     float64
	MatchType  MatchType
	Confidence float64
}

// URLMatch is the classification of a URL; when present it overrides
// the app classification downstream.
type URLMatch struct {
	Domain     string
	Path       string
	Category   Category
	Weight     float64
	MatchType  MatchType
	Confidence float64
}

// UnmatchedApp is the classification-miss default: neutral, zero
// confidence. A miss is not an error.
func UnmatchedApp() AppMatch {
	return AppMatch{Category: CategoryNeutral, Weight: CategoryNeutral.DefaultWeight(), MatchType: MatchNone, Confidence: 0}
}

func UnmatchedURL(domain, path string) URLMatch {
	return URLMatch{Domain: domain, Path: path, Category: CategoryNeutral, Weight: CategoryNeutral.DefaultWeight(), MatchType: MatchNone, Confidence: 0}
}

type RuleTarget string

const (
	TargetApp RuleTarget = "app"
	TargetURL RuleTarget = "url"
)

func (t RuleTarget) Validate() error {
	switch t {
	case TargetApp, TargetURL:
		return nil
	default:
		return fmt.Errorf("unknown rule target %q", t)
	}
}

// RuleFile is the on-disk shape of a user rule pack.
type RuleFile struct {
	Apps []RuleSpec `yaml:"app_rules"`
	URLs []RuleSpec `yaml:"url_rules"`
}

// RuleSpec is the serializable form of a rule, compiled into a Rule at
// load time.
type RuleSpec struct {
	Pattern        string   `yaml:"pattern"`
	Regex          bool     `yaml:"regex,omitempty"`
	TitlePattern   string   `yaml:"title_pattern,omitempty"`
	PathPattern    string   `yaml:"path_pattern,omitempty"`
	SecondaryRegex bool     `yaml:"secondary_regex,omitempty"`
	Category       Category `yaml:"category"`
	Weight         *float64 `yaml:"weight,omitempty"`
}

func (s RuleSpec) secondary() string {
	if s.TitlePattern != "" {
		return s.TitlePattern
	}
	return s.PathPattern
}

// Compile resolves a spec into a Rule with patterns compiled once.
func (s RuleSpec) Compile(source Source) (Rule, error) {
	if strings.TrimSpace(s.Pattern) == "" {
		return Rule{}, ErrEmptyPattern
	}
	if err := s.Category.Validate(); err != nil {
		return Rule{}, err
	}

	primary := ExactPattern(s.Pattern)
	if s.Regex {
		var err error
		primary, err = RegexPattern(s.Pattern)
		if err != nil {
			return Rule{}, err
		}
	}

	rule := Rule{Primary: primary, Category: s.Category, Source: source}
	if s.Weight != nil {
		rule.Weight = *s.Weight
		rule.HasWeight = true
	}
	if raw := s.secondary(); raw != "" {
		secondary := ExactPattern(raw)
		if s.SecondaryRegex {
			var err error
			secondary, err = RegexPattern(raw)
			if err != nil {
				return Rule{}, err
			}
		}
		rule.Secondary = &secondary
	}
	return rule, nil
}
