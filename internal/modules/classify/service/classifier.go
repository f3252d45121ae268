package service

import (
	"net/url"
	"strings"
	"sync"

	"worklens/internal/modules/classify/domain"
)

// Classifier evaluates app and URL rules in fixed precedence order and
// caches results by normalized input. The cache is invalidated only
// when rules are added.
type Classifier struct {
	mu       sync.RWMutex
	appRules []domain.Rule
	urlRules []domain.Rule
	appCache map[string]domain.AppMatch
	urlCache map[string]domain.URLMatch
}

func NewClassifier() *Classifier {
	return &Classifier{
		appRules: domain.BuiltinAppRules(),
		urlRules: domain.BuiltinURLRules(),
		appCache: map[string]domain.AppMatch{},
		urlCache: map[string]domain.URLMatch{},
	}
}

// AddRules prepends user rules so they win over built-ins within each
// precedence tier, and drops all cached verdicts.
func (c *Classifier) AddRules(appRules, urlRules []domain.Rule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.appRules = append(append([]domain.Rule{}, appRules...), c.appRules...)
	c.urlRules = append(append([]domain.Rule{}, urlRules...), c.urlRules...)
	c.appCache = map[string]domain.AppMatch{}
	c.urlCache = map[string]domain.URLMatch{}
}

func (c *Classifier) AppRules() []domain.Rule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Rule{}, c.appRules...)
}

func (c *Classifier) URLRules() []domain.Rule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Rule{}, c.urlRules...)
}

// ClassifyApp matches a process name and window title. Precedence:
// title-narrowed rules, then exact process match, then substring or
// regex match, then the neutral default.
func (c *Classifier) ClassifyApp(process, title string) domain.AppMatch {
	key := normalize(process) + "\x00" + normalize(title)

	c.mu.RLock()
	if match, ok := c.appCache[key]; ok {
		c.mu.RUnlock()
		return match
	}
	rules := c.appRules
	c.mu.RUnlock()

	match := matchApp(rules, process, title)

	c.mu.Lock()
	c.appCache[key] = match
	c.mu.Unlock()
	return match
}

func matchApp(rules []domain.Rule, process, title string) domain.AppMatch {
	for _, rule := range rules {
		if rule.Secondary == nil {
			continue
		}
		if rule.Primary.Matches(process) && rule.Secondary.MatchesSubstring(title) {
			return appMatch(rule, domain.MatchTitlePattern, 0.95)
		}
	}
	for _, rule := range rules {
		if rule.Secondary == nil && rule.Primary.Kind == domain.PatternExact && rule.Primary.Matches(process) {
			return appMatch(rule, domain.MatchExact, 0.9)
		}
	}
	for _, rule := range rules {
		if rule.Secondary != nil {
			continue
		}
		if rule.Primary.Kind == domain.PatternExact && rule.Primary.MatchesSubstring(process) {
			return appMatch(rule, domain.MatchSubstring, 0.7)
		}
		if rule.Primary.Kind == domain.PatternRegex && rule.Primary.Matches(process) {
			return appMatch(rule, domain.MatchRegex, 0.7)
		}
	}
	return domain.UnmatchedApp()
}

func appMatch(rule domain.Rule, matchType domain.MatchType, confidence float64) domain.AppMatch {
	return domain.AppMatch{
		Category:   rule.Category,
		Weight:     rule.EffectiveWeight(),
		MatchType:  matchType,
		Confidence: confidence,
	}
}

// ClassifyURL matches a URL. Precedence: path-narrowed rules, exact
// domain, regex domain, then base-domain fallback with a 0.9x weight
// penalty, then the neutral default.
func (c *Classifier) ClassifyURL(raw string) domain.URLMatch {
	key := normalize(raw)

	c.mu.RLock()
	if match, ok := c.urlCache[key]; ok {
		c.mu.RUnlock()
		return match
	}
	rules := c.urlRules
	c.mu.RUnlock()

	match := matchURL(rules, raw)

	c.mu.Lock()
	c.urlCache[key] = match
	c.mu.Unlock()
	return match
}

func matchURL(rules []domain.Rule, raw string) domain.URLMatch {
	host, path := splitURL(raw)

	for _, rule := range rules {
		if rule.Secondary == nil {
			continue
		}
		if rule.Primary.Matches(host) && rule.Secondary.MatchesSubstring(path) {
			return urlMatch(rule, host, path, domain.MatchPathPattern, 0.95, 1)
		}
	}
	for _, rule := range rules {
		if rule.Secondary == nil && rule.Primary.Kind == domain.PatternExact && rule.Primary.Matches(host) {
			return urlMatch(rule, host, path, domain.MatchExact, 0.9, 1)
		}
	}
	for _, rule := range rules {
		if rule.Secondary == nil && rule.Primary.Kind == domain.PatternRegex && rule.Primary.Matches(host) {
			return urlMatch(rule, host, path, domain.MatchRegex, 0.8, 1)
		}
	}
	for base := parentDomain(host); base != ""; base = parentDomain(base) {
		for _, rule := range rules {
			if rule.Secondary == nil && rule.Primary.Kind == domain.PatternExact && rule.Primary.Matches(base) {
				return urlMatch(rule, host, path, domain.MatchSubdomain, 0.7, 0.9)
			}
		}
	}
	return domain.UnmatchedURL(host, path)
}

func urlMatch(rule domain.Rule, host, path string, matchType domain.MatchType, confidence, weightScale float64) domain.URLMatch {
	return domain.URLMatch{
		Domain:     host,
		Path:       path,
		Category:   rule.Category,
		Weight:     rule.EffectiveWeight() * weightScale,
		MatchType:  matchType,
		Confidence: confidence,
	}
}

func splitURL(raw string) (host, path string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", "/"
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil || u.Hostname() == "" {
		return normalize(raw), "/"
	}
	host = strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	path = u.Path
	if path == "" {
		path = "/"
	}
	return host, path
}

// parentDomain strips the leftmost label: mail.google.com -> google.com.
// Bare second-level domains have no useful parent.
func parentDomain(host string) string {
	idx := strings.Index(host, ".")
	if idx < 0 {
		return ""
	}
	rest := host[idx+1:]
	if !strings.Contains(rest, ".") {
		return ""
	}
	return rest
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
