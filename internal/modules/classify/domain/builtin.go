package domain

// Built-in rule tables. User rules are evaluated ahead of these.

func weight(v float64) *float64 { return &v }

var builtinAppSpecs = []RuleSpec{
	{Pattern: "code", Category: CategoryProductive},
	{Pattern: "vs code", Category: CategoryProductive},
	{Pattern: "visual studio code", Category: CategoryProductive},
	{Pattern: "goland", Category: CategoryProductive},
	{Pattern: "intellij idea", Category: CategoryProductive},
	{Pattern: "xcode", Category: CategoryProductive},
	{Pattern: "terminal", Category: CategoryProductive},
	{Pattern: "iterm2", Category: CategoryProductive},
	{Pattern: "vim", Category: CategoryProductive},
	{Pattern: "figma", Category: CategoryProductive, Weight: weight(0.9)},
	{Pattern: "notion", Category: CategoryProductive, Weight: weight(0.8)},
	{Pattern: "slack", Category: CategoryNeutral},
	{Pattern: "microsoft teams", Category: CategoryNeutral},
	{Pattern: "zoom.us", Category: CategoryNeutral},
	{Pattern: "mail", Category: CategoryNeutral},
	{Pattern: "discord", Category: CategoryNeutral, Weight: weight(0.3)},
	{Pattern: "steam", Category: CategoryUnproductive},
	// Title narrows the verdict for otherwise-neutral hosts.
	{Pattern: `.*`, Regex: true, TitlePattern: `(?i)netflix|youtube`, SecondaryRegex: true, Category: CategoryUnproductive},
}

var builtinURLSpecs = []RuleSpec{
	// Path-specific rules take the highest precedence tier.
	{Pattern: "reddit.com", PathPattern: `^/r/(golang|programming|devops)`, SecondaryRegex: true, Category: CategoryProductive, Weight: weight(0.7)},
	{Pattern: "youtube.com", PathPattern: `^/(playlist|feed/subscriptions)`, SecondaryRegex: true, Category: CategoryUnproductive},
	{Pattern: "github.com", Category: CategoryProductive},
	{Pattern: "gitlab.com", Category: CategoryProductive},
	{Pattern: "stackoverflow.com", Category: CategoryProductive},
	{Pattern: "go.dev", Category: CategoryProductive},
	{Pattern: "pkg.go.dev", Category: CategoryProductive},
	{Pattern: "docs.google.com", Category: CategoryProductive, Weight: weight(0.8)},
	{Pattern: "mail.google.com", Category: CategoryNeutral},
	{Pattern: "calendar.google.com", Category: CategoryNeutral},
	{Pattern: `.*\.atlassian\.net`, Regex: true, Category: CategoryProductive, Weight: weight(0.9)},
	{Pattern: "youtube.com", Category: CategoryUnproductive},
	{Pattern: "netflix.com", Category: CategoryUnproductive},
	{Pattern: "facebook.com", Category: CategoryUnproductive},
	{Pattern: "instagram.com", Category: CategoryUnproductive},
	{Pattern: "twitter.com", Category: CategoryUnproductive},
	{Pattern: "x.com", Category: CategoryUnproductive},
	{Pattern: "reddit.com", Category: CategoryUnproductive, Weight: weight(0.2)},
}

// BuiltinAppRules compiles the built-in app table. Specs are vetted by
// tests, so compile errors are treated as programmer mistakes.
func BuiltinAppRules() []Rule {
	return mustCompile(builtinAppSpecs)
}

func BuiltinURLRules() []Rule {
	return mustCompile(builtinURLSpecs)
}

func mustCompile(specs []RuleSpec) []Rule {
	rules := make([]Rule, 0, len(specs))
	for _, spec := range specs {
		rule, err := spec.Compile(SourceBuiltin)
		if err != nil {
			panic("builtin rule table: " + err.Error())
		}
		rules = append(rules, rule)
	}
	return rules
}
