package responder

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"
)

const (
	clockLayout    = "15:04:05"
	calendarLayout = "Monday, January 02, 2006"
)

// RuleSpec is the declarative form of a rule. Exactly one of Empty, Always or
// Keywords selects when the rule fires, and exactly one of Reply or Choices
// says what it answers.
//
// Reply templates may contain {time}, {date} and {message}.
type RuleSpec struct {
	Name     string   `yaml:"name"`
	Empty    bool     `yaml:"empty,omitempty"`
	Always   bool     `yaml:"always,omitempty"`
	Keywords []string `yaml:"keywords,omitempty"`
	Reply    string   `yaml:"reply,omitempty"`
	Choices  []string `yaml:"choices,omitempty"`
}

// Input is what a rule sees when it builds a reply.
type Input struct {
	Message string // verbatim, not lowercased
	Now     time.Time
	Picker  Picker
}

type Rule struct {
	Name  string
	Match func(lowered string) bool
	Reply func(in Input) string
}

// DefaultRuleSpecs is the built-in table, highest precedence first.
var DefaultRuleSpecs = []RuleSpec{
	{
		Name:  "empty",
		Empty: true,
		Reply: "Hello! I'm Komo AI. How can I help you today?",
	},
	{
		Name:     "greeting",
		Keywords: []string{"hello", "hi"},
		Reply:    "Hello! I'm Komo AI, your privacy-first assistant. How can I help you today?",
	},
	{
		Name:     "help",
		Keywords: []string{"help"},
		Reply:    "I'm here to help! I can assist you with various topics while keeping your privacy secure. What would you like to know?",
	},
	{
		Name:     "privacy",
		Keywords: []string{"privacy"},
		Reply:    "Privacy is my top priority! I automatically redact personal information like emails, phone numbers, and other sensitive data.",
	},
	{
		Name:     "thanks",
		Keywords: []string{"thank"},
		Reply:    "You're welcome! Feel free to ask me anything else.",
	},
	{
		Name:     "farewell",
		Keywords: []string{"bye", "goodbye"},
		Reply:    "Goodbye! Have a great day. I'm always here when you need help.",
	},
	{
		Name:     "time",
		Keywords: []string{"time"},
		Reply:    "The current server time is {time}.",
	},
	{
		Name:     "date",
		Keywords: []string{"date"},
		Reply:    "Today is {date}.",
	},
	{
		Name:     "identity",
		Keywords: []string{"who are you", "your name"},
		Reply:    "I am Komo AI, a simple but helpful virtual assistant running locally on your machine.",
	},
	{
		Name:     "question",
		Keywords: []string{"?"},
		Choices: []string{
			"That's an interesting question. I'm still learning, but I'll do my best to help.",
			"I'm not sure about that yet, but I can help with other things!",
			"Could you elaborate on that?",
			"I think the answer depends on context. Can you provide more details?",
		},
	},
	{
		Name:   "echo",
		Always: true,
		Choices: []string{
			"I understand. You said '{message}'. Tell me more.",
			"Interesting. Please go on.",
			"I see. How does that make you feel?",
			"Okay, I'm listening.",
		},
	},
}

// DefaultRules compiles DefaultRuleSpecs. The built-in table is always valid.
func DefaultRules() []Rule {
	rules, err := Compile(DefaultRuleSpecs)
	if err != nil {
		panic(fmt.Sprintf("built-in rule table is invalid: %v", err))
	}
	return rules
}

// Compile validates specs and turns them into rules, keeping their order.
// All invalid specs are reported, not just the first.
func Compile(specs []RuleSpec) ([]Rule, error) {
	var errs error
	seen := make(map[string]bool, len(specs))
	rules := make([]Rule, 0, len(specs))

	for i, spec := range specs {
		if seen[spec.Name] && spec.Name != "" {
			errs = multierror.Append(errs, fmt.Errorf("rule %d: duplicate name %q", i, spec.Name))
			continue
		}
		seen[spec.Name] = true

		rule, err := compile(spec)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("rule %d: %w", i, err))
			continue
		}
		rules = append(rules, rule)
	}

	if errs != nil {
		return nil, errs
	}
	return rules, nil
}

func compile(spec RuleSpec) (Rule, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return Rule{}, fmt.Errorf("name is required")
	}

	keywords := lo.Map(spec.Keywords, func(k string, _ int) string { return strings.ToLower(k) })
	if lo.Contains(keywords, "") {
		return Rule{}, fmt.Errorf("%s: empty keyword", spec.Name)
	}

	conditions := lo.Count([]bool{spec.Empty, spec.Always, len(keywords) > 0}, true)
	if conditions != 1 {
		return Rule{}, fmt.Errorf("%s: exactly one of empty, always or keywords must be set", spec.Name)
	}

	hasReply := spec.Reply != ""
	hasChoices := len(spec.Choices) > 0
	if hasReply == hasChoices {
		return Rule{}, fmt.Errorf("%s: exactly one of reply or choices must be set", spec.Name)
	}

	rule := Rule{Name: spec.Name}

	switch {
	case spec.Empty:
		rule.Match = func(lowered string) bool { return lowered == "" }
	case spec.Always:
		rule.Match = func(string) bool { return true }
	default:
		rule.Match = containsAny(keywords)
	}

	if hasReply {
		tmpl := spec.Reply
		rule.Reply = func(in Input) string { return render(tmpl, in) }
	} else {
		choices := append([]string(nil), spec.Choices...)
		rule.Reply = func(in Input) string { return render(choices[pick(in.Picker, len(choices))], in) }
	}

	return rule, nil
}

func containsAny(keywords []string) func(string) bool {
	return func(lowered string) bool {
		return lo.SomeBy(keywords, func(k string) bool {
			return strings.Contains(lowered, k)
		})
	}
}

// render expands placeholders in a single pass, so a message that itself
// contains "{time}" is echoed as typed.
func render(tmpl string, in Input) string {
	return strings.NewReplacer(
		"{time}", in.Now.Format(clockLayout),
		"{date}", in.Now.Format(calendarLayout),
		"{message}", in.Message,
	).Replace(tmpl)
}
