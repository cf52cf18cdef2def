// Package responder picks a canned reply for a chat utterance by walking an
// ordered keyword table. The first matching rule wins.
package responder

import (
	"math/rand"
	"strings"
	"time"

	"github.com/samber/lo"
)

// ModelName identifies this responder in every chat response.
const ModelName = "Komo-AI-Simple"

// fallbackReply is used only when a custom table has no catch-all rule.
const fallbackReply = "Okay, I'm listening."

// Picker chooses an index in [0, n).
type Picker interface {
	Pick(n int) int
}

type PickerFunc func(n int) int

func (f PickerFunc) Pick(n int) int { return f(n) }

// RandomPicker picks uniformly and is safe for concurrent use.
var RandomPicker Picker = PickerFunc(rand.Intn)

type Clock func() time.Time

type Responder struct {
	rules  []Rule
	picker Picker
	clock  Clock
}

type Option func(*Responder)

func WithPicker(p Picker) Option {
	return func(r *Responder) { r.picker = p }
}

func WithClock(c Clock) Option {
	return func(r *Responder) { r.clock = c }
}

func New(rules []Rule, opts ...Option) *Responder {
	r := &Responder{
		rules:  rules,
		picker: RandomPicker,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Respond returns the reply of the first rule whose predicate accepts the
// lowercased utterance.
func (r *Responder) Respond(utterance string) string {
	lowered := strings.ToLower(utterance)
	for _, rule := range r.rules {
		if rule.Match(lowered) {
			return rule.Reply(Input{
				Message: utterance,
				Now:     r.clock(),
				Picker:  r.picker,
			})
		}
	}
	return fallbackReply
}

// Match reports which rule would answer the utterance, or "" if none does.
func (r *Responder) Match(utterance string) string {
	lowered := strings.ToLower(utterance)
	rule, ok := lo.Find(r.rules, func(rule Rule) bool { return rule.Match(lowered) })
	if !ok {
		return ""
	}
	return rule.Name
}

// RuleNames lists the table in evaluation order.
func (r *Responder) RuleNames() []string {
	return lo.Map(r.rules, func(rule Rule, _ int) string { return rule.Name })
}

// Now exposes the responder's clock so callers stamp responses consistently.
func (r *Responder) Now() time.Time {
	return r.clock()
}

// pick guards against pickers that return an index out of range.
func pick(p Picker, n int) int {
	if p == nil {
		p = RandomPicker
	}
	i := p.Pick(n)
	if i < 0 || i >= n {
		return 0
	}
	return i
}
