// Package intent implements the keyword-rule intent classifier for inbound
// messages. Classification is deterministic and explainable: an ordered rule
// table is scanned top to bottom and the first rule with any matching keyword
// wins. There is no scoring across rules; rule order IS the policy
// (escalation requests must always beat pricing/booking/support matches).
package intent

import "strings"

// Intent labels produced by Classify.
const (
	HumanEscalation = "human_escalation"
	Pricing         = "pricing"
	Booking         = "booking"
	Support         = "support"
	Sales           = "sales"
)

// Result is a classification outcome: a coarse label plus the fixed
// confidence of the rule that produced it.
type Result struct {
	Intent     string
	Confidence float64
}

// Rule maps a set of trigger keywords to an intent label. Keywords match as
// case-insensitive substrings of the message.
type Rule struct {
	Intent     string
	Keywords   []string
	Confidence float64
}

// rules is evaluated in order; keep human_escalation first.
var rules = []Rule{
	{
		Intent:     HumanEscalation,
		Keywords:   []string{"human", "agent", "real person", "call me", "speak to someone", "talk to someone", "manager", "supervisor", "operator"},
		Confidence: 1.0,
	},
	{
		Intent:     Pricing,
		Keywords:   []string{"price", "pricing", "cost", "how much", "rate", "fee", "charge", "quote", "budget", "afford", "package", "plan"},
		Confidence: 0.85,
	},
	{
		Intent:     Booking,
		Keywords:   []string{"book", "booking", "appointment", "schedule", "meeting", "demo", "consultation", "calendar", "available", "slot"},
		Confidence: 0.85,
	},
	{
		Intent:     Support,
		Keywords:   []string{"help", "issue", "problem", "broken", "not working", "error", "bug", "fix", "complaint", "refund", "cancel"},
		Confidence: 0.8,
	},
}

// Classify maps message text to an intent label and confidence. It is pure
// and never fails: text matching no rule falls back to Sales at 0.70.
func Classify(text string) Result {
	lower := strings.ToLower(strings.TrimSpace(text))

	for _, r := range rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return Result{Intent: r.Intent, Confidence: r.Confidence}
			}
		}
	}
	return Result{Intent: Sales, Confidence: 0.7}
}

// Rules returns a copy of the active rule table in evaluation order, for
// diagnostics and analytics labeling.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}
