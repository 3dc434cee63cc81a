package dialogue

import "order-chatbot/internal/textnorm"

var (
	// StatusPhrases mark a question about an existing order.
	StatusPhrases = []string{"estado", "está", "cómo va", "situación"}

	// FAQPhrases mark a general question.
	FAQPhrases = []string{
		"horario",
		"envío",
		"devolución",
		"garantía",
		"pago",
		"política de",
		"información sobre",
		"atienden",
		"aceptan",
	}
)

// Rule names, as reported by Resolve.
const (
	RuleStickyOrderFlow = "sticky-order-flow"
	RuleFAQPhrase       = "faq-phrase"
	RuleStatusPhrase    = "status-phrase"
	RuleNLU             = "nlu"
)

// Turn is what the resolver sees of one message.
type Turn struct {
	NLUIntent string
	Message   string
	Entities  []Entity
	Prior     Slots
}

// Rule forces Intent when Match holds. Rules run in order; the first match wins.
type Rule struct {
	Name   string
	Match  func(Turn) bool
	Intent Intent
}

// Resolver decides which action a turn is routed to.
type Resolver struct {
	rules []Rule
}

// NewResolver returns the resolver with the production rule order:
// an order in progress wins, then FAQ phrasing, then status phrasing,
// then the model's own label.
func NewResolver() *Resolver {
	return &Resolver{rules: []Rule{
		{
			Name:   RuleStickyOrderFlow,
			Match:  func(t Turn) bool { return !t.Prior.Empty() },
			Intent: IntentCreateOrder,
		},
		{
			Name:   RuleFAQPhrase,
			Match:  matchFAQ,
			Intent: IntentAnswerFAQ,
		},
		{
			Name:   RuleStatusPhrase,
			Match:  matchStatus,
			Intent: IntentQueryOrder,
		},
	}}
}

// NewResolverWithRules is for callers that need a different precedence.
func NewResolverWithRules(rules []Rule) *Resolver {
	return &Resolver{rules: rules}
}

// Resolve returns the intent to act on and the rule that chose it.
func (r *Resolver) Resolve(t Turn) (Intent, string) {
	for _, rule := range r.rules {
		if rule.Match(t) {
			return rule.Intent, rule.Name
		}
	}
	return ParseIntent(t.NLUIntent), RuleNLU
}

func matchStatus(t Turn) bool {
	return textnorm.ContainsAny(t.Message, StatusPhrases)
}

// matchFAQ holds for FAQ phrasing unless the turn reads as a direct order:
// the intent after status correction is CreateOrder and a product was named.
func matchFAQ(t Turn) bool {
	if !textnorm.ContainsAny(t.Message, FAQPhrases) {
		return false
	}
	current := ParseIntent(t.NLUIntent)
	if matchStatus(t) {
		current = IntentQueryOrder
	}
	return !(current == IntentCreateOrder && HasCategory(t.Entities, CategoryProduct))
}
