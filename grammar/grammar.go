package grammar

// Grammar is a frozen rule graph. It is read-only and may be shared between
// goroutines.
type Grammar struct {
	flavor Flavor
	rules  map[RuleKey]*Rule
	order  []RuleKey
	root   RuleKey
}

func (g *Grammar) Flavor() Flavor {
	return g.flavor
}

func (g *Grammar) Lexerless() bool {
	return g.flavor == Lexerless
}

// Rule returns the rule named key, or nil.
func (g *Grammar) Rule(key RuleKey) *Rule {
	return g.rules[key]
}

// Root returns the designated root rule key. It is empty when the grammar
// was built without SetRoot.
func (g *Grammar) Root() RuleKey {
	return g.root
}

// Rules returns the rule keys in declaration order.
func (g *Grammar) Rules() []RuleKey {
	return append([]RuleKey(nil), g.order...)
}
