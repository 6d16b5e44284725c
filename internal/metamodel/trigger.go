package metamodel

// RuleStatus is a trigger rule's activation state.
type RuleStatus string

const (
	RuleActive   RuleStatus = "ACTIVE"
	RuleInactive RuleStatus = "INACTIVE"
)

// Rule maps a trigger firing to one action invocation.
type Rule struct {
	Action EntityPath
	Status RuleStatus
}

// Trigger is a fully loaded trigger document: its own default parameters
// plus the set of rules to fan out to when it fires. RuleOrder records
// declaration order, since Rules is a map and Go gives no iteration-order
// guarantee over it; RuleFanout must process rules in a stable,
// test-assertable order, so every store implementation is
// responsible for populating RuleOrder from whatever stable order its
// backing representation gives it.
type Trigger struct {
	Namespace   string
	Name        string
	Parameters  Parameters
	Annotations Annotations
	Rules       map[string]Rule
	RuleOrder   []string
}

// FQN returns the trigger's fully-qualified entity path.
func (t Trigger) FQN() EntityPath {
	return EntityPath{Namespace: t.Namespace, Name: t.Name}
}

// ActiveRules returns the rules with Status == RuleActive, in RuleOrder.
// Rule names present in RuleOrder but absent from Rules are skipped.
func (t Trigger) ActiveRules() []RuleName {
	out := make([]RuleName, 0, len(t.RuleOrder))
	for _, name := range t.RuleOrder {
		rule, ok := t.Rules[name]
		if !ok || rule.Status != RuleActive {
			continue
		}
		out = append(out, RuleName{Name: name, Rule: rule})
	}
	return out
}

// RuleName pairs a rule with the name it was declared under.
type RuleName struct {
	Name string
	Rule Rule
}
