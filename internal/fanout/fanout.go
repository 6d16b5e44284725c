// Package fanout implements RuleFanout (C6): concurrent per-rule invocation
// for a fired trigger, with outcomes classified and collected in rule
// declaration order.
package fanout

import (
	"context"
	"net/http"
	"sync"

	"github.com/actionmesh/metacontrol/internal/activationclient"
	"github.com/actionmesh/metacontrol/internal/metamodel"
	"github.com/actionmesh/metacontrol/internal/security"
	"github.com/actionmesh/metacontrol/internal/telemetry"
)

// Fanout drives concurrent rule invocation for RuleFanout (C6).
type Fanout struct {
	client *activationclient.Client
}

// New returns a Fanout that invokes rule actions through client.
func New(client *activationclient.Client) *Fanout {
	return &Fanout{client: client}
}

// RuleOutcome pairs one rule's classification with the action it targeted.
type RuleOutcome struct {
	RuleName   string
	ActionName string
	Outcome    metamodel.ActivationOutcome
}

// Fire filters trigger's rules to ACTIVE, merges trigger.Parameters with
// payload (payload overriding), and invokes every active rule's action
// concurrently using caller's credentials — not the system identity, since
// fan-out acts on the firing caller's own authority. One rule's failure
// never cancels the others. Results are returned in the trigger's declared
// rule order, not completion order.
func (f *Fanout) Fire(ctx context.Context, caller metamodel.Identity, trigger metamodel.Trigger, payload metamodel.Parameters) []RuleOutcome {
	active := trigger.ActiveRules()
	if len(active) == 0 {
		return nil
	}

	ctx, fanoutSpan := telemetry.StartFanoutSpan(ctx, trigger.Namespace, trigger.Name, len(active))
	defer fanoutSpan.End()

	body := metamodel.NewOrderedObject()
	body.SetAll(trigger.Parameters)
	body.SetAll(payload)

	results := make([]RuleOutcome, len(active))
	var wg sync.WaitGroup
	for i, rule := range active {
		wg.Add(1)
		go func(i int, rule metamodel.RuleName) {
			defer wg.Done()
			ruleCtx, ruleSpan := telemetry.StartRuleInvokeSpan(ctx, rule.Name, rule.Rule.Action.String())
			defer ruleSpan.End()
			outcome, err := f.client.Invoke(ruleCtx, caller, rule.Rule.Action, body)
			if err != nil {
				outcome = metamodel.Failure(0, err.Error())
			}
			results[i] = RuleOutcome{RuleName: rule.Name, ActionName: rule.Rule.Action.String(), Outcome: outcome}
		}(i, rule)
	}
	wg.Wait()

	return results
}

// Classify maps a rule's outcome to the log level and message: 200/202 →
// INFO referencing the activation id; 404 → ERROR "action not found";
// non-2xx with a JSON error body → ERROR with that message; any other
// non-2xx → ERROR with the raw response text; a transport exception →
// ERROR with its cause.
func Classify(outcome metamodel.ActivationOutcome) (metamodel.LogLevel, string) {
	switch outcome.Kind {
	case metamodel.OutcomeSuccess, metamodel.OutcomePending:
		return metamodel.LogInfo, "invoked, activationId=" + outcome.ActivationIDHint()
	case metamodel.OutcomeFailure:
		if outcome.Cause.Status == http.StatusNotFound {
			return metamodel.LogError, "action not found"
		}
		return metamodel.LogError, security.SanitizeActionResult(outcome.Cause.Message, 2048)
	default:
		return metamodel.LogError, "unknown outcome"
	}
}

