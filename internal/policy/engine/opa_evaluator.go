package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
)

const entitlementsQuery = "data.quickfy.entitlements"

// DefaultPolicy grants seats per plan and a 14-day trial when billing was skipped.
const DefaultPolicy = `package quickfy.entitlements

default max_members = 1
default trial_days = 0
default status = "active"

max_members = 3 if {
	input.plan == "starter"
}

max_members = 10 if {
	input.plan == "plus"
}

max_members = 50 if {
	input.plan == "pro"
}

trial_days = 14 if {
	not input.billing_provided
}

status = "trialing" if {
	not input.billing_provided
}
`

// fallback is used when the policy cannot be evaluated; it never grants more than the starter tier.
var fallback = Entitlements{MaxMembers: 1, TrialDays: 0, Status: "active"}

// OPAEvaluator evaluates a compiled entitlements policy.
type OPAEvaluator struct {
	query rego.PreparedEvalQuery
}

// NewOPAEvaluator compiles policy (DefaultPolicy when empty) and prepares the entitlements query.
func NewOPAEvaluator(ctx context.Context, policy string) (*OPAEvaluator, error) {
	if policy == "" {
		policy = DefaultPolicy
	}
	compiler, err := ast.CompileModules(map[string]string{"entitlements.rego": policy})
	if err != nil {
		return nil, fmt.Errorf("compile entitlements policy: %w", err)
	}
	pq, err := rego.New(
		rego.Query(entitlementsQuery),
		rego.Compiler(compiler),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare entitlements query: %w", err)
	}
	return &OPAEvaluator{query: pq}, nil
}

// EvaluateEntitlements runs the policy for in. Evaluation errors are logged and the conservative fallback is returned.
func (e *OPAEvaluator) EvaluateEntitlements(ctx context.Context, in EntitlementInput) (Entitlements, error) {
	input := map[string]interface{}{
		"plan":             in.Plan,
		"billing_provided": in.BillingProvided,
	}
	rs, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		log.Printf("policy: entitlements evaluation failed: %v, using fallback", err)
		return fallback, nil
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return fallback, nil
	}
	doc, ok := rs[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return fallback, nil
	}
	out := fallback
	if n, ok := toInt(doc["max_members"]); ok && n > 0 {
		out.MaxMembers = n
	}
	if n, ok := toInt(doc["trial_days"]); ok && n >= 0 {
		out.TrialDays = n
	}
	if s, ok := doc["status"].(string); ok && s != "" {
		out.Status = s
	}
	return out, nil
}

// HealthCheck evaluates the prepared query against a minimal input.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	rs, err := e.query.Eval(ctx, rego.EvalInput(map[string]interface{}{"plan": "starter", "billing_provided": true}))
	if err != nil {
		return fmt.Errorf("eval entitlements policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return fmt.Errorf("entitlements query returned no result")
	}
	return nil
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case float64:
		return int(n), true
	case int64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}
