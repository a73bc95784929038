// Package domain holds the onboarding wizard state machine: states, events, the accumulated context,
// and the pure transition function that drives a session from welcome to complete.
package domain

// State is a wizard step.
type State string

const (
	StateWelcome         State = "welcome"
	StateSelectPlan      State = "selectPlan"
	StateSignup          State = "signup"
	StateCreateWorkspace State = "createWorkspace"
	StateBilling         State = "billing"
	StateComplete        State = "complete"
)

// States lists every wizard state in happy-path order.
var States = []State{
	StateWelcome,
	StateSelectPlan,
	StateSignup,
	StateCreateWorkspace,
	StateBilling,
	StateComplete,
}

// Terminal reports whether s has no outgoing transitions.
func (s State) Terminal() bool {
	return s == StateComplete
}

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	for _, known := range States {
		if s == known {
			return true
		}
	}
	return false
}

// Plan is a subscription tier chosen in the selectPlan step.
type Plan string

const (
	PlanStarter Plan = "starter"
	PlanPlus    Plan = "plus"
	PlanPro     Plan = "pro"
)

// Valid reports whether p is one of the offered plans.
func (p Plan) Valid() bool {
	switch p {
	case PlanStarter, PlanPlus, PlanPro:
		return true
	}
	return false
}
