package domain

// transition is one row of the wizard table: the target state and an optional context update.
type transition struct {
	target State
	assign func(Context, Event) (Context, bool)
}

var table = map[State]map[EventType]transition{
	StateWelcome: {
		EventNext: {target: StateSelectPlan},
	},
	StateSelectPlan: {
		EventSelectPlan: {target: StateSignup, assign: assignPlan},
		EventBack:       {target: StateWelcome},
	},
	StateSignup: {
		EventSubmitSignup: {target: StateCreateWorkspace, assign: assignUserData},
		EventBack:         {target: StateSelectPlan},
	},
	StateCreateWorkspace: {
		EventSubmitWorkspace: {target: StateBilling, assign: assignWorkspace},
		EventBack:            {target: StateSignup},
	},
	StateBilling: {
		EventSubmitBilling: {target: StateComplete, assign: assignBilling},
		EventSkipBilling:   {target: StateComplete},
		EventBack:          {target: StateCreateWorkspace},
	},
	StateComplete: {},
}

func assignPlan(c Context, e Event) (Context, bool) {
	if e.Plan == "" {
		return c, false
	}
	c.Plan = e.Plan
	return c, true
}

func assignUserData(c Context, e Event) (Context, bool) {
	if e.UserData == nil {
		return c, false
	}
	u := *e.UserData
	c.UserData = &u
	return c, true
}

func assignWorkspace(c Context, e Event) (Context, bool) {
	if e.WorkspaceName == "" {
		return c, false
	}
	c.WorkspaceName = e.WorkspaceName
	c.WorkspaceSlug = e.WorkspaceSlug
	return c, true
}

func assignBilling(c Context, e Event) (Context, bool) {
	if e.BillingInfo == nil {
		return c, false
	}
	b := *e.BillingInfo
	c.BillingInfo = &b
	return c, true
}

// Transition applies e to (s, c). It never fails: an event with no row for s, or a SUBMIT_* event
// without its payload, leaves state and context untouched and reports ok=false.
// A taken transition clears Context.Error. BACK only moves the state; earlier answers stay in place.
func Transition(s State, c Context, e Event) (State, Context, bool) {
	row, ok := table[s][e.Type]
	if !ok {
		return s, c, false
	}
	next := c.Clone()
	if row.assign != nil {
		var applied bool
		next, applied = row.assign(next, e)
		if !applied {
			return s, c, false
		}
	}
	next.Error = ""
	return row.target, next, true
}

// Accepts reports whether s has a registered transition for t.
func Accepts(s State, t EventType) bool {
	_, ok := table[s][t]
	return ok
}

// AllowedEvents returns the event types s accepts, in EventTypes order.
func AllowedEvents(s State) []EventType {
	var out []EventType
	for _, t := range EventTypes {
		if Accepts(s, t) {
			out = append(out, t)
		}
	}
	return out
}
