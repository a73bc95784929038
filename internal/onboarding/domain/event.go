package domain

// EventType names a wizard event.
type EventType string

const (
	EventNext            EventType = "NEXT"
	EventBack            EventType = "BACK"
	EventSelectPlan      EventType = "SELECT_PLAN"
	EventSubmitSignup    EventType = "SUBMIT_SIGNUP"
	EventSubmitWorkspace EventType = "SUBMIT_WORKSPACE"
	EventSubmitBilling   EventType = "SUBMIT_BILLING"
	EventSkipBilling     EventType = "SKIP_BILLING"
)

// EventTypes lists every event the machine knows about.
var EventTypes = []EventType{
	EventNext,
	EventBack,
	EventSelectPlan,
	EventSubmitSignup,
	EventSubmitWorkspace,
	EventSubmitBilling,
	EventSkipBilling,
}

// Event is a wizard event with its already-validated payload. Only the field matching Type is read.
type Event struct {
	Type          EventType
	Plan          Plan
	UserData      *UserData
	WorkspaceName string
	WorkspaceSlug string
	BillingInfo   *BillingInfo
}

// Next returns a NEXT event.
func Next() Event { return Event{Type: EventNext} }

// Back returns a BACK event.
func Back() Event { return Event{Type: EventBack} }

// SelectPlan returns a SELECT_PLAN event for plan.
func SelectPlan(plan Plan) Event { return Event{Type: EventSelectPlan, Plan: plan} }

// SubmitSignup returns a SUBMIT_SIGNUP event carrying data.
func SubmitSignup(data UserData) Event { return Event{Type: EventSubmitSignup, UserData: &data} }

// SubmitWorkspace returns a SUBMIT_WORKSPACE event. slug may be empty when the caller does not derive one.
func SubmitWorkspace(name, slug string) Event {
	return Event{Type: EventSubmitWorkspace, WorkspaceName: name, WorkspaceSlug: slug}
}

// SubmitBilling returns a SUBMIT_BILLING event carrying info.
func SubmitBilling(info BillingInfo) Event { return Event{Type: EventSubmitBilling, BillingInfo: &info} }

// SkipBilling returns a SKIP_BILLING event.
func SkipBilling() Event { return Event{Type: EventSkipBilling} }
