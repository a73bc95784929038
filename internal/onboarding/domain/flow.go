package domain

// IgnoredHook is called when an event has no transition from the current state.
type IgnoredHook func(state State, event EventType)

// Flow is one onboarding attempt: a current state plus its context. A Flow belongs to a single
// wizard session and is not safe for concurrent use; callers serialize access per session.
type Flow struct {
	state     State
	ctx       Context
	onIgnored IgnoredHook
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithIgnoredHook registers h to observe events the machine drops. It does not change dispatch results.
func WithIgnoredHook(h IgnoredHook) FlowOption {
	return func(f *Flow) { f.onIgnored = h }
}

// NewFlow starts a flow at welcome with an empty context.
func NewFlow(opts ...FlowOption) *Flow {
	f := &Flow{state: StateWelcome}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// RestoreFlow resumes a flow from a previously captured state and context. Unknown states restart at welcome.
func RestoreFlow(state State, ctx Context, opts ...FlowOption) *Flow {
	f := NewFlow(opts...)
	if state.Valid() {
		f.state = state
		f.ctx = ctx.Clone()
	}
	return f
}

// Dispatch applies e and returns the resulting state and a copy of the context.
func (f *Flow) Dispatch(e Event) (State, Context) {
	next, ctx, ok := Transition(f.state, f.ctx, e)
	if !ok {
		if f.onIgnored != nil {
			f.onIgnored(f.state, e.Type)
		}
		return f.state, f.ctx.Clone()
	}
	f.state, f.ctx = next, ctx
	return f.state, f.ctx.Clone()
}

// CurrentState returns the current state.
func (f *Flow) CurrentState() State {
	return f.state
}

// CurrentContext returns a copy of the accumulated context.
func (f *Flow) CurrentContext() Context {
	return f.ctx.Clone()
}

// SetError records a validation message on the context without moving the state.
func (f *Flow) SetError(msg string) {
	f.ctx.Error = msg
}
