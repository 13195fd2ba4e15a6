package gen

import (
	"fmt"

	"github.com/smoynes/forge/internal/reqqueue"
)

// CallBackAgent invokes a front-end-registered function by name, ported from
// GenCallBackAgent/the source's named-callback-table dispatch (spec.md §4.4's "hand back a
// BntNode" example).
type CallBackAgent struct {
	callbacks map[string]func(*reqqueue.CallBackRequest) error
}

// NewCallBackAgent creates an Agent with no callbacks registered.
func NewCallBackAgent() *CallBackAgent {
	return &CallBackAgent{callbacks: make(map[string]func(*reqqueue.CallBackRequest) error)}
}

// Register associates fn with name, overwriting any previous registration.
func (a *CallBackAgent) Register(name string, fn func(*reqqueue.CallBackRequest) error) {
	a.callbacks[name] = fn
}

// Process implements reqqueue.Agent.
func (a *CallBackAgent) Process(req reqqueue.Request, _ *reqqueue.Queue) error {
	r, ok := req.(*reqqueue.CallBackRequest)
	if !ok {
		return fmt.Errorf("gen: CallBackAgent: unexpected request type %T", req)
	}

	fn, ok := a.callbacks[r.Name]
	if !ok {
		return fmt.Errorf("gen: CallBackAgent: no callback registered for %q", r.Name)
	}

	return fn(r)
}

var _ reqqueue.Agent = (*CallBackAgent)(nil)
