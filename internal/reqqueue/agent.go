package reqqueue

import (
	"errors"
	"fmt"

	"github.com/smoynes/forge/internal/log"
)

// ErrUnknownAgent is returned when Dispatcher.Handle receives a Request whose Kind has no
// registered Agent.
var ErrUnknownAgent = errors.New("reqqueue: no agent registered for kind")

// Agent processes one Request, mutating generator state (memory, registers, virtual memory,
// dependence tracking) and optionally scheduling further sub-requests via queue.PrependRequest.
type Agent interface {
	// Process handles req, returning an error only for conditions the generator cannot recover
	// from (callers otherwise call genstate.Fail for architectural/environment errors).
	Process(req Request, queue *Queue) error
}

// AgentFunc adapts a plain function to the Agent interface.
type AgentFunc func(req Request, queue *Queue) error

func (f AgentFunc) Process(req Request, queue *Queue) error { return f(req, queue) }

// Dispatcher routes Requests to their registered Agent by Kind, mirroring the Generator's
// kind-to-agent table in the source (Generator::GenInstructionAgent et al., collapsed here into
// one map since Go has no parallel to the generated per-kind accessor methods).
type Dispatcher struct {
	agents map[Kind]Agent
	log    *log.Logger
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{agents: make(map[Kind]Agent), log: log.DefaultLogger()}
}

// Register associates an Agent with a Kind, overwriting any previous registration.
func (d *Dispatcher) Register(kind Kind, agent Agent) {
	d.agents[kind] = agent
}

// Handle looks up req's Agent and processes it, returning ErrUnknownAgent if none is registered.
func (d *Dispatcher) Handle(req Request, queue *Queue) error {
	agent, ok := d.agents[req.Kind()]
	if !ok {
		return fmt.Errorf("%w: %s (request %s)", ErrUnknownAgent, req.Kind(), req.ID())
	}

	d.log.Debug("dispatching request", "kind", req.Kind(), "id", req.ID())

	return agent.Process(req, queue)
}

// RunRound starts a new round on queue, prepends requests (the round's seed work -- typically one
// front-end request), then dispatches every request within the round to its Agent, stopping at
// the first error. Requests already sitting in queue before RunRound is called belong to a later
// round and are left untouched (spec.md §4.4, §8 scenario 3): StartRound must run before the
// round's own work is prepended, or that work would itself become the round's end boundary.
func (d *Dispatcher) RunRound(queue *Queue, requests ...Request) error {
	round := queue.StartRound()
	queue.PrependRequests(requests)

	var firstErr error

	queue.DrainRound(round, func(req Request) bool {
		if err := d.Handle(req, queue); err != nil {
			firstErr = err
			return false
		}

		return true
	})

	return firstErr
}
