package gen

import (
	"fmt"

	"github.com/smoynes/forge/internal/iss"
	"github.com/smoynes/forge/internal/reqqueue"
)

// ExceptionAgent processes ExceptionRequests and implements iss.ExceptionHandler, so a simulator-
// reported exception event flows through the same dispatch path as a front-end exception request
// (spec.md §4.8's "dispatched as a GenHandleException sub-request"). An ERET event additionally
// pops the tracked handler-context depth, the way the source's exception manager unwinds its
// handler stack on return.
type ExceptionAgent struct {
	queue *reqqueue.Queue

	handled      []reqqueue.ExceptionRequest
	handlerDepth int
}

// NewExceptionAgent creates an Agent that also handles exceptions the ISS reports directly
// (outside the normal dispatch round); queue is what HandleException passes to Process.
func NewExceptionAgent(queue *reqqueue.Queue) *ExceptionAgent {
	return &ExceptionAgent{queue: queue}
}

// Process implements reqqueue.Agent.
func (a *ExceptionAgent) Process(req reqqueue.Request, _ *reqqueue.Queue) error {
	r, ok := req.(*reqqueue.ExceptionRequest)
	if !ok {
		return fmt.Errorf("gen: ExceptionAgent: unexpected request type %T", req)
	}

	switch r.ExceptionType {
	case reqqueue.ExceptionHandle:
		a.handlerDepth++
	case reqqueue.ExceptionSystemCall, reqqueue.ExceptionUpdateHandlerInfo:
		// Recorded but otherwise not architecturally significant at this layer.
	default:
		return fmt.Errorf("gen: ExceptionAgent: unknown exception kind %v", r.ExceptionType)
	}

	a.handled = append(a.handled, *r)

	return nil
}

// HandleException implements iss.ExceptionHandler: a simulator-reported event becomes an
// ExceptionHandle ExceptionRequest that is processed immediately, without being put on the
// queue, and an ERET additionally pops the handler-context depth this agent tracks.
func (a *ExceptionAgent) HandleException(ev iss.ExceptionEvent) error {
	req := reqqueue.NewExceptionRequest(reqqueue.ExceptionHandle)
	req.Code = ev.Code
	req.Description = ev.Kind

	if err := a.Process(req, a.queue); err != nil {
		return err
	}

	if ev.ERET && a.handlerDepth > 0 {
		a.handlerDepth--
	}

	return nil
}

// Handled returns every ExceptionRequest processed so far, in order.
func (a *ExceptionAgent) Handled() []reqqueue.ExceptionRequest { return a.handled }

// HandlerDepth returns the current exception-handler nesting depth.
func (a *ExceptionAgent) HandlerDepth() int { return a.handlerDepth }

var (
	_ reqqueue.Agent       = (*ExceptionAgent)(nil)
	_ iss.ExceptionHandler = (*ExceptionAgent)(nil)
)
