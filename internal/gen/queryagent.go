package gen

import (
	"fmt"

	"github.com/smoynes/forge/internal/genstate"
	"github.com/smoynes/forge/internal/reqqueue"
)

// QueryAgent resolves QueryRequests against a DataStation, writing the stashed value back into
// the request's Result field.
type QueryAgent struct {
	data *genstate.DataStation
}

// NewQueryAgent creates an Agent resolving slots through data.
func NewQueryAgent(data *genstate.DataStation) *QueryAgent {
	return &QueryAgent{data: data}
}

// Process implements reqqueue.Agent.
func (a *QueryAgent) Process(req reqqueue.Request, _ *reqqueue.Queue) error {
	r, ok := req.(*reqqueue.QueryRequest)
	if !ok {
		return fmt.Errorf("gen: QueryAgent: unexpected request type %T", req)
	}

	value, ok := a.data.Get(r.Slot)
	if !ok {
		return fmt.Errorf("gen: QueryAgent: stale or invalid data station slot")
	}

	r.Result = value

	return nil
}

var _ reqqueue.Agent = (*QueryAgent)(nil)
