package dispatch

import (
	"context"

	"github.com/opforge/opforge/internal/model"
)

// RemoteRequest is the serialized form of one remote invocation: the delegate
// identity plus the operation's public (non-service) parameter values.
// Service-role parameters never cross the wire; the server resolves them.
type RemoteRequest struct {
	TypeName  string `json:"type_name"`
	Operation string `json:"operation"`
	Target    any    `json:"target,omitempty"`
	Args      []any  `json:"args,omitempty"`
}

// Transport carries a remote request to wherever the delegate executes and
// returns its result. Implementations must preserve failure shape: a remote
// authorization denial surfaces to the caller as the same typed failure a
// local denial produces.
type Transport interface {
	Call(ctx context.Context, delegateID string, req RemoteRequest) (any, error)
}

// RemoteStrategy serializes an invocation, sends it over the transport, and
// returns the deserialized result.
type RemoteStrategy struct {
	Plan      model.OperationPlanModel
	Transport Transport
}

// Invoke runs one remote invocation.
func (s *RemoteStrategy) Invoke(ctx context.Context, call *Call) (any, error) {
	return s.Transport.Call(ctx, s.Plan.DelegateID, RemoteRequest{
		TypeName:  call.TypeName,
		Operation: call.Operation,
		Target:    call.Target,
		Args:      call.Args,
	})
}
