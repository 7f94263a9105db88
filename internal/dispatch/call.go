// Package dispatch synthesizes a local and, when required, a remote execution
// strategy for every operation, and owns the delegate registry that binds one
// of them at registration time. A generated operation's call site is identical
// regardless of which execution mode is configured.
package dispatch

import "context"

// Call is one invocation of a generated operation. Independent invocations
// share no mutable state; each call owns its own authorization evaluation and
// lifecycle-hook sequence.
type Call struct {
	TypeName  string
	Operation string
	Principal string
	Target    any
	Args      []any
}

// Impl is the underlying member implementation an operation dispatches to,
// supplied by the host at registration time.
type Impl func(ctx context.Context, call *Call) (any, error)

// Strategy executes one operation invocation.
type Strategy interface {
	Invoke(ctx context.Context, call *Call) (any, error)
}

// StrategyFunc adapts a function to the Strategy interface.
type StrategyFunc func(ctx context.Context, call *Call) (any, error)

func (f StrategyFunc) Invoke(ctx context.Context, call *Call) (any, error) {
	return f(ctx, call)
}
