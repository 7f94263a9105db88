package dispatch

import (
	"context"

	"github.com/opforge/opforge/internal/model"
)

// The declaring type may implement pre-, post-, and cancellation lifecycle
// hooks, each in a synchronous or asynchronous variant. Capability is probed
// once per type at build time (model.HookCapabilities) and the host's
// implementations are resolved once at registration; nothing is probed per
// invocation.

// PreHook runs before the operation implementation.
type PreHook interface {
	BeforeOperation(ctx context.Context, call *Call) error
}

// PreHookAsync is the asynchronous pre-hook variant.
type PreHookAsync interface {
	BeforeOperationAsync(ctx context.Context, call *Call) error
}

// PostHook runs after the operation implementation completes.
type PostHook interface {
	AfterOperation(ctx context.Context, call *Call) error
}

// PostHookAsync is the asynchronous post-hook variant.
type PostHookAsync interface {
	AfterOperationAsync(ctx context.Context, call *Call) error
}

// CancelHook runs instead of the post-hook when a cancellation signal was
// observed during the call.
type CancelHook interface {
	OperationCanceled(ctx context.Context, call *Call) error
}

// CancelHookAsync is the asynchronous cancellation-hook variant.
type CancelHookAsync interface {
	OperationCanceledAsync(ctx context.Context, call *Call) error
}

// HookFunc is one resolved lifecycle hook.
type HookFunc func(ctx context.Context, call *Call) error

// Hooks is the per-type capability set after resolution. Nil slots mean the
// type does not implement that hook.
type Hooks struct {
	Pre      HookFunc
	Post     HookFunc
	Canceled HookFunc
}

// ResolveHooks binds the declared capabilities to the host's implementations.
// When both variants of a hook are declared, the asynchronous one is invoked;
// at most one variant ever runs per boundary. A capability the host does not
// actually implement resolves to nil.
func ResolveHooks(caps model.HookCapabilities, host any) Hooks {
	var h Hooks

	if caps.PreAsync {
		if impl, ok := host.(PreHookAsync); ok {
			h.Pre = impl.BeforeOperationAsync
		}
	}
	if h.Pre == nil && caps.PreSync {
		if impl, ok := host.(PreHook); ok {
			h.Pre = impl.BeforeOperation
		}
	}

	if caps.PostAsync {
		if impl, ok := host.(PostHookAsync); ok {
			h.Post = impl.AfterOperationAsync
		}
	}
	if h.Post == nil && caps.PostSync {
		if impl, ok := host.(PostHook); ok {
			h.Post = impl.AfterOperation
		}
	}

	if caps.CanceledAsync {
		if impl, ok := host.(CancelHookAsync); ok {
			h.Canceled = impl.OperationCanceledAsync
		}
	}
	if h.Canceled == nil && caps.CanceledSync {
		if impl, ok := host.(CancelHook); ok {
			h.Canceled = impl.OperationCanceled
		}
	}

	return h
}
