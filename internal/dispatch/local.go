package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/opforge/opforge/internal/authz"
	"github.com/opforge/opforge/internal/model"
	"github.com/opforge/opforge/internal/save"
)

// LocalStrategy invokes the underlying implementation in-process: the
// composed authorization gate runs first, then the pre-hook, the
// implementation, and the post-hook (or the cancellation hook if a
// cancellation signal was observed). Event-kind operations are
// fire-and-forget: the caller is never blocked on handler completion and
// handler failures never propagate back.
type LocalStrategy struct {
	Plan      model.OperationPlanModel
	Impl      Impl
	Evaluator authz.Evaluator
	Hooks     Hooks
	Logger    *slog.Logger
}

// Invoke runs one local invocation.
func (s *LocalStrategy) Invoke(ctx context.Context, call *Call) (any, error) {
	if err := s.authorize(ctx, call); err != nil {
		return nil, err
	}

	if s.Plan.Kind == model.KindEvent {
		go s.fireEvent(ctx, call)
		return nil, nil
	}
	return s.run(ctx, call)
}

func (s *LocalStrategy) authorize(ctx context.Context, call *Call) error {
	ev := s.Evaluator
	if ev == nil {
		ev = authz.AllowAll
	}
	return authz.Authorize(ctx, ev, s.Plan.Authorization, authz.CallInfo{
		TypeName:  call.TypeName,
		Operation: call.Operation,
		Principal: call.Principal,
		Target:    call.Target,
		Args:      call.Args,
	})
}

// run executes hooks and the implementation for one non-event invocation.
func (s *LocalStrategy) run(ctx context.Context, call *Call) (any, error) {
	if s.Hooks.Pre != nil {
		if err := s.Hooks.Pre(ctx, call); err != nil {
			return nil, fmt.Errorf("pre-hook: %w", err)
		}
	}

	result, err := s.Impl(ctx, call)

	// Cancellation is consulted only at hook boundaries, never mid-call.
	if ctx.Err() != nil {
		if s.Hooks.Canceled != nil {
			if hookErr := s.Hooks.Canceled(ctx, call); hookErr != nil && s.Logger != nil {
				s.Logger.Warn("cancellation hook failed",
					"type", call.TypeName, "operation", call.Operation, "error", hookErr)
			}
		}
		if err == nil {
			err = ctx.Err()
		}
		return nil, err
	}

	if err != nil {
		return nil, err
	}
	if s.Hooks.Post != nil {
		if hookErr := s.Hooks.Post(ctx, call); hookErr != nil {
			return nil, fmt.Errorf("post-hook: %w", hookErr)
		}
	}
	return result, nil
}

// fireEvent runs an event handler detached from the caller. Failures are
// logged and swallowed; a panicking handler must not take the process down.
func (s *LocalStrategy) fireEvent(ctx context.Context, call *Call) {
	defer func() {
		if r := recover(); r != nil && s.Logger != nil {
			s.Logger.Error("event handler panicked",
				"type", call.TypeName, "operation", call.Operation, "panic", r)
		}
	}()
	if _, err := s.run(context.WithoutCancel(ctx), call); err != nil && s.Logger != nil {
		s.Logger.Warn("event handler failed",
			"type", call.TypeName, "operation", call.Operation, "error", err)
	}
}

// SaveStrategy executes a synthesized Save: it reads the entity's isNew and
// isDeleted flags, resolves the routing table, and invokes at most one member
// per call, gated by that member's own composed authorization.
type SaveStrategy struct {
	Plan      model.OperationPlanModel
	Impls     map[model.OperationKind]Impl
	Evaluator authz.Evaluator
	Hooks     Hooks
	Logger    *slog.Logger
}

// Invoke runs one Save invocation. For a new-and-deleted entity no member is
// invoked and the result is absent.
func (s *SaveStrategy) Invoke(ctx context.Context, call *Call) (any, error) {
	state, ok := call.Target.(save.EntityState)
	if !ok {
		return nil, fmt.Errorf("%s: save target does not expose entity state", s.Plan.Name)
	}

	kind, invoke := save.Route(state.IsNew(), state.IsDeleted())
	if !invoke {
		return nil, nil
	}

	if s.Plan.Save.Member(kind) == nil {
		return nil, &save.RoutingError{Save: s.Plan.Name, Missing: kind}
	}
	impl, ok := s.Impls[kind]
	if !ok {
		return nil, &save.RoutingError{Save: s.Plan.Name, Missing: kind}
	}

	member := &LocalStrategy{
		Plan: model.OperationPlanModel{
			Name:          s.Plan.Name,
			Kind:          kind,
			Authorization: s.Plan.SaveAuth[kind],
		},
		Impl:      impl,
		Evaluator: s.Evaluator,
		Hooks:     s.Hooks,
		Logger:    s.Logger,
	}
	return member.Invoke(ctx, call)
}

// PreflightStrategy evaluates the instance-free authorization checks of an
// operation and returns the aggregated decision without ever invoking the
// underlying implementation.
type PreflightStrategy struct {
	Plan      model.OperationPlanModel
	Evaluator authz.Evaluator
}

// Invoke returns an authz.Decision as its result.
func (s *PreflightStrategy) Invoke(ctx context.Context, call *Call) (any, error) {
	ev := s.Evaluator
	if ev == nil {
		ev = authz.AllowAll
	}
	return authz.Check(ctx, ev, s.Plan.Authorization, authz.CallInfo{
		TypeName:  call.TypeName,
		Operation: call.Operation,
		Principal: call.Principal,
		Args:      call.Args,
	})
}
