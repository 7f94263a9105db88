package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/opforge/opforge/internal/model"
)

// Decision is the normalized result of one check evaluation.
type Decision struct {
	Authorized bool   `json:"authorized"`
	Reason     string `json:"reason,omitempty"`
}

// CallInfo carries the invocation context a check may inspect.
type CallInfo struct {
	TypeName  string
	Operation string
	Principal string
	Target    any
	Args      []any
}

// Evaluator executes one bound check. Implementations may be synchronous or
// asynchronous under the hood; both surface through the same blocking,
// context-aware call.
type Evaluator interface {
	Evaluate(ctx context.Context, binding model.AuthCheckBinding, call CallInfo) (Decision, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, binding model.AuthCheckBinding, call CallInfo) (Decision, error)

func (f EvaluatorFunc) Evaluate(ctx context.Context, binding model.AuthCheckBinding, call CallInfo) (Decision, error) {
	return f(ctx, binding, call)
}

// AllowAll is an evaluator that authorizes every check. Useful for types with
// no authorization runtime wired and in tests.
var AllowAll Evaluator = EvaluatorFunc(func(context.Context, model.AuthCheckBinding, CallInfo) (Decision, error) {
	return Decision{Authorized: true}, nil
})

// DeniedError is the typed failure surfaced on authorization denial. It has
// the same shape whether the denial happened locally or was reconstructed
// from a remote response; callers cannot distinguish the two.
type DeniedError struct {
	TypeName  string `json:"type_name"`
	Operation string `json:"operation"`
	// Reason is the first failing binding's reason, in binding order.
	Reason string `json:"reason"`
}

func (e *DeniedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("operation %s.%s denied", e.TypeName, e.Operation)
	}
	return fmt.Sprintf("operation %s.%s denied: %s", e.TypeName, e.Operation, e.Reason)
}

// IsDenied reports whether err is (or wraps) an authorization denial.
func IsDenied(err error) bool {
	var d *DeniedError
	return errors.As(err, &d)
}

// Authorize evaluates the composed model's bindings in order with AND
// semantics. The first binding that denies stops evaluation and its reason is
// returned in the DeniedError. Evaluation errors (as opposed to denials)
// propagate as-is.
func Authorize(ctx context.Context, ev Evaluator, auth model.AuthorizationModel, call CallInfo) error {
	for _, binding := range auth.Bindings {
		decision, err := ev.Evaluate(ctx, binding, call)
		if err != nil {
			return fmt.Errorf("evaluate check %s.%s: %w", binding.ProviderName, binding.MethodName, err)
		}
		if !decision.Authorized {
			return &DeniedError{
				TypeName:  call.TypeName,
				Operation: call.Operation,
				Reason:    decision.Reason,
			}
		}
	}
	return nil
}

// Check evaluates the model and returns the aggregated decision instead of an
// error. This is the pre-flight entry point: it never invokes the underlying
// operation.
func Check(ctx context.Context, ev Evaluator, auth model.AuthorizationModel, call CallInfo) (Decision, error) {
	err := Authorize(ctx, ev, auth, call)
	if err == nil {
		return Decision{Authorized: true}, nil
	}
	var denied *DeniedError
	if errors.As(err, &denied) {
		return Decision{Authorized: false, Reason: denied.Reason}, nil
	}
	return Decision{}, err
}
