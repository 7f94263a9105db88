package dispatch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/opforge/opforge/internal/authz"
	"github.com/opforge/opforge/internal/model"
	"github.com/opforge/opforge/internal/save"
)

func denyAll(reason string) authz.Evaluator {
	return authz.EvaluatorFunc(func(context.Context, model.AuthCheckBinding, authz.CallInfo) (authz.Decision, error) {
		return authz.Decision{Authorized: false, Reason: reason}, nil
	})
}

func guardedPlan(name string, kind model.OperationKind) model.OperationPlanModel {
	return model.OperationPlanModel{
		Name: name,
		Kind: kind,
		Authorization: model.AuthorizationModel{
			Bindings: []model.AuthCheckBinding{{ProviderName: "acl", MethodName: "Check"}},
		},
	}
}

func TestLocalStrategy_AuthGateRunsFirst(t *testing.T) {
	invoked := false
	s := &LocalStrategy{
		Plan: guardedPlan("Approve", model.KindUpdate),
		Impl: func(context.Context, *Call) (any, error) {
			invoked = true
			return nil, nil
		},
		Evaluator: denyAll("not yours"),
	}

	_, err := s.Invoke(context.Background(), &Call{TypeName: "Invoice", Operation: "Approve"})
	if !authz.IsDenied(err) {
		t.Fatalf("expected denial, got %v", err)
	}
	if invoked {
		t.Error("implementation must not run when authorization denies")
	}
}

func TestLocalStrategy_HookOrder(t *testing.T) {
	var order []string
	s := &LocalStrategy{
		Plan: model.OperationPlanModel{Name: "Approve", Kind: model.KindUpdate},
		Impl: func(context.Context, *Call) (any, error) {
			order = append(order, "impl")
			return "done", nil
		},
		Hooks: Hooks{
			Pre: func(context.Context, *Call) error {
				order = append(order, "pre")
				return nil
			},
			Post: func(context.Context, *Call) error {
				order = append(order, "post")
				return nil
			},
		},
	}

	result, err := s.Invoke(context.Background(), &Call{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "done" {
		t.Errorf("result = %v", result)
	}
	want := []string{"pre", "impl", "post"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, order[i], want[i])
		}
	}
}

func TestLocalStrategy_PreHookErrorAborts(t *testing.T) {
	invoked := false
	s := &LocalStrategy{
		Plan: model.OperationPlanModel{Name: "Approve"},
		Impl: func(context.Context, *Call) (any, error) {
			invoked = true
			return nil, nil
		},
		Hooks: Hooks{
			Pre: func(context.Context, *Call) error { return errors.New("veto") },
		},
	}

	if _, err := s.Invoke(context.Background(), &Call{}); err == nil {
		t.Fatal("pre-hook error must abort the call")
	}
	if invoked {
		t.Error("implementation must not run after a failing pre-hook")
	}
}

func TestLocalStrategy_CancellationHookReplacesPost(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var canceled, posted bool
	s := &LocalStrategy{
		Plan: model.OperationPlanModel{Name: "Approve"},
		Impl: func(context.Context, *Call) (any, error) {
			cancel() // signal observed during the call
			return nil, nil
		},
		Hooks: Hooks{
			Post:     func(context.Context, *Call) error { posted = true; return nil },
			Canceled: func(context.Context, *Call) error { canceled = true; return nil },
		},
	}

	_, err := s.Invoke(ctx, &Call{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !canceled {
		t.Error("cancellation hook must run when a signal was observed")
	}
	if posted {
		t.Error("post-hook must not run on the cancellation path")
	}
}

func TestLocalStrategy_EventFireAndForget(t *testing.T) {
	ran := make(chan struct{})
	s := &LocalStrategy{
		Plan: model.OperationPlanModel{Name: "OnShipped", Kind: model.KindEvent},
		Impl: func(context.Context, *Call) (any, error) {
			close(ran)
			return nil, fmt.Errorf("handler failed")
		},
	}

	result, err := s.Invoke(context.Background(), &Call{TypeName: "Invoice", Operation: "OnShipped"})
	if err != nil {
		t.Fatalf("event raise must not surface handler failures: %v", err)
	}
	if result != nil {
		t.Errorf("event raise has no result, got %v", result)
	}

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("event handler did not run")
	}
}

func TestLocalStrategy_EventDeniedBeforeDispatch(t *testing.T) {
	s := &LocalStrategy{
		Plan: guardedPlan("OnShipped", model.KindEvent),
		Impl: func(context.Context, *Call) (any, error) {
			t.Error("handler must not run for a denied raise")
			return nil, nil
		},
		Evaluator: denyAll("no"),
	}

	if _, err := s.Invoke(context.Background(), &Call{}); !authz.IsDenied(err) {
		t.Fatalf("expected denial, got %v", err)
	}
}

type entityState struct{ isNew, isDeleted bool }

func (e entityState) IsNew() bool     { return e.isNew }
func (e entityState) IsDeleted() bool { return e.isDeleted }

func saveStrategy(t *testing.T, calls *[]model.OperationKind) *SaveStrategy {
	t.Helper()
	insert := model.OperationDescriptor{Name: "DoInsert", Kind: model.KindInsert}
	update := model.OperationDescriptor{Name: "DoUpdate", Kind: model.KindUpdate}
	del := model.OperationDescriptor{Name: "DoDelete", Kind: model.KindDelete}

	impls := map[model.OperationKind]Impl{}
	for _, kind := range []model.OperationKind{model.KindInsert, model.KindUpdate, model.KindDelete} {
		k := kind
		impls[k] = func(context.Context, *Call) (any, error) {
			*calls = append(*calls, k)
			return string(k), nil
		}
	}

	return &SaveStrategy{
		Plan: model.OperationPlanModel{
			Name:   "Save",
			IsSave: true,
			Save:   &model.SaveOperationModel{Name: "Save", Insert: &insert, Update: &update, Delete: &del},
			SaveAuth: map[model.OperationKind]model.AuthorizationModel{
				model.KindInsert: {},
				model.KindUpdate: {},
				model.KindDelete: {},
			},
		},
		Impls: impls,
	}
}

func TestSaveStrategy_RoutesAtMostOneMember(t *testing.T) {
	tests := []struct {
		state    entityState
		want     model.OperationKind
		noInvoke bool
	}{
		{entityState{isNew: true}, model.KindInsert, false},
		{entityState{isNew: true, isDeleted: true}, "", true},
		{entityState{isDeleted: true}, model.KindDelete, false},
		{entityState{}, model.KindUpdate, false},
	}

	for _, tt := range tests {
		var calls []model.OperationKind
		s := saveStrategy(t, &calls)

		result, err := s.Invoke(context.Background(), &Call{Target: tt.state})
		if err != nil {
			t.Fatalf("state %+v: unexpected error %v", tt.state, err)
		}
		if tt.noInvoke {
			if result != nil || len(calls) != 0 {
				t.Errorf("new-and-deleted must invoke nothing, got %v / %v", result, calls)
			}
			continue
		}
		if len(calls) != 1 || calls[0] != tt.want {
			t.Errorf("state %+v invoked %v, want exactly one %s", tt.state, calls, tt.want)
		}
	}
}

func TestSaveStrategy_MissingMemberIsRoutingError(t *testing.T) {
	insert := model.OperationDescriptor{Name: "DoInsert", Kind: model.KindInsert}
	s := &SaveStrategy{
		Plan: model.OperationPlanModel{
			Name:   "Save",
			IsSave: true,
			Save:   &model.SaveOperationModel{Name: "Save", Insert: &insert},
		},
		Impls: map[model.OperationKind]Impl{
			model.KindInsert: func(context.Context, *Call) (any, error) { return nil, nil },
		},
	}

	_, err := s.Invoke(context.Background(), &Call{Target: entityState{isDeleted: true}})
	var routing *save.RoutingError
	if !errors.As(err, &routing) {
		t.Fatalf("expected RoutingError, got %v", err)
	}
	if routing.Missing != model.KindDelete {
		t.Errorf("routing error names %s, want delete", routing.Missing)
	}
}

func TestSaveStrategy_MemberAuthGates(t *testing.T) {
	var calls []model.OperationKind
	s := saveStrategy(t, &calls)
	s.Plan.SaveAuth[model.KindDelete] = model.AuthorizationModel{
		Bindings: []model.AuthCheckBinding{{ProviderName: "acl", MethodName: "CanDelete"}},
	}
	s.Evaluator = denyAll("deletes forbidden")

	_, err := s.Invoke(context.Background(), &Call{Target: entityState{isDeleted: true}})
	if !authz.IsDenied(err) {
		t.Fatalf("expected denial from the routed member's auth, got %v", err)
	}
	if len(calls) != 0 {
		t.Error("denied member must not run")
	}

	// The same save against an unguarded member still passes.
	_, err = s.Invoke(context.Background(), &Call{Target: entityState{isNew: true}})
	if err != nil {
		t.Fatalf("insert path should pass: %v", err)
	}
}

func TestPreflightStrategy_ReturnsDecision(t *testing.T) {
	s := &PreflightStrategy{
		Plan:      guardedPlan("CanApprove", model.KindUpdate),
		Evaluator: denyAll("not yours"),
	}

	result, err := s.Invoke(context.Background(), &Call{})
	if err != nil {
		t.Fatalf("a denial is a pre-flight result, not an error: %v", err)
	}
	dec, ok := result.(authz.Decision)
	if !ok {
		t.Fatalf("expected authz.Decision, got %T", result)
	}
	if dec.Authorized || dec.Reason != "not yours" {
		t.Errorf("unexpected decision %+v", dec)
	}
}
