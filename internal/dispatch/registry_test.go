package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/opforge/opforge/internal/model"
)

type fakeTransport struct {
	calls []RemoteRequest
}

func (f *fakeTransport) Call(_ context.Context, _ string, req RemoteRequest) (any, error) {
	f.calls = append(f.calls, req)
	return "remote-result", nil
}

func remotePlan(name string) model.OperationPlanModel {
	return model.OperationPlanModel{
		Name:       name,
		TypeName:   "Invoice",
		DelegateID: DelegateID("Invoice", name),
		Kind:       model.KindFetch,
		IsRemote:   true,
	}
}

func localEcho(value string) Strategy {
	return StrategyFunc(func(context.Context, *Call) (any, error) {
		return value, nil
	})
}

func TestRegistry_InProcessRunsLocal(t *testing.T) {
	transport := &fakeTransport{}
	reg, err := NewRegistry(ModeInProcess, transport)
	if err != nil {
		t.Fatal(err)
	}
	plan := remotePlan("Fetch")
	reg.Register(plan, localEcho("local-result"))

	result, err := reg.Call(context.Background(), plan.DelegateID, &Call{})
	if err != nil {
		t.Fatal(err)
	}
	if result != "local-result" {
		t.Errorf("in-process mode must run the local strategy, got %v", result)
	}
	if len(transport.calls) != 0 {
		t.Error("in-process mode must never touch the transport")
	}
}

func TestRegistry_TransportModeRoutesRemote(t *testing.T) {
	transport := &fakeTransport{}
	reg, err := NewRegistry(ModeTransport, transport)
	if err != nil {
		t.Fatal(err)
	}
	plan := remotePlan("Fetch")
	reg.Register(plan, localEcho("local-result"))

	result, err := reg.Call(context.Background(), plan.DelegateID, &Call{TypeName: "Invoice", Operation: "Fetch"})
	if err != nil {
		t.Fatal(err)
	}
	if result != "remote-result" {
		t.Errorf("transport mode must route remote plans over the wire, got %v", result)
	}
	if len(transport.calls) != 1 {
		t.Fatalf("expected one transport call, got %d", len(transport.calls))
	}
	if transport.calls[0].Operation != "Fetch" {
		t.Errorf("request carries wrong operation %q", transport.calls[0].Operation)
	}
}

func TestRegistry_TransportModeKeepsLocalPlansLocal(t *testing.T) {
	transport := &fakeTransport{}
	reg, _ := NewRegistry(ModeTransport, transport)

	plan := remotePlan("Compute")
	plan.IsRemote = false
	reg.Register(plan, localEcho("local-result"))

	result, err := reg.Call(context.Background(), plan.DelegateID, &Call{})
	if err != nil {
		t.Fatal(err)
	}
	if result != "local-result" || len(transport.calls) != 0 {
		t.Error("non-remote plans stay local in every mode")
	}
}

func TestRegistry_CallLocalBypassesMode(t *testing.T) {
	transport := &fakeTransport{}
	reg, _ := NewRegistry(ModeTransport, transport)
	plan := remotePlan("Fetch")
	reg.Register(plan, localEcho("local-result"))

	result, err := reg.CallLocal(context.Background(), plan.DelegateID, &Call{})
	if err != nil {
		t.Fatal(err)
	}
	if result != "local-result" {
		t.Error("CallLocal must always run the local strategy")
	}
	if len(transport.calls) != 0 {
		t.Error("CallLocal must never loop back over the wire")
	}
}

func TestRegistry_TransportModeRequiresTransport(t *testing.T) {
	if _, err := NewRegistry(ModeTransport, nil); err == nil {
		t.Error("transport mode without a transport must be rejected")
	}
	if _, err := NewRegistry(ModeLocalOnly, nil); err != nil {
		t.Errorf("local-only mode needs no transport: %v", err)
	}
}

func TestRegistry_UnknownDelegate(t *testing.T) {
	reg, _ := NewRegistry(ModeLocalOnly, nil)
	_, err := reg.Call(context.Background(), "missing", &Call{})
	if !errors.Is(err, ErrNotRegistered) {
		t.Errorf("expected ErrNotRegistered, got %v", err)
	}
}

func TestResolveHooks_AsyncPreferred(t *testing.T) {
	host := &bothHookHost{}
	caps := model.HookCapabilities{PreSync: true, PreAsync: true}
	hooks := ResolveHooks(caps, host)
	if hooks.Pre == nil {
		t.Fatal("pre hook must resolve")
	}
	hooks.Pre(context.Background(), &Call{})
	if host.syncRan || !host.asyncRan {
		t.Error("when both variants exist, only the async one runs")
	}
}

func TestResolveHooks_UndeclaredCapabilityResolvesNil(t *testing.T) {
	host := &bothHookHost{}
	hooks := ResolveHooks(model.HookCapabilities{}, host)
	if hooks.Pre != nil || hooks.Post != nil || hooks.Canceled != nil {
		t.Error("capabilities not declared at build time must not resolve")
	}
}

type bothHookHost struct {
	syncRan, asyncRan bool
}

func (h *bothHookHost) BeforeOperation(context.Context, *Call) error {
	h.syncRan = true
	return nil
}

func (h *bothHookHost) BeforeOperationAsync(context.Context, *Call) error {
	h.asyncRan = true
	return nil
}
