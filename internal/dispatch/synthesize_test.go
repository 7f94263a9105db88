package dispatch

import (
	"testing"

	"github.com/opforge/opforge/internal/model"
)

func TestSynthesize_AsyncPromotion(t *testing.T) {
	tests := []struct {
		name      string
		shape     model.ReturnShape
		auth      model.AuthorizationModel
		remote    bool
		hooks     model.HookCapabilities
		wantAsync bool
		wantShape model.ReturnShape
	}{
		{
			"sync everything stays sync",
			model.ReturnVoid, model.AuthorizationModel{}, false, model.HookCapabilities{},
			false, model.ReturnVoid,
		},
		{
			"async shape stays async",
			model.ReturnAsyncVoid, model.AuthorizationModel{}, false, model.HookCapabilities{},
			true, model.ReturnAsyncVoid,
		},
		{
			"async check promotes",
			model.ReturnBool,
			model.AuthorizationModel{Bindings: []model.AuthCheckBinding{{MethodName: "X", IsAsync: true}}},
			false, model.HookCapabilities{},
			true, model.ReturnAsyncBool,
		},
		{
			"remote operation promotes",
			model.ReturnTarget, model.AuthorizationModel{}, true, model.HookCapabilities{},
			true, model.ReturnAsyncTarget,
		},
		{
			"async hook promotes",
			model.ReturnNullableTarget, model.AuthorizationModel{}, false,
			model.HookCapabilities{PostAsync: true},
			true, model.ReturnAsyncNullableTarget,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops := []Operation{{
				Descriptor: model.OperationDescriptor{
					Name:        "Op",
					Kind:        model.KindFetch,
					ReturnShape: tt.shape,
					IsRemote:    tt.remote,
				},
				Auth: tt.auth,
			}}
			plans := Synthesize("Invoice", tt.hooks, ops, nil)
			if len(plans) != 1 {
				t.Fatalf("expected 1 plan, got %d", len(plans))
			}
			if plans[0].IsAsync != tt.wantAsync {
				t.Errorf("IsAsync = %v, want %v", plans[0].IsAsync, tt.wantAsync)
			}
			if plans[0].ReturnShape != tt.wantShape {
				t.Errorf("ReturnShape = %s, want %s", plans[0].ReturnShape, tt.wantShape)
			}
		})
	}
}

func TestSynthesize_HooksDoNotPromotePreflights(t *testing.T) {
	ops := []Operation{{
		Descriptor: model.OperationDescriptor{
			Name:        "CanApprove",
			Kind:        model.KindUpdate,
			ReturnShape: model.ReturnBool,
		},
		Auth:        model.AuthorizationModel{Bindings: []model.AuthCheckBinding{{MethodName: "X"}}},
		IsPreflight: true,
	}}

	plans := Synthesize("Invoice", model.HookCapabilities{PreAsync: true}, ops, nil)
	if plans[0].IsAsync {
		t.Error("pre-flights never run hooks, so hooks must not promote them")
	}
}

func TestSynthesize_RemoteCheckPromotesRemote(t *testing.T) {
	ops := []Operation{{
		Descriptor: model.OperationDescriptor{
			Name:        "Approve",
			Kind:        model.KindUpdate,
			ReturnShape: model.ReturnVoid,
		},
		Auth: model.AuthorizationModel{Bindings: []model.AuthCheckBinding{{MethodName: "X", IsRemote: true}}},
	}}

	plans := Synthesize("Invoice", model.HookCapabilities{}, ops, nil)
	if !plans[0].IsRemote {
		t.Error("a remote check promotes the whole operation to remote")
	}
	if !plans[0].IsAsync {
		t.Error("remote implies async")
	}
}

func TestSynthesize_SavePlanShape(t *testing.T) {
	insert := model.OperationDescriptor{Name: "DoInsert", Kind: model.KindInsert, ReturnShape: model.ReturnVoid}
	saves := []SaveGroup{{
		Model: model.SaveOperationModel{
			Name:             "Save",
			Insert:           &insert,
			IsNullableResult: true,
		},
		Auth: map[model.OperationKind]model.AuthorizationModel{
			model.KindInsert: {Bindings: []model.AuthCheckBinding{{MethodName: "CanWrite", IsAsync: true}}},
		},
	}}

	plans := Synthesize("Invoice", model.HookCapabilities{}, nil, saves)
	if len(plans) != 1 {
		t.Fatalf("expected 1 plan, got %d", len(plans))
	}
	p := plans[0]
	if !p.IsSave {
		t.Error("save plan must be marked")
	}
	if !p.IsAsync {
		t.Error("an async member check promotes the save")
	}
	if p.ReturnShape != model.ReturnAsyncNullableTarget {
		t.Errorf("nullable save returns %s, got %s", model.ReturnAsyncNullableTarget, p.ReturnShape)
	}
	if len(p.Parameters) == 0 || p.Parameters[0].Role != model.RoleTarget {
		t.Error("save signature starts with the target entity")
	}
}

func TestSynthesize_AssignsIdentity(t *testing.T) {
	ops := []Operation{
		{Descriptor: model.OperationDescriptor{Name: "Fetch", Kind: model.KindFetch, ReturnShape: model.ReturnTarget,
			Parameters: []model.ParameterDescriptor{{Name: "id", Type: "string", Role: model.RoleBusiness}}}},
		{Descriptor: model.OperationDescriptor{Name: "Fetch", Kind: model.KindFetch, ReturnShape: model.ReturnTarget}},
	}

	plans := Synthesize("Invoice", model.HookCapabilities{}, ops, nil)
	if plans[1].Name != "Fetch" || plans[0].Name != "Fetch1" {
		t.Errorf("overload naming wrong: %s, %s", plans[0].Name, plans[1].Name)
	}
	for _, p := range plans {
		if p.TypeName != "Invoice" {
			t.Errorf("plan %s missing type name", p.Name)
		}
		if p.DelegateID != DelegateID("Invoice", p.Name) {
			t.Errorf("plan %s delegate identity not derived from assigned name", p.Name)
		}
	}
}
