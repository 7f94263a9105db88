package classify

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/opforge/opforge/internal/diag"
	"github.com/opforge/opforge/internal/model"
)

func TestMember_KindTable(t *testing.T) {
	tests := []struct {
		name      string
		md        model.MemberDescription
		static    bool // container
		wantKinds []model.OperationKind
		wantDiags int
	}{
		{
			"create constructor",
			model.MemberDescription{
				Name:          "New",
				Markers:       []string{"create"},
				IsConstructor: true,
				ReturnShape:   model.ReturnTarget,
			},
			false,
			[]model.OperationKind{model.KindCreate},
			0,
		},
		{
			"fetch static factory",
			model.MemberDescription{
				Name:        "ByID",
				Markers:     []string{"fetch"},
				IsStatic:    true,
				ReturnShape: model.ReturnAsyncNullableTarget,
			},
			false,
			[]model.OperationKind{model.KindFetch},
			0,
		},
		{
			"dual write markers yield two descriptors",
			model.MemberDescription{
				Name:        "Persist",
				Markers:     []string{"insert", "update"},
				ReturnShape: model.ReturnVoid,
			},
			false,
			[]model.OperationKind{model.KindInsert, model.KindUpdate},
			0,
		},
		{
			"duplicate marker deduplicated",
			model.MemberDescription{
				Name:        "Persist",
				Markers:     []string{"insert", "insert"},
				ReturnShape: model.ReturnVoid,
			},
			false,
			[]model.OperationKind{model.KindInsert},
			0,
		},
		{
			"write returning target dropped with warning",
			model.MemberDescription{
				Name:        "Persist",
				Markers:     []string{"insert"},
				ReturnShape: model.ReturnTarget,
			},
			false,
			nil,
			1,
		},
		{
			"execute on static container",
			model.MemberDescription{
				Name:        "Reconcile",
				Markers:     []string{"execute"},
				IsStatic:    true,
				ReturnShape: model.ReturnAsyncResult,
			},
			true,
			[]model.OperationKind{model.KindExecute},
			0,
		},
		{
			"execute on instance type rejected",
			model.MemberDescription{
				Name:        "Reconcile",
				Markers:     []string{"execute"},
				IsStatic:    true,
				ReturnShape: model.ReturnAsyncResult,
			},
			false,
			nil,
			1,
		},
		{
			"execute with wrong shape rejected",
			model.MemberDescription{
				Name:        "Reconcile",
				Markers:     []string{"execute"},
				IsStatic:    true,
				ReturnShape: model.ReturnVoid,
			},
			true,
			nil,
			1,
		},
		{
			"event with trailing cancellation",
			model.MemberDescription{
				Name:        "OnShipped",
				Markers:     []string{"event"},
				ReturnShape: model.ReturnAsyncVoid,
				Parameters: []model.ParameterDescription{
					{Name: "reason", Type: "string", Role: model.RoleBusiness},
					{Name: "cancel", Type: "signal", Role: model.RoleCancellation},
				},
			},
			false,
			[]model.OperationKind{model.KindEvent},
			0,
		},
		{
			"event missing cancellation rejected",
			model.MemberDescription{
				Name:        "OnShipped",
				Markers:     []string{"event"},
				ReturnShape: model.ReturnVoid,
				Parameters: []model.ParameterDescription{
					{Name: "reason", Type: "string", Role: model.RoleBusiness},
				},
			},
			false,
			nil,
			1,
		},
		{
			"create with execute result shape rejected",
			model.MemberDescription{
				Name:        "New",
				Markers:     []string{"create"},
				ReturnShape: model.ReturnAsyncResult,
			},
			false,
			nil,
			1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := diag.NewCollector()
			got := Member("Invoice", tt.static, tt.md, rep)

			var kinds []model.OperationKind
			for _, d := range got {
				kinds = append(kinds, d.Kind)
			}
			if diff := cmp.Diff(tt.wantKinds, kinds); diff != "" {
				t.Errorf("kinds mismatch (-want +got):\n%s", diff)
			}
			if len(rep.All()) != tt.wantDiags {
				t.Errorf("expected %d diagnostics, got %d: %v", tt.wantDiags, len(rep.All()), rep.All())
			}
		})
	}
}

func TestMember_NoMarkerIsInfoLevel(t *testing.T) {
	rep := diag.NewCollector()
	got := Member("Invoice", false, model.MemberDescription{
		Name:        "String",
		ReturnShape: model.ReturnVoid,
	}, rep)

	if got != nil {
		t.Fatalf("expected no descriptors, got %d", len(got))
	}
	if rep.Count(diag.SeverityInfo) != 1 {
		t.Errorf("skipped member must raise exactly one info diagnostic, got %v", rep.All())
	}
	if rep.Count(diag.SeverityError) != 0 || rep.Count(diag.SeverityWarning) != 0 {
		t.Error("skipped member must not raise errors or warnings")
	}
	if rep.All()[0].Code != diag.CodeUnrecognizedMemberIgnored {
		t.Errorf("wrong code %s", rep.All()[0].Code)
	}
}

func TestMember_MultipleTargetsRejected(t *testing.T) {
	rep := diag.NewCollector()
	got := Member("Invoice", false, model.MemberDescription{
		Name:        "Merge",
		Markers:     []string{"update"},
		ReturnShape: model.ReturnVoid,
		Parameters: []model.ParameterDescription{
			{Name: "a", Type: "Invoice", Role: model.RoleTarget},
			{Name: "b", Type: "Invoice", Role: model.RoleTarget},
		},
	}, rep)

	if got != nil {
		t.Fatal("descriptor with two target parameters must be dropped")
	}
	if rep.Count(diag.SeverityError) != 1 {
		t.Errorf("expected one error diagnostic, got %v", rep.All())
	}
}

func TestMember_DualMarkerSharesCallTarget(t *testing.T) {
	rep := diag.NewCollector()
	got := Member("Invoice", false, model.MemberDescription{
		Name:        "Persist",
		Markers:     []string{"insert", "update"},
		ReturnShape: model.ReturnAsyncVoid,
		Parameters: []model.ParameterDescription{
			{Name: "entity", Type: "Invoice", Role: model.RoleTarget},
		},
	}, rep)

	if len(got) != 2 {
		t.Fatalf("expected 2 descriptors, got %d", len(got))
	}
	if got[0].Name != got[1].Name {
		t.Error("descriptors from one member must share the call-target name")
	}
	if diff := cmp.Diff(got[0].Parameters, got[1].Parameters); diff != "" {
		t.Errorf("parameters must be field-for-field equal:\n%s", diff)
	}
}

func TestMember_Idempotent(t *testing.T) {
	md := model.MemberDescription{
		Name:        "Persist",
		Markers:     []string{"insert", "update"},
		ReturnShape: model.ReturnVoid,
		Parameters: []model.ParameterDescription{
			{Name: "entity", Type: "Invoice", Role: model.RoleTarget},
			{Name: "note", Type: "string", Role: model.RoleBusiness},
		},
	}

	first := Member("Invoice", false, md, diag.NewCollector())
	second := Member("Invoice", false, md, diag.NewCollector())
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("classification is not idempotent:\n%s", diff)
	}
}

func TestType_DeclarationOrder(t *testing.T) {
	td := model.TypeDescription{
		Name: "Invoice",
		Members: []model.MemberDescription{
			{Name: "ByID", Markers: []string{"fetch"}, ReturnShape: model.ReturnNullableTarget},
			{Name: "Persist", Markers: []string{"insert"}, ReturnShape: model.ReturnVoid},
			{Name: "New", Markers: []string{"create"}, IsConstructor: true, ReturnShape: model.ReturnTarget},
		},
	}

	got := Type(td, diag.NewCollector())
	want := []string{"ByID", "Persist", "New"}
	if len(got) != len(want) {
		t.Fatalf("expected %d descriptors, got %d", len(want), len(got))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("descriptor %d = %s, want %s (declaration order)", i, got[i].Name, name)
		}
	}
}
