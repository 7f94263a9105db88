package engine

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/opforge/opforge/internal/authz"
	"github.com/opforge/opforge/internal/dispatch"
)

// mapBinder binds implementations from a flat "Type.Member" map.
type mapBinder struct {
	impls map[string]dispatch.Impl
	host  any
}

func (b *mapBinder) Impl(typeName, memberName string) dispatch.Impl {
	return b.impls[typeName+"."+memberName]
}
func (b *mapBinder) HookHost(string) any          { return b.host }
func (b *mapBinder) Evaluator() authz.Evaluator   { return authz.AllowAll }

type saveEntity struct{ isNew, isDeleted bool }

func (e saveEntity) IsNew() bool     { return e.isNew }
func (e saveEntity) IsDeleted() bool { return e.isDeleted }

func TestRegisterUnit_EndToEnd(t *testing.T) {
	unit := BuildUnit(invoiceDescription())
	reg, err := dispatch.NewRegistry(dispatch.ModeLocalOnly, nil)
	if err != nil {
		t.Fatal(err)
	}

	var inserted, fetched bool
	binder := &mapBinder{impls: map[string]dispatch.Impl{
		"Invoice.ByID": func(context.Context, *dispatch.Call) (any, error) {
			fetched = true
			return "invoice-1", nil
		},
		"Invoice.DoInsert": func(context.Context, *dispatch.Call) (any, error) {
			inserted = true
			return nil, nil
		},
	}}
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))

	RegisterUnit(reg, unit, binder, logger)

	// Bound operation executes.
	result, err := reg.Call(context.Background(), unit.Plan("ByID").DelegateID, &dispatch.Call{
		TypeName: "Invoice", Operation: "ByID", Args: []any{"inv-1"},
	})
	if err != nil || result != "invoice-1" || !fetched {
		t.Errorf("fetch failed: %v, %v", result, err)
	}

	// Unbound operation is left unregistered.
	_, err = reg.Call(context.Background(), unit.Plan("New").DelegateID, &dispatch.Call{})
	if err == nil {
		t.Error("unbound operation must not be registered")
	}

	// Pre-flights need no implementation.
	result, err = reg.Call(context.Background(), unit.Plan("CanByID").DelegateID, &dispatch.Call{
		TypeName: "Invoice", Operation: "CanByID",
	})
	if err != nil {
		t.Fatalf("pre-flight failed: %v", err)
	}
	if dec, ok := result.(authz.Decision); !ok || !dec.Authorized {
		t.Errorf("pre-flight result %v", result)
	}

	// Save routes to the one bound member; missing members fail the routed
	// call only when selected.
	savePlan := unit.Plan("Save")
	if _, err := reg.Call(context.Background(), savePlan.DelegateID, &dispatch.Call{
		TypeName: "Invoice", Operation: "Save", Target: saveEntity{isNew: true},
	}); err != nil {
		t.Fatalf("save insert failed: %v", err)
	}
	if !inserted {
		t.Error("insert member did not run")
	}
	if _, err := reg.Call(context.Background(), savePlan.DelegateID, &dispatch.Call{
		TypeName: "Invoice", Operation: "Save", Target: saveEntity{isDeleted: true},
	}); err == nil {
		t.Error("routing to the unbound delete member must fail")
	}
}
