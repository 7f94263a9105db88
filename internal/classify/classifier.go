// Package classify turns raw member descriptions into normalized operation
// descriptors, enforcing the shape constraints each operation kind carries.
package classify

import (
	"github.com/opforge/opforge/internal/diag"
	"github.com/opforge/opforge/internal/model"
)

// Member classifies one member description into zero or more operation
// descriptors. A member carrying several write-kind markers yields one
// descriptor per kind, all sharing the same underlying call target. The
// classifier never fails on malformed input: violating descriptors are
// dropped with a diagnostic and classification continues.
//
// Member is a pure function of its inputs (plus the collector it reports
// into): classifying the same description twice yields field-for-field equal
// descriptors.
func Member(typeName string, containerStatic bool, md model.MemberDescription, rep *diag.Collector) []model.OperationDescriptor {
	kinds := recognizedKinds(md.Markers)
	if len(kinds) == 0 {
		rep.Infof(diag.CodeUnrecognizedMemberIgnored, typeName, md.Name,
			"no operation marker present; member ignored")
		return nil
	}

	if n := targetCount(md.Parameters); n > 1 {
		rep.Errorf(diag.CodeStructuralViolation, typeName, md.Name,
			"%d target-role parameters declared; at most one is allowed", n)
		return nil
	}

	var out []model.OperationDescriptor
	for _, kind := range kinds {
		if !validate(typeName, containerStatic, md, kind, rep) {
			continue
		}
		out = append(out, model.OperationDescriptor{
			Name:            md.Name,
			Kind:            kind,
			IsConstructor:   md.IsConstructor,
			IsStaticFactory: md.IsStatic && !md.IsConstructor,
			Parameters:      copyParams(md.Parameters),
			ReturnShape:     md.ReturnShape,
			IsRemote:        md.IsRemote,
		})
	}
	return out
}

// Type classifies every member of a type description, in declaration order.
// Each descriptor records the position of its source member, so overloads
// (same name, different members) stay distinguishable downstream.
func Type(td model.TypeDescription, rep *diag.Collector) []model.OperationDescriptor {
	var out []model.OperationDescriptor
	for i, md := range td.Members {
		descs := Member(td.Name, td.IsStatic, md, rep)
		for j := range descs {
			descs[j].MemberIndex = i
		}
		out = append(out, descs...)
	}
	return out
}

// validate enforces the per-kind return shape and structural constraints.
// Returns false (after reporting) when the descriptor must be dropped.
func validate(typeName string, containerStatic bool, md model.MemberDescription, kind model.OperationKind, rep *diag.Collector) bool {
	shape := md.ReturnShape

	switch kind {
	case model.KindCreate, model.KindFetch:
		// Any shape except the Execute result shape; constructors, static
		// factories, and instance methods are all acceptable.
		if shape == model.ReturnAsyncResult {
			rep.Errorf(diag.CodeStructuralViolation, typeName, md.Name,
				"%s member may not return %s", kind, shape)
			return false
		}

	case model.KindInsert, model.KindUpdate, model.KindDelete:
		if shape.ReturnsTarget() {
			rep.Warnf(diag.CodeStructuralViolation, typeName, md.Name,
				"%s member may not return the target entity (declared %s); descriptor dropped", kind, shape)
			return false
		}
		if shape == model.ReturnAsyncResult {
			rep.Warnf(diag.CodeStructuralViolation, typeName, md.Name,
				"%s member may not return %s; descriptor dropped", kind, shape)
			return false
		}

	case model.KindExecute:
		if shape != model.ReturnAsyncResult {
			rep.Errorf(diag.CodeStructuralViolation, typeName, md.Name,
				"execute member must return %s, declared %s", model.ReturnAsyncResult, shape)
			return false
		}
		if !md.IsStatic || !containerStatic {
			rep.Errorf(diag.CodeStructuralViolation, typeName, md.Name,
				"execute member must be a static member of a static container")
			return false
		}

	case model.KindEvent:
		if shape != model.ReturnVoid && shape != model.ReturnAsyncVoid {
			rep.Errorf(diag.CodeStructuralViolation, typeName, md.Name,
				"event member must return %s or %s, declared %s",
				model.ReturnVoid, model.ReturnAsyncVoid, shape)
			return false
		}
		if !hasTrailingCancellation(md.Parameters) {
			rep.Errorf(diag.CodeStructuralViolation, typeName, md.Name,
				"event member must declare a trailing cancellation-signal parameter")
			return false
		}
	}
	return true
}

// recognizedKinds maps the member's markers to operation kinds, preserving
// declaration order and dropping duplicates. Unrecognized markers are
// skipped; they count as "no marker" if nothing else is recognized.
func recognizedKinds(markers []string) []model.OperationKind {
	var out []model.OperationKind
	seen := map[model.OperationKind]bool{}
	for _, m := range markers {
		if !model.ValidKind(m) {
			continue
		}
		k := model.OperationKind(m)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func targetCount(params []model.ParameterDescription) int {
	n := 0
	for _, p := range params {
		if p.Role == model.RoleTarget {
			n++
		}
	}
	return n
}

func hasTrailingCancellation(params []model.ParameterDescription) bool {
	if len(params) == 0 {
		return false
	}
	return params[len(params)-1].Role == model.RoleCancellation
}

func copyParams(params []model.ParameterDescription) []model.ParameterDescriptor {
	if len(params) == 0 {
		return nil
	}
	out := make([]model.ParameterDescriptor, len(params))
	for i, p := range params {
		out[i] = model.ParameterDescriptor{Name: p.Name, Type: p.Type, Role: p.Role}
	}
	return out
}
