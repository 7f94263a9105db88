package dispatch

import (
	"github.com/opforge/opforge/internal/model"
)

// Operation is one classified operation with its composed authorization,
// ready for plan synthesis.
type Operation struct {
	Descriptor model.OperationDescriptor
	Auth       model.AuthorizationModel
	// IsPreflight marks synthesized can-check operations. Pre-flights run no
	// lifecycle hooks and never invoke the underlying implementation.
	IsPreflight bool
}

// SaveGroup is one synthesized Save with the composed authorization of each
// participating member.
type SaveGroup struct {
	Model model.SaveOperationModel
	Auth  map[model.OperationKind]model.AuthorizationModel
}

// Synthesize produces the build-time plan models for a type: one per
// operation (including pre-flights) and one per Save group, with
// collision-free names, deterministic delegate identities, and the async and
// remote attributes fixed once for the type. The output is a pure function of
// the inputs.
func Synthesize(typeName string, hooks model.HookCapabilities, ops []Operation, saves []SaveGroup) []model.OperationPlanModel {
	plans := make([]model.OperationPlanModel, 0, len(ops)+len(saves))

	for _, op := range ops {
		d := op.Descriptor
		plan := model.OperationPlanModel{
			BaseName:      d.Name,
			Kind:          d.Kind,
			Parameters:    d.PublicParameters(),
			ReturnShape:   d.ReturnShape,
			IsRemote:      d.IsRemote || op.Auth.IsRemote(),
			IsPreflight:   op.IsPreflight,
			Authorization: op.Auth,
			Descriptor:    &d,
		}
		plan.IsAsync = d.ReturnShape.IsAsync() || op.Auth.IsAsync() || plan.IsRemote
		if !op.IsPreflight && hooks.AnyAsync() {
			// Hooks wrap real invocations only; pre-flights never run them.
			plan.IsAsync = true
		}
		if plan.IsAsync {
			plan.ReturnShape = plan.ReturnShape.AsAsync()
		}
		plans = append(plans, plan)
	}

	for i := range saves {
		sg := saves[i]
		sv := sg.Model
		shape := model.ReturnTarget
		if sv.IsNullableResult {
			shape = model.ReturnNullableTarget
		}
		plan := model.OperationPlanModel{
			BaseName:    sv.Name,
			Kind:        "",
			Parameters:  sv.PublicParameters(),
			ReturnShape: shape,
			IsSave:      true,
			Save:        &sg.Model,
			SaveAuth:    sg.Auth,
			IsRemote:    sv.IsRemote,
		}
		plan.IsAsync = sv.IsAsync() || hooks.AnyAsync()
		for _, auth := range sg.Auth {
			if auth.IsAsync() {
				plan.IsAsync = true
			}
			if auth.IsRemote() {
				plan.IsRemote = true
			}
		}
		if plan.IsRemote {
			plan.IsAsync = true
		}
		if plan.IsAsync {
			plan.ReturnShape = plan.ReturnShape.AsAsync()
		}
		plans = append(plans, plan)
	}

	// Resolve overload collisions and derive delegate identities from the
	// final assigned names.
	candidates := make([]nameCandidate, len(plans))
	for i, p := range plans {
		candidates[i] = nameCandidate{base: p.BaseName, arity: len(p.Parameters), index: i}
	}
	names := assignNames(candidates)
	for i := range plans {
		plans[i].Name = names[i]
		plans[i].TypeName = typeName
		plans[i].DelegateID = DelegateID(typeName, names[i])
	}
	return plans
}
