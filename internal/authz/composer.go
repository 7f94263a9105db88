// Package authz composes authorization checks onto operations and evaluates
// the composed model at runtime. Composition is AND-semantics: an operation
// is authorized iff every bound check authorizes it, and on denial the first
// failing binding's reason (in binding order) is the one surfaced.
package authz

import (
	"github.com/opforge/opforge/internal/model"
)

// Compose selects every provider method whose coverage intersects the
// descriptor's kind, in provider then method declaration order, and appends
// the member's policy bindings. The result is an immutable value; repeated
// composition of the same inputs yields equal models.
func Compose(op model.OperationDescriptor, providers []model.AuthProviderDescription, policies []model.PolicyDescription) model.AuthorizationModel {
	var bindings []model.AuthCheckBinding

	for _, provider := range providers {
		for _, method := range provider.Methods {
			covers, err := model.ParseCoverage(method.Covers)
			if err != nil {
				// Unknown coverage names are dropped at input validation;
				// tolerate them here by skipping the method.
				continue
			}
			if !covers.Covers(op.Kind) {
				continue
			}
			bindings = append(bindings, model.AuthCheckBinding{
				ProviderName: provider.Name,
				MethodName:   method.Name,
				IsAsync:      method.IsAsync,
				IsRemote:     provider.IsRemote,
				Parameters:   copyParams(method.Parameters),
				Covers:       covers,
			})
		}
	}

	for _, policy := range policies {
		bindings = append(bindings, model.AuthCheckBinding{
			MethodName: policy.Name,
			IsAsync:    policy.IsAsync,
			IsPolicy:   true,
			Covers:     model.KindFlag(op.Kind),
		})
	}

	return model.AuthorizationModel{Bindings: bindings}
}

// Preflight synthesizes the companion "can-check" operation for op: same
// parameters minus the target, returning only the aggregated authorization
// result and never invoking the underlying operation. It evaluates only the
// instance-free bindings; when every binding is instance-bound no pre-flight
// is generated, since it would be unanswerable without the entity.
//
// The returned model holds the bindings the pre-flight evaluates. ok is false
// when no pre-flight applies (no bindings at all, or all instance-bound).
func Preflight(op model.OperationDescriptor, auth model.AuthorizationModel) (model.OperationDescriptor, model.AuthorizationModel, bool) {
	free := auth.InstanceFree()
	if len(free) == 0 {
		return model.OperationDescriptor{}, model.AuthorizationModel{}, false
	}

	var params []model.ParameterDescriptor
	for _, p := range op.Parameters {
		if p.Role == model.RoleTarget {
			continue
		}
		params = append(params, p)
	}

	shape := model.ReturnBool
	pre := model.AuthorizationModel{Bindings: free}
	if pre.IsAsync() || pre.IsRemote() {
		shape = model.ReturnAsyncBool
	}

	desc := model.OperationDescriptor{
		Name:        "Can" + op.Name,
		Kind:        op.Kind,
		Parameters:  params,
		ReturnShape: shape,
		IsRemote:    pre.IsRemote(),
		MemberIndex: op.MemberIndex,
	}
	return desc, pre, true
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
