package model

import "strings"

// ParameterDescriptor is a classified parameter of an operation.
type ParameterDescriptor struct {
	Name string        `json:"name"`
	Type string        `json:"type"`
	Role ParameterRole `json:"role"`
}

// OperationDescriptor is the normalized description of one operation a type
// supports. Descriptors are immutable value objects: once classified they are
// never mutated, and a member carrying two write-kind markers yields two
// descriptors sharing the same underlying call target.
type OperationDescriptor struct {
	Name            string                `json:"name"`
	Kind            OperationKind         `json:"kind"`
	IsConstructor   bool                  `json:"constructor"`
	IsStaticFactory bool                  `json:"static_factory"`
	Parameters      []ParameterDescriptor `json:"params"`
	ReturnShape     ReturnShape           `json:"return"`
	IsRemote        bool                  `json:"remote"`
	// MemberIndex is the declaration position of the source member within
	// its type. Overloads share a name but never an index.
	MemberIndex int `json:"member_index"`
}

// TargetParameter returns the descriptor's target-role parameter, if any.
func (d OperationDescriptor) TargetParameter() (ParameterDescriptor, bool) {
	for _, p := range d.Parameters {
		if p.Role == RoleTarget {
			return p, true
		}
	}
	return ParameterDescriptor{}, false
}

// PublicParameters returns the parameters that appear in a generated public
// signature: the target parameter first (when present), then business and
// cancellation parameters in declaration order. Service-role parameters are
// resolved externally and excluded.
func (d OperationDescriptor) PublicParameters() []ParameterDescriptor {
	var out []ParameterDescriptor
	if target, ok := d.TargetParameter(); ok {
		out = append(out, target)
	}
	for _, p := range d.Parameters {
		switch p.Role {
		case RoleBusiness, RoleCancellation:
			out = append(out, p)
		}
	}
	return out
}

// ExtraParameters returns the business and service parameters, excluding
// target and cancellation. This is the signature Save grouping is keyed on.
func (d OperationDescriptor) ExtraParameters() []ParameterDescriptor {
	var out []ParameterDescriptor
	for _, p := range d.Parameters {
		if p.Role == RoleBusiness || p.Role == RoleService {
			out = append(out, p)
		}
	}
	return out
}

// ExtraSignature returns a stable key for the extra-parameter list. Two
// descriptors share a Save group iff their keys are equal. The key is built
// from role and type only: parameter names may differ between the Insert and
// Update halves of one group.
func (d OperationDescriptor) ExtraSignature() string {
	params := d.ExtraParameters()
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = string(p.Role) + ":" + p.Type
	}
	return strings.Join(parts, ",")
}
