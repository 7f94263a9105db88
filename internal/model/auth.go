package model

// AuthCheckBinding binds one authorization check to an operation. Bindings
// come either from a provider method whose coverage intersects the operation's
// kind, or from a policy declared directly on the member.
type AuthCheckBinding struct {
	ProviderName string                `json:"provider"`
	MethodName   string                `json:"method"`
	IsAsync      bool                  `json:"async"`
	IsRemote     bool                  `json:"remote"`
	IsPolicy     bool                  `json:"policy"`
	Parameters   []ParameterDescriptor `json:"params,omitempty"`
	Covers       Coverage              `json:"covers"`
}

// IsInstanceBound returns true if the check's parameters include the target
// entity. Instance-bound checks cannot be evaluated before the entity exists,
// so they are excluded from pre-flight operations.
func (b AuthCheckBinding) IsInstanceBound() bool {
	for _, p := range b.Parameters {
		if p.Role == RoleTarget {
			return true
		}
	}
	return false
}

// AuthorizationModel is the ordered list of checks composed onto one
// operation. Composition is AND: the operation is authorized iff every
// binding authorizes it.
type AuthorizationModel struct {
	Bindings []AuthCheckBinding `json:"bindings,omitempty"`
}

// HasAuth returns true if any check is bound.
func (m AuthorizationModel) HasAuth() bool {
	return len(m.Bindings) > 0
}

// IsAsync returns true if any bound check is asynchronous.
func (m AuthorizationModel) IsAsync() bool {
	for _, b := range m.Bindings {
		if b.IsAsync {
			return true
		}
	}
	return false
}

// IsRemote returns true if any bound check is remote. A remote check promotes
// the whole operation's dispatch strategy to remote.
func (m AuthorizationModel) IsRemote() bool {
	for _, b := range m.Bindings {
		if b.IsRemote {
			return true
		}
	}
	return false
}

// InstanceFree returns the bindings that do not require the target entity, in
// binding order. These are the checks a pre-flight operation evaluates.
func (m AuthorizationModel) InstanceFree() []AuthCheckBinding {
	var out []AuthCheckBinding
	for _, b := range m.Bindings {
		if !b.IsInstanceBound() {
			out = append(out, b)
		}
	}
	return out
}
