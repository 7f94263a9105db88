package model

// SaveOperationModel is a synthesized Save operation covering one group of
// Insert/Update/Delete descriptors that share an extra-parameter signature.
// At most one member descriptor per kind; routing between them happens at
// invocation time from the entity's isNew/isDeleted flags.
type SaveOperationModel struct {
	Name   string               `json:"name"`
	Insert *OperationDescriptor `json:"insert,omitempty"`
	Update *OperationDescriptor `json:"update,omitempty"`
	Delete *OperationDescriptor `json:"delete,omitempty"`

	// ExtraParameters is the group's shared business/service parameter list,
	// taken from the representative (first-declared) member.
	ExtraParameters []ParameterDescriptor `json:"extra_params,omitempty"`

	IsRemote bool `json:"remote"`
	// IsNullableResult is true when the group contains a Delete member (a
	// delete has no persisted instance to return) or any member returns a
	// nullable shape.
	IsNullableResult bool `json:"nullable_result"`
	// IsDefault is true iff the extra-parameter signature is empty. At most
	// one Save per type is default.
	IsDefault bool `json:"default"`
}

// Member returns the group's descriptor for the given write kind, or nil.
func (s *SaveOperationModel) Member(k OperationKind) *OperationDescriptor {
	switch k {
	case KindInsert:
		return s.Insert
	case KindUpdate:
		return s.Update
	case KindDelete:
		return s.Delete
	}
	return nil
}

// PublicParameters returns the Save operation's public signature: the target
// entity first, then the group's business parameters.
func (s *SaveOperationModel) PublicParameters() []ParameterDescriptor {
	out := []ParameterDescriptor{{Name: "target", Type: "", Role: RoleTarget}}
	for _, p := range s.ExtraParameters {
		if p.Role == RoleBusiness {
			out = append(out, p)
		}
	}
	return out
}

// IsAsync returns true if any group member is asynchronous.
func (s *SaveOperationModel) IsAsync() bool {
	for _, d := range []*OperationDescriptor{s.Insert, s.Update, s.Delete} {
		if d != nil && d.ReturnShape.IsAsync() {
			return true
		}
	}
	return false
}
