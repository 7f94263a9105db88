package model

import "github.com/opforge/opforge/internal/diag"

// OperationPlanModel is the build-time record of one synthesized operation:
// its assigned (collision-free) name, delegate identity, public signature, and
// the dispatch attributes decided once at build time.
type OperationPlanModel struct {
	// Name is the assigned public name. Overloads sharing a base name get
	// deterministic suffixes; the lowest-arity overload keeps the base name.
	Name string `json:"name"`
	// BaseName is the name before disambiguation.
	BaseName   string `json:"base_name"`
	TypeName   string `json:"type_name"`
	DelegateID string `json:"delegate_id"`

	Kind        OperationKind         `json:"kind"`
	Parameters  []ParameterDescriptor `json:"params,omitempty"`
	ReturnShape ReturnShape           `json:"return"`

	// IsAsync is true if any participant in the chain is asynchronous: the
	// operation itself, a bound check, a policy, or a lifecycle hook. Decided
	// once at build time, never per call.
	IsAsync bool `json:"async"`
	// IsRemote is true if the operation or any bound check is remote.
	IsRemote    bool `json:"remote"`
	IsPreflight bool `json:"preflight"`
	// IsSave marks plans synthesized by the write-operation merger.
	IsSave bool `json:"save"`

	Authorization AuthorizationModel `json:"authorization"`
	// Save is populated for IsSave plans.
	Save *SaveOperationModel `json:"save_model,omitempty"`
	// SaveAuth holds the per-member composed authorization for IsSave plans,
	// keyed by write kind; the routed member's model gates the invocation.
	SaveAuth map[OperationKind]AuthorizationModel `json:"save_auth,omitempty"`
	// Descriptor is populated for plain (non-save) plans.
	Descriptor *OperationDescriptor `json:"descriptor,omitempty"`
}

// GeneratedUnit is the per-type output bundle of one build: every operation
// plan (including synthesized Save and pre-flight plans), the ordinal schema
// when one could be generated, and the diagnostics raised along the way.
// Units are pure values: building the same input twice yields byte-identical
// canonical JSON, which is what Fingerprint hashes.
type GeneratedUnit struct {
	TypeName string               `json:"type_name"`
	Plans    []OperationPlanModel `json:"plans"`
	// Hooks is the type's lifecycle-hook capability set, probed once at build
	// time and consulted again when strategies are registered.
	Hooks       HookCapabilities     `json:"hooks"`
	Schema      *OrdinalSchema       `json:"schema,omitempty"`
	Diagnostics []diag.Diagnostic    `json:"diagnostics,omitempty"`
	Fingerprint string               `json:"fingerprint"`
}

// Plan returns the plan with the given assigned name, or nil.
func (u *GeneratedUnit) Plan(name string) *OperationPlanModel {
	for i := range u.Plans {
		if u.Plans[i].Name == name {
			return &u.Plans[i]
		}
	}
	return nil
}

// RemotePlans returns the plans that carry a remote strategy.
func (u *GeneratedUnit) RemotePlans() []OperationPlanModel {
	var out []OperationPlanModel
	for _, p := range u.Plans {
		if p.IsRemote {
			out = append(out, p)
		}
	}
	return out
}
