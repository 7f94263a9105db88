package model

// TypeDescription is the raw input-model description of one entity type, as
// supplied by the input-model provider. It carries everything the pipeline
// needs: members with role markers, data properties, authorization providers,
// and the type's lifecycle-hook capabilities.
type TypeDescription struct {
	Name string `yaml:"name" json:"name"`
	// IsStatic marks a static container (a type with no instances). Execute
	// members are only legal on static containers.
	IsStatic bool `yaml:"static" json:"static"`

	Members    []MemberDescription   `yaml:"members" json:"members"`
	Properties []PropertyDescription `yaml:"properties" json:"properties"`

	AuthProviders []AuthProviderDescription `yaml:"auth_providers" json:"auth_providers,omitempty"`
	Hooks         HookCapabilities          `yaml:"hooks" json:"hooks"`

	// Construction describes how instances come into being during ordinal
	// decoding: one assignment per member, or all members at once.
	Construction ConstructionShape `yaml:"construction" json:"construction"`
	// ServiceDependencies lists externally-resolved dependencies required to
	// construct the type. A non-empty list opts the type out of ordinal
	// converter generation: the decoder has no source for them.
	ServiceDependencies []string `yaml:"service_dependencies" json:"service_dependencies,omitempty"`
}

// MemberDescription is the raw description of one candidate member.
type MemberDescription struct {
	Name string `yaml:"name" json:"name"`
	// Markers carries the role markers attached to the member ("create",
	// "insert", ...). A member may carry more than one write-kind marker; it
	// then classifies into multiple descriptors sharing one call target.
	Markers       []string               `yaml:"markers" json:"markers"`
	IsConstructor bool                   `yaml:"constructor" json:"constructor"`
	IsStatic      bool                   `yaml:"static" json:"static"`
	ReturnShape   ReturnShape            `yaml:"return" json:"return"`
	IsRemote      bool                   `yaml:"remote" json:"remote"`
	Parameters    []ParameterDescription `yaml:"params" json:"params"`
	// Policies are framework-policy-style authorization bindings declared
	// directly on the member.
	Policies []PolicyDescription `yaml:"policies" json:"policies,omitempty"`
}

// ParameterDescription is a declared parameter of a member or check.
type ParameterDescription struct {
	Name string        `yaml:"name" json:"name"`
	Type string        `yaml:"type" json:"type"`
	Role ParameterRole `yaml:"role" json:"role"`
}

// PropertyDescription is one data member of the type, used by the ordinal
// schema builder. Inherited properties are flattened into the same list.
type PropertyDescription struct {
	Name     string `yaml:"name" json:"name"`
	Type     string `yaml:"type" json:"type"`
	Nullable bool   `yaml:"nullable" json:"nullable"`
	// Inherited marks properties declared on an ancestor type.
	Inherited bool `yaml:"inherited" json:"inherited"`
	// SchemaRef names another described type whose ordinal schema encodes
	// this property. Empty for non-schema-bearing properties.
	SchemaRef string `yaml:"schema_ref" json:"schema_ref,omitempty"`
	// Collection marks list-valued properties.
	Collection bool `yaml:"collection" json:"collection"`
	// Dynamic marks properties with no statically known type.
	Dynamic bool `yaml:"dynamic" json:"dynamic"`
}

// AuthProviderDescription describes one authorization provider bound to the
// type, with the check methods it exposes.
type AuthProviderDescription struct {
	Name     string                  `yaml:"name" json:"name"`
	IsRemote bool                    `yaml:"remote" json:"remote"`
	Methods  []AuthMethodDescription `yaml:"methods" json:"methods"`
}

// AuthMethodDescription describes one check method on a provider. Covers
// holds coverage flag names, primitive or meta ("read"/"write").
type AuthMethodDescription struct {
	Name       string                 `yaml:"name" json:"name"`
	IsAsync    bool                   `yaml:"async" json:"async"`
	Covers     []string               `yaml:"covers" json:"covers"`
	Parameters []ParameterDescription `yaml:"params" json:"params"`
}

// PolicyDescription is a named policy binding declared on a member.
type PolicyDescription struct {
	Name    string `yaml:"name" json:"name"`
	IsAsync bool   `yaml:"async" json:"async"`
}

// HookCapabilities records which lifecycle hooks the declaring type
// implements, probed once at build time. When both the sync and async variant
// of a hook exist, the async variant is the one invoked.
type HookCapabilities struct {
	PreSync       bool `yaml:"pre_sync" json:"pre_sync"`
	PreAsync      bool `yaml:"pre_async" json:"pre_async"`
	PostSync      bool `yaml:"post_sync" json:"post_sync"`
	PostAsync     bool `yaml:"post_async" json:"post_async"`
	CanceledSync  bool `yaml:"canceled_sync" json:"canceled_sync"`
	CanceledAsync bool `yaml:"canceled_async" json:"canceled_async"`
}

// AnyAsync returns true if any declared hook variant is asynchronous.
func (h HookCapabilities) AnyAsync() bool {
	return h.PreAsync || h.PostAsync || h.CanceledAsync
}

// ConstructionShape describes how the ordinal decoder materializes instances.
type ConstructionShape string

const (
	// MutableAssignment assigns members one at a time as they are decoded.
	MutableAssignment ConstructionShape = "mutable"
	// AllAtOnceConstruction buffers every decoded value and constructs the
	// instance in one step.
	AllAtOnceConstruction ConstructionShape = "all_at_once"
)

// ValidConstructionShape returns true if s is a recognized construction shape.
func ValidConstructionShape(s string) bool {
	switch ConstructionShape(s) {
	case MutableAssignment, AllAtOnceConstruction:
		return true
	}
	return false
}
