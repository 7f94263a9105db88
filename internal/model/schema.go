package model

// PropertyClass classifies an ordinal schema entry for encode/decode.
type PropertyClass string

const (
	ClassPrimitive  PropertyClass = "primitive"
	ClassNested     PropertyClass = "nested"
	ClassCollection PropertyClass = "collection"
	ClassDynamic    PropertyClass = "dynamic"
)

// OrdinalProperty is one slot of an ordinal schema.
type OrdinalProperty struct {
	Name     string        `json:"name"`
	Type     string        `json:"type"`
	Nullable bool          `json:"nullable"`
	Class    PropertyClass `json:"class"`
	// SchemaRef names the nested type's schema for ClassNested entries, and
	// for ClassCollection entries whose elements are schema-bearing.
	SchemaRef string `json:"schema_ref,omitempty"`
}

// OrdinalSchema is the deterministic positional member ordering for a type.
// The order is a pure function of the member set — lexicographic by property
// name, byte order, own and inherited properties in one list — and is part of
// the wire contract: two independent builds of the same type agree, and a
// safe schema change is append-only and order-preserving.
type OrdinalSchema struct {
	TypeName     string            `json:"type_name"`
	Properties   []OrdinalProperty `json:"properties"`
	Construction ConstructionShape `json:"construction"`
}

// Arity returns the number of slots an encoded value of this schema carries.
func (s *OrdinalSchema) Arity() int {
	return len(s.Properties)
}
