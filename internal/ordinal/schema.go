// Package ordinal derives deterministic positional serialization schemas and
// the symmetric encode/decode procedures over them. The slot order is part of
// the wire contract: safe schema evolution is append-only and
// order-preserving for previously existing members.
package ordinal

import (
	"sort"

	"github.com/opforge/opforge/internal/diag"
	"github.com/opforge/opforge/internal/model"
)

// BuildSchema derives the ordinal schema for a type. The member order is a
// pure function of the member set: lexicographic by property name (byte
// order, case-sensitive), own and inherited properties in one list, never
// declaration order — two independent builds of identical input agree.
//
// A type whose construction requires externally-resolved service dependencies
// cannot be round-tripped by the positional decoder (the decoder has no
// source for them); BuildSchema skips such a type and reports a diagnostic
// instead of emitting a broken converter.
func BuildSchema(td model.TypeDescription, rep *diag.Collector) *model.OrdinalSchema {
	if len(td.ServiceDependencies) > 0 {
		rep.Warnf(diag.CodeSchemaOptOut, td.Name, "",
			"construction requires %d service dependencies; positional converter skipped",
			len(td.ServiceDependencies))
		return nil
	}

	props := make([]model.PropertyDescription, len(td.Properties))
	copy(props, td.Properties)
	sort.Slice(props, func(i, j int) bool { return props[i].Name < props[j].Name })

	construction := td.Construction
	if construction == "" {
		construction = model.MutableAssignment
	}

	schema := &model.OrdinalSchema{
		TypeName:     td.Name,
		Properties:   make([]model.OrdinalProperty, len(props)),
		Construction: construction,
	}
	for i, p := range props {
		schema.Properties[i] = model.OrdinalProperty{
			Name:      p.Name,
			Type:      p.Type,
			Nullable:  p.Nullable,
			Class:     classify(p),
			SchemaRef: p.SchemaRef,
		}
	}
	return schema
}

func classify(p model.PropertyDescription) model.PropertyClass {
	switch {
	case p.Collection:
		return model.ClassCollection
	case p.Dynamic:
		return model.ClassDynamic
	case p.SchemaRef != "":
		return model.ClassNested
	default:
		return model.ClassPrimitive
	}
}
