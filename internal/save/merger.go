// Package save synthesizes Save operations from a type's Insert, Update, and
// Delete descriptors and owns the runtime routing table between them.
package save

import (
	"github.com/opforge/opforge/internal/diag"
	"github.com/opforge/opforge/internal/model"
)

// Merge groups a type's write descriptors by the structural equality of their
// extra-parameter signature (business and service parameters, excluding the
// target and cancellation) and synthesizes one SaveOperationModel per group.
// Groups form in first-appearance order, so repeated builds of identical
// input produce identical models. Non-write descriptors are ignored.
func Merge(typeName string, descs []model.OperationDescriptor, rep *diag.Collector) []model.SaveOperationModel {
	var order []string
	groups := map[string][]model.OperationDescriptor{}

	for _, d := range descs {
		if !d.Kind.IsWrite() {
			continue
		}
		key := d.ExtraSignature()
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], d)
	}
	if len(order) == 0 {
		return nil
	}

	var out []model.SaveOperationModel
	for _, key := range order {
		members := groups[key]
		save := model.SaveOperationModel{
			ExtraParameters: members[0].ExtraParameters(),
			IsDefault:       key == "",
		}

		for i := range members {
			d := members[i]
			existing := save.Member(d.Kind)
			if existing != nil {
				rep.Warnf(diag.CodeAmbiguousConfiguration, typeName, d.Name,
					"duplicate %s member in save group; %s is retained, %s is discarded",
					d.Kind, existing.Name, d.Name)
				continue
			}
			switch d.Kind {
			case model.KindInsert:
				save.Insert = &members[i]
			case model.KindUpdate:
				save.Update = &members[i]
			case model.KindDelete:
				save.Delete = &members[i]
			}
			if d.IsRemote {
				save.IsRemote = true
			}
			if d.Kind == model.KindDelete || d.ReturnShape.IsNullable() {
				save.IsNullableResult = true
			}
		}

		if len(order) == 1 {
			save.Name = "Save"
		} else {
			save.Name = "Save" + representative(members).Name
		}

		out = append(out, save)
	}
	return out
}

// representative is the group's first-declared member, whose name seeds the
// Save suffix when a type has more than one group.
func representative(members []model.OperationDescriptor) model.OperationDescriptor {
	return members[0]
}
