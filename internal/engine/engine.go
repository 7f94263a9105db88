// Package engine orchestrates the per-type pipeline: classification,
// authorization composition, save merging, dispatch synthesis, and ordinal
// schema building. The pipeline is a pure, single-threaded transform per
// type: identical input produces byte-identical canonical output, which is
// what enables incremental recomputation.
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/opforge/opforge/internal/authz"
	"github.com/opforge/opforge/internal/classify"
	"github.com/opforge/opforge/internal/diag"
	"github.com/opforge/opforge/internal/dispatch"
	"github.com/opforge/opforge/internal/model"
	"github.com/opforge/opforge/internal/ordinal"
	"github.com/opforge/opforge/internal/save"
)

// UnitCache lets the engine skip types whose input has not changed since the
// last build. Implementations live in internal/cache; a nil cache disables
// incremental builds.
type UnitCache interface {
	Lookup(ctx context.Context, typeName, inputFingerprint string) (*model.GeneratedUnit, bool, error)
	Store(ctx context.Context, typeName, inputFingerprint string, unit *model.GeneratedUnit) error
}

// Engine builds generated units, consulting the cache when one is configured.
type Engine struct {
	cache UnitCache
}

// New creates an engine. cache may be nil.
func New(cache UnitCache) *Engine {
	return &Engine{cache: cache}
}

// BuildType builds the unit for one type, returning the cached unit when the
// input fingerprint matches. cached reports whether the unit was reused.
func (e *Engine) BuildType(ctx context.Context, td model.TypeDescription) (unit *model.GeneratedUnit, cached bool, err error) {
	fp, err := InputFingerprint(td)
	if err != nil {
		return nil, false, fmt.Errorf("fingerprint %s: %w", td.Name, err)
	}

	if e.cache != nil {
		hit, ok, err := e.cache.Lookup(ctx, td.Name, fp)
		if err != nil {
			return nil, false, fmt.Errorf("cache lookup %s: %w", td.Name, err)
		}
		if ok {
			return hit, true, nil
		}
	}

	unit = BuildUnit(td)
	if e.cache != nil {
		if err := e.cache.Store(ctx, td.Name, fp, unit); err != nil {
			return nil, false, fmt.Errorf("cache store %s: %w", td.Name, err)
		}
	}
	return unit, false, nil
}

// Bundle is the output of one whole build.
type Bundle struct {
	Units []*model.GeneratedUnit `json:"units"`
	// Reused counts units served from the cache.
	Reused int `json:"reused"`
}

// Build runs the pipeline over every type. Synthesis failures for one type
// never prevent synthesis for the others: all failures surface as
// diagnostics inside that type's unit.
func (e *Engine) Build(ctx context.Context, types []model.TypeDescription) (*Bundle, error) {
	bundle := &Bundle{}
	for _, td := range types {
		unit, cached, err := e.BuildType(ctx, td)
		if err != nil {
			return nil, err
		}
		if cached {
			bundle.Reused++
		}
		bundle.Units = append(bundle.Units, unit)
	}
	return bundle, nil
}

// BuildUnit is the pure pipeline for one type. It never fails: structural
// problems drop the offending descriptor and land in the unit's diagnostics.
func BuildUnit(td model.TypeDescription) *model.GeneratedUnit {
	rep := diag.NewCollector()

	descriptors := classify.Type(td, rep)

	// Policies are keyed by member position, not name: overloads share a
	// name but each declares its own policies.
	policiesByMember := map[int][]model.PolicyDescription{}
	for i, md := range td.Members {
		if len(md.Policies) > 0 {
			policiesByMember[i] = md.Policies
		}
	}
	composeFor := func(d model.OperationDescriptor) model.AuthorizationModel {
		return authz.Compose(d, td.AuthProviders, policiesByMember[d.MemberIndex])
	}

	var ops []dispatch.Operation
	for _, d := range descriptors {
		auth := composeFor(d)
		ops = append(ops, dispatch.Operation{Descriptor: d, Auth: auth})

		if pf, pfAuth, ok := authz.Preflight(d, auth); ok {
			ops = append(ops, dispatch.Operation{Descriptor: pf, Auth: pfAuth, IsPreflight: true})
		}
	}

	var groups []dispatch.SaveGroup
	for _, sv := range save.Merge(td.Name, descriptors, rep) {
		group := dispatch.SaveGroup{
			Model: sv,
			Auth:  map[model.OperationKind]model.AuthorizationModel{},
		}
		for _, kind := range []model.OperationKind{model.KindInsert, model.KindUpdate, model.KindDelete} {
			if member := sv.Member(kind); member != nil {
				group.Auth[kind] = composeFor(*member)
			}
		}
		groups = append(groups, group)
	}

	unit := &model.GeneratedUnit{
		TypeName:    td.Name,
		Plans:       dispatch.Synthesize(td.Name, td.Hooks, ops, groups),
		Hooks:       td.Hooks,
		Schema:      ordinal.BuildSchema(td, rep),
		Diagnostics: rep.All(),
	}
	unit.Fingerprint = mustFingerprint(unit)
	return unit
}

// CanonicalJSON renders a unit to its canonical byte form: compact JSON with
// the Fingerprint field cleared. Two builds of identical input produce
// identical bytes.
func CanonicalJSON(unit *model.GeneratedUnit) ([]byte, error) {
	clone := *unit
	clone.Fingerprint = ""
	return json.Marshal(&clone)
}

// InputFingerprint hashes a type description. Cache entries are keyed on it.
func InputFingerprint(td model.TypeDescription) (string, error) {
	data, err := json.Marshal(td)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func mustFingerprint(unit *model.GeneratedUnit) string {
	data, err := CanonicalJSON(unit)
	if err != nil {
		// Units are built from plain value types; marshaling cannot fail.
		panic(fmt.Sprintf("canonical marshal of %s: %v", unit.TypeName, err))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
