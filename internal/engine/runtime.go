package engine

import (
	"log/slog"

	"github.com/opforge/opforge/internal/authz"
	"github.com/opforge/opforge/internal/dispatch"
	"github.com/opforge/opforge/internal/model"
)

// Binder supplies the runtime collaborators a generated unit needs when its
// strategies are registered: the underlying member implementations, the
// lifecycle-hook host, and the authorization-evaluation runtime.
type Binder interface {
	// Impl returns the call target for a member of a type. Returning nil
	// leaves the operation unregistered.
	Impl(typeName, memberName string) dispatch.Impl
	// HookHost returns the type's lifecycle-hook host, or nil.
	HookHost(typeName string) any
	// Evaluator executes bound authorization checks.
	Evaluator() authz.Evaluator
}

// RegisterUnit builds the local strategy for every plan in the unit and
// registers it. Hook capability is resolved once per type here, never per
// invocation. Whether the local or the remote strategy is active per plan is
// the registry's decision, made at registration from its execution mode.
func RegisterUnit(reg *dispatch.Registry, unit *model.GeneratedUnit, binder Binder, logger *slog.Logger) {
	hooks := dispatch.ResolveHooks(unit.Hooks, binder.HookHost(unit.TypeName))
	evaluator := binder.Evaluator()

	for _, plan := range unit.Plans {
		var strategy dispatch.Strategy

		switch {
		case plan.IsPreflight:
			strategy = &dispatch.PreflightStrategy{Plan: plan, Evaluator: evaluator}

		case plan.IsSave:
			impls := map[model.OperationKind]dispatch.Impl{}
			for _, kind := range []model.OperationKind{model.KindInsert, model.KindUpdate, model.KindDelete} {
				member := plan.Save.Member(kind)
				if member == nil {
					continue
				}
				if impl := binder.Impl(unit.TypeName, member.Name); impl != nil {
					impls[kind] = impl
				}
			}
			strategy = &dispatch.SaveStrategy{
				Plan:      plan,
				Impls:     impls,
				Evaluator: evaluator,
				Hooks:     hooks,
				Logger:    logger,
			}

		default:
			impl := binder.Impl(unit.TypeName, plan.Descriptor.Name)
			if impl == nil {
				continue
			}
			strategy = &dispatch.LocalStrategy{
				Plan:      plan,
				Impl:      impl,
				Evaluator: evaluator,
				Hooks:     hooks,
				Logger:    logger,
			}
		}

		reg.Register(plan, strategy)
	}
}
