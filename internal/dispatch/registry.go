package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/opforge/opforge/internal/model"
)

// Mode is the process-wide execution mode, chosen once when the registry is
// constructed. It decides which strategy a remote-flagged delegate binds at
// registration time; per-call branching never happens and call sites are
// identical in every mode.
type Mode string

const (
	// ModeInProcess hosts remote delegates in this process: remote-flagged
	// operations execute their local strategy (this is the server side).
	ModeInProcess Mode = "in_process"
	// ModeTransport sends every remote-flagged operation over the transport.
	ModeTransport Mode = "transport"
	// ModeLocalOnly runs everything locally with no transport configured.
	ModeLocalOnly Mode = "local_only"
)

// ValidMode returns true if m is a recognized execution mode.
func ValidMode(m string) bool {
	switch Mode(m) {
	case ModeInProcess, ModeTransport, ModeLocalOnly:
		return true
	}
	return false
}

// ErrNotRegistered is wrapped by Call when no delegate owns the identity.
var ErrNotRegistered = fmt.Errorf("delegate not registered")

type entry struct {
	plan   model.OperationPlanModel
	local  Strategy
	remote Strategy
	active Strategy
}

// Registry binds delegate identities to their execution strategies. Both the
// local and the remote strategy are registered; the mode fixes which one is
// active. Lookups are safe for concurrent use.
type Registry struct {
	mode      Mode
	transport Transport

	mu      sync.RWMutex
	entries map[string]*entry
}

// NewRegistry creates a registry in the given mode. transport may be nil for
// ModeInProcess and ModeLocalOnly; ModeTransport requires one.
func NewRegistry(mode Mode, transport Transport) (*Registry, error) {
	if mode == ModeTransport && transport == nil {
		return nil, fmt.Errorf("execution mode %s requires a transport", mode)
	}
	return &Registry{
		mode:      mode,
		transport: transport,
		entries:   map[string]*entry{},
	}, nil
}

// Mode returns the registry's execution mode.
func (r *Registry) Mode() Mode {
	return r.mode
}

// Register binds an operation plan to its local strategy. For remote-flagged
// plans a remote strategy is synthesized as well; which of the two is active
// is decided here, once, from the registry mode.
func (r *Registry) Register(plan model.OperationPlanModel, local Strategy) {
	e := &entry{plan: plan, local: local, active: local}
	if plan.IsRemote && r.transport != nil {
		e.remote = &RemoteStrategy{Plan: plan, Transport: r.transport}
		if r.mode == ModeTransport {
			e.active = e.remote
		}
	}

	r.mu.Lock()
	r.entries[plan.DelegateID] = e
	r.mu.Unlock()
}

// Call invokes the active strategy for the delegate identity.
func (r *Registry) Call(ctx context.Context, delegateID string, call *Call) (any, error) {
	e, err := r.lookup(delegateID)
	if err != nil {
		return nil, err
	}
	return e.active.Invoke(ctx, call)
}

// CallLocal always invokes the local strategy, regardless of mode. The
// transport server uses it to execute delegates it hosts without looping back
// over the wire.
func (r *Registry) CallLocal(ctx context.Context, delegateID string, call *Call) (any, error) {
	e, err := r.lookup(delegateID)
	if err != nil {
		return nil, err
	}
	return e.local.Invoke(ctx, call)
}

// Plan returns the registered plan for a delegate identity.
func (r *Registry) Plan(delegateID string) (model.OperationPlanModel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[delegateID]
	if !ok {
		return model.OperationPlanModel{}, false
	}
	return e.plan, true
}

// DelegateIDs returns every registered identity.
func (r *Registry) DelegateIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.entries))
	for id := range r.entries {
		out = append(out, id)
	}
	return out
}

func (r *Registry) lookup(delegateID string) (*entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[delegateID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, delegateID)
	}
	return e, nil
}
