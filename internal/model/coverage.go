package model

import (
	"fmt"
	"strings"
)

// Coverage is a bitset of the operation kinds an authorization check covers.
// The meta-flags Read and Write expand to their primitive flags, so a check
// tagged "write" covers insert, update, and delete.
type Coverage uint8

const (
	CoverCreate Coverage = 1 << iota
	CoverFetch
	CoverInsert
	CoverUpdate
	CoverDelete
	CoverExecute

	CoverRead  = CoverCreate | CoverFetch | CoverExecute
	CoverWrite = CoverInsert | CoverUpdate | CoverDelete
	CoverNone  Coverage = 0
)

var coverageNames = map[string]Coverage{
	"create":  CoverCreate,
	"fetch":   CoverFetch,
	"insert":  CoverInsert,
	"update":  CoverUpdate,
	"delete":  CoverDelete,
	"execute": CoverExecute,
	"read":    CoverRead,
	"write":   CoverWrite,
}

// ParseCoverage expands a list of flag names (primitive or meta) into a
// coverage bitset. Unknown names are an error.
func ParseCoverage(names []string) (Coverage, error) {
	var c Coverage
	for _, n := range names {
		flag, ok := coverageNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return CoverNone, fmt.Errorf("unknown coverage flag %q", n)
		}
		c |= flag
	}
	return c, nil
}

// KindFlag maps an operation kind to its primitive coverage flag. Event-kind
// operations have no coverage flag and map to CoverNone.
func KindFlag(k OperationKind) Coverage {
	switch k {
	case KindCreate:
		return CoverCreate
	case KindFetch:
		return CoverFetch
	case KindInsert:
		return CoverInsert
	case KindUpdate:
		return CoverUpdate
	case KindDelete:
		return CoverDelete
	case KindExecute:
		return CoverExecute
	}
	return CoverNone
}

// Covers returns true if the coverage set includes the given kind.
func (c Coverage) Covers(k OperationKind) bool {
	flag := KindFlag(k)
	return flag != CoverNone && c&flag == flag
}

// Names returns the primitive flag names in the set, in a fixed order.
func (c Coverage) Names() []string {
	ordered := []struct {
		name string
		flag Coverage
	}{
		{"create", CoverCreate},
		{"fetch", CoverFetch},
		{"insert", CoverInsert},
		{"update", CoverUpdate},
		{"delete", CoverDelete},
		{"execute", CoverExecute},
	}
	var out []string
	for _, o := range ordered {
		if c&o.flag != 0 {
			out = append(out, o.name)
		}
	}
	return out
}
