package dispatch

import (
	"sort"
	"strconv"
)

// nameCandidate is one sibling competing for a base name.
type nameCandidate struct {
	base  string
	arity int
	index int // declaration position, the tie-breaker
}

// assignNames resolves name collisions among sibling operations. Within each
// base-name group, candidates are ordered by ascending public parameter
// count (declaration order breaks ties); the lowest-arity overload keeps the
// unsuffixed name and the rest receive the base name plus their arity. The
// result is aligned with the input by index and depends only on the sibling
// list, never on build-internal iteration order.
func assignNames(candidates []nameCandidate) []string {
	byBase := map[string][]nameCandidate{}
	for _, c := range candidates {
		byBase[c.base] = append(byBase[c.base], c)
	}

	assigned := make([]string, len(candidates))
	taken := map[string]bool{}
	for _, c := range candidates {
		taken[c.base] = true
	}

	// Contested suffixed names ("_n" fallback) resolve in base-name order,
	// never in map iteration order.
	bases := make([]string, 0, len(byBase))
	for base := range byBase {
		bases = append(bases, base)
	}
	sort.Strings(bases)

	for _, base := range bases {
		group := byBase[base]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].arity != group[j].arity {
				return group[i].arity < group[j].arity
			}
			return group[i].index < group[j].index
		})
		for pos, c := range group {
			name := base
			if pos > 0 {
				name = base + strconv.Itoa(c.arity)
				// A sibling may already own the suffixed name as its base.
				for n := 0; taken[name]; n++ {
					name = base + strconv.Itoa(c.arity) + "_" + strconv.Itoa(n)
				}
				taken[name] = true
			}
			assigned[c.index] = name
		}
	}
	return assigned
}
