package registry

import (
	"fmt"
	"sort"
	"strings"
)

// LeakReport summarizes allocations that were still registered at Shutdown.
type LeakReport struct {
	Count  int
	Bytes  int64 // Total native bytes among the leaked entries
	Groups []LeakGroup
}

// LeakGroup counts leaked entries of one tag and strategy.
type LeakGroup struct {
	Tag      Tag
	Strategy Strategy
	Count    int
	Bytes    int64
}

type leakKey struct {
	tag      Tag
	strategy Strategy
}

func newLeakReport(live map[uintptr]*entry) LeakReport {
	var rep LeakReport
	if len(live) == 0 {
		return rep
	}

	groups := make(map[leakKey]*LeakGroup)
	for _, e := range live {
		k := leakKey{tag: e.tag, strategy: e.cleanup.strategy}
		g, ok := groups[k]
		if !ok {
			g = &LeakGroup{Tag: e.tag, Strategy: e.cleanup.strategy}
			groups[k] = g
		}
		g.Count++
		g.Bytes += e.size
		rep.Count++
		rep.Bytes += e.size
	}

	rep.Groups = make([]LeakGroup, 0, len(groups))
	for _, g := range groups {
		rep.Groups = append(rep.Groups, *g)
	}
	sort.Slice(rep.Groups, func(i, j int) bool {
		a, b := rep.Groups[i], rep.Groups[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Tag.String() != b.Tag.String() {
			return a.Tag.String() < b.Tag.String()
		}
		return a.Strategy < b.Strategy
	})
	return rep
}

// HasLeaks reports whether any allocation leaked.
func (r LeakReport) HasLeaks() bool {
	return r.Count > 0
}

// String returns the human-readable warning printed at shutdown, or "" when
// nothing leaked.
func (r LeakReport) String() string {
	if r.Count == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\nWARNING: %d tracked allocation(s) were not released at shutdown!\n", r.Count)
	for _, g := range r.Groups {
		if g.Bytes > 0 {
			fmt.Fprintf(&b, "  - %d %s (%s, %d bytes)\n", g.Count, g.Tag, g.Strategy, g.Bytes)
		} else {
			fmt.Fprintf(&b, "  - %d %s (%s)\n", g.Count, g.Tag, g.Strategy)
		}
	}
	b.WriteString("Each address handed to foreign code must be released exactly once.\n\n")
	return b.String()
}
