package validator

import (
	"fmt"
	"sort"
	"strings"

	"goportfolio/domain/constraint"
)

type edge struct {
	to     string
	strict bool
	row    constraint.Constraint
}

// orderGraph is the directed "at least" graph of one criterion: an edge
// u -> v means value(u) >= value(v). Equalities add edges both ways.
type orderGraph struct {
	nodes []string
	adj   map[string][]edge
}

func newOrderGraph() *orderGraph {
	return &orderGraph{adj: make(map[string][]edge)}
}

func (g *orderGraph) addNode(n string) {
	if _, ok := g.adj[n]; !ok {
		g.adj[n] = nil
		g.nodes = append(g.nodes, n)
	}
}

func (g *orderGraph) addEdge(from, to string, strict bool, row constraint.Constraint) {
	g.addNode(from)
	g.addNode(to)
	g.adj[from] = append(g.adj[from], edge{to: to, strict: strict, row: row})
}

// cyclicContradictions builds one graph per criterion from comparison and
// ranking orderings and reports every strongly connected component of
// three or more projects that contains a strict edge. Such a component
// implies a cycle through a strict ordering, which no valuation satisfies.
// Two-project conflicts are left to the pairwise scan.
func cyclicContradictions(rows []constraint.Constraint) []Warning {
	graphs := make(map[string]*orderGraph)
	var criteria []string
	for _, c := range rows {
		o := c.Ordering
		if o == nil {
			continue
		}
		g, ok := graphs[c.Criterion]
		if !ok {
			g = newOrderGraph()
			graphs[c.Criterion] = g
			criteria = append(criteria, c.Criterion)
		}
		g.addEdge(o.Higher, o.Lower, o.Strict, c)
		if o.Equal {
			g.addEdge(o.Lower, o.Higher, false, c)
		}
	}

	var out []Warning
	for _, crit := range criteria {
		g := graphs[crit]
		for _, comp := range g.components() {
			if len(comp) < 3 {
				continue
			}
			members := make(map[string]bool, len(comp))
			for _, n := range comp {
				members[n] = true
			}

			var inner []constraint.Constraint
			seen := make(map[string]bool)
			strict := false
			for _, n := range comp {
				for _, e := range g.adj[n] {
					if !members[e.to] {
						continue
					}
					strict = strict || e.strict
					if !seen[e.row.ID] {
						seen[e.row.ID] = true
						inner = append(inner, e.row)
					}
				}
			}
			if !strict {
				continue
			}

			ids := make([]string, len(inner))
			for i, r := range inner {
				ids[i] = r.ID
			}
			sorted := append([]string(nil), comp...)
			sort.Strings(sorted)
			out = append(out, Warning{
				Code:          CodeCyclicContradiction,
				Message:       fmt.Sprintf("cyclic ordering among %s on %s", strings.Join(sorted, ", "), crit),
				Criterion:     crit,
				ConstraintIDs: ids,
				RecordIDs:     recordIDs(inner...),
			})
		}
	}
	return out
}

// components returns the strongly connected components using Tarjan's
// depth-first algorithm, visiting nodes in insertion order.
func (g *orderGraph) components() [][]string {
	index := make(map[string]int, len(g.nodes))
	low := make(map[string]int, len(g.nodes))
	onStack := make(map[string]bool, len(g.nodes))
	var stack []string
	var out [][]string
	next := 0

	var visit func(v string)
	visit = func(v string) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, e := range g.adj[v] {
			if _, seen := index[e.to]; !seen {
				visit(e.to)
				if low[e.to] < low[v] {
					low[v] = low[e.to]
				}
			} else if onStack[e.to] && index[e.to] < low[v] {
				low[v] = index[e.to]
			}
		}

		if low[v] == index[v] {
			var comp []string
			for {
				n := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[n] = false
				comp = append(comp, n)
				if n == v {
					break
				}
			}
			out = append(out, comp)
		}
	}

	for _, n := range g.nodes {
		if _, seen := index[n]; !seen {
			visit(n)
		}
	}
	return out
}
