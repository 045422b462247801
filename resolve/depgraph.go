package resolve

import (
	"sort"
	"strings"

	"github.com/sdlang/xmile-core/diag"
	"github.com/sdlang/xmile-core/smile"
	"github.com/sdlang/xmile-core/symtab"
	"github.com/sdlang/xmile-core/xmile"
)

// node identifies one variable uniquely across the whole document: a
// model-scoped qualifier plus the variable's own display name, so
// same-named variables in different models never collide in the
// graph.
type node struct {
	model string
	name  string
}

// detectCycles builds the dependency graph spec section 4.6
// describes — edges from each variable's equation to every variable
// it references, stocks included via their (only) equation, which is
// their initial value — and reports one CyclicDependency diagnostic
// per strongly-connected component of size greater than one, plus a
// self-loop on any non-stock variable.
func detectCycles(doc *Document, c *diag.Collector) {
	g := newGraphBuilder()

	for _, m := range doc.Models {
		for _, eq := range m.Equations {
			if eq.AST == nil {
				continue
			}
			from := node{model: m.Doc.Name, name: eq.Var.Name}
			g.ensure(from)
			smile.Inspect(eq.AST, func(n smile.Node) bool {
				id, ok := n.(*smile.Ident)
				if !ok {
					return true
				}
				ref, ok := id.Ref.(*symtab.Referent)
				if !ok || ref.Kind != symtab.RefVariable {
					return true
				}
				to := node{model: m.Doc.Name, name: ref.Var.Name}
				g.addEdge(from, to)
				return true
			})
		}
	}

	sccs := g.tarjan()
	for _, scc := range sccs {
		if len(scc) > 1 {
			reportCycle(doc, scc, c)
			continue
		}
		v := scc[0]
		if g.hasEdge(v, v) && !isStock(doc, v) {
			reportCycle(doc, scc, c)
		}
	}
}

func isStock(doc *Document, n node) bool {
	m, ok := doc.Models[canonModelKey(doc, n.model)]
	if !ok {
		return false
	}
	for _, eq := range m.Equations {
		if eq.Var.Name == n.name {
			return eq.Var.Kind() == xmile.KindStock
		}
	}
	return false
}

func canonModelKey(doc *Document, modelName string) string {
	for key, m := range doc.Models {
		if m.Doc.Name == modelName {
			return key
		}
	}
	return ""
}

func reportCycle(doc *Document, scc []node, c *diag.Collector) {
	names := make([]string, len(scc))
	for i, n := range scc {
		names[i] = n.name
	}
	sort.Strings(names)
	c.Add(diag.Diagnostic{
		Kind:         diag.CyclicDependency,
		Severity:     diag.Error,
		Message:      "cyclic dependency among " + strings.Join(names, ", "),
		Primary:      diag.Span{Path: "model[" + scc[0].model + "]"},
		DisplayNames: names,
	})
}

// graphBuilder is a small adjacency-list directed graph plus Tarjan's
// strongly-connected-components algorithm, run once per document
// after every model has been resolved.
type graphBuilder struct {
	idx   map[node]int
	nodes []node
	adj   [][]int
}

func newGraphBuilder() *graphBuilder {
	return &graphBuilder{idx: make(map[node]int)}
}

func (g *graphBuilder) ensure(n node) int {
	if i, ok := g.idx[n]; ok {
		return i
	}
	i := len(g.nodes)
	g.idx[n] = i
	g.nodes = append(g.nodes, n)
	g.adj = append(g.adj, nil)
	return i
}

func (g *graphBuilder) addEdge(from, to node) {
	fi := g.ensure(from)
	ti := g.ensure(to)
	g.adj[fi] = append(g.adj[fi], ti)
}

func (g *graphBuilder) hasEdge(from, to node) bool {
	fi, ok := g.idx[from]
	if !ok {
		return false
	}
	ti, ok := g.idx[to]
	if !ok {
		return false
	}
	for _, j := range g.adj[fi] {
		if j == ti {
			return true
		}
	}
	return false
}

// tarjan returns every strongly-connected component in the graph, in
// an unspecified order; each component is a slice of its member
// nodes.
func (g *graphBuilder) tarjan() [][]node {
	n := len(g.nodes)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}
	var stack []int
	next := 0
	var sccs [][]node

	var strongconnect func(v int)
	strongconnect = func(v int) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.adj[v] {
			if index[w] == -1 {
				strongconnect(w)
				if low[w] < low[v] {
					low[v] = low[w]
				}
			} else if onStack[w] {
				if index[w] < low[v] {
					low[v] = index[w]
				}
			}
		}

		if low[v] == index[v] {
			var comp []node
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, g.nodes[w])
				if w == v {
					break
				}
			}
			sccs = append(sccs, comp)
		}
	}

	for v := 0; v < n; v++ {
		if index[v] == -1 {
			strongconnect(v)
		}
	}
	return sccs
}
