// Package dag orders a subset of canvas nodes by the edges between them.
package dag

import (
	"errors"
	"fmt"
	"sort"

	"github.com/soochol/agentcanvas/internal/flow"
)

var ErrCycle = errors.New("cycle detected in canvas graph")

type DAG struct {
	nodes     map[string]flow.Node
	rank      map[string]int
	children  map[string][]string
	topoOrder []string
}

// Build indexes nodes and edges and computes a topological order. Ties are
// broken by position in nodes, so unconnected nodes keep canvas order.
func Build(nodes []flow.Node, edges []flow.Edge) (*DAG, error) {
	d := &DAG{
		nodes:    make(map[string]flow.Node),
		rank:     make(map[string]int),
		children: make(map[string][]string),
	}

	for i, n := range nodes {
		if _, exists := d.nodes[n.ID]; exists {
			return nil, fmt.Errorf("duplicate node ID: %s", n.ID)
		}
		d.nodes[n.ID] = n
		d.rank[n.ID] = i
	}

	for _, e := range edges {
		if _, ok := d.nodes[e.Source]; !ok {
			return nil, fmt.Errorf("edge references unknown node: %s", e.Source)
		}
		if _, ok := d.nodes[e.Target]; !ok {
			return nil, fmt.Errorf("edge references unknown node: %s", e.Target)
		}
		d.children[e.Source] = append(d.children[e.Source], e.Target)
	}

	order, err := d.topoSort()
	if err != nil {
		return nil, err
	}
	d.topoOrder = order
	return d, nil
}

func (d *DAG) topoSort() ([]string, error) {
	inDegree := make(map[string]int)
	for id := range d.nodes {
		inDegree[id] = 0
	}
	for _, children := range d.children {
		for _, c := range children {
			inDegree[c]++
		}
	}
	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	d.byRank(queue)
	var order []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)
		for _, c := range d.children[node] {
			inDegree[c]--
			if inDegree[c] == 0 {
				queue = append(queue, c)
			}
		}
		d.byRank(queue)
	}
	if len(order) != len(d.nodes) {
		return nil, ErrCycle
	}
	return order, nil
}

func (d *DAG) byRank(ids []string) {
	sort.Slice(ids, func(i, j int) bool { return d.rank[ids[i]] < d.rank[ids[j]] })
}

func (d *DAG) TopologicalOrder() []string { return d.topoOrder }

func (d *DAG) Node(id string) (flow.Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}
