package workflow

import (
	"fmt"

	"github.com/google/uuid"
)

type NodeType string

const (
	NodeTrigger   NodeType = "trigger"
	NodeAction    NodeType = "action"
	NodeCondition NodeType = "condition"
)

func (t NodeType) IsValid() bool {
	return t == NodeTrigger || t == NodeAction || t == NodeCondition
}

const (
	BranchTrue  = "true"
	BranchFalse = "false"

	MaxNodes = 200
	MaxEdges = 500

	LayoutColumnWidth = 280
	LayoutRowHeight   = 140
)

type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

type Node struct {
	ID        string         `json:"id" yaml:"id"`
	Type      NodeType       `json:"type" yaml:"type"`
	Platform  string         `json:"platform,omitempty" yaml:"platform,omitempty"`
	Operation string         `json:"operation,omitempty" yaml:"operation,omitempty"`
	Label     string         `json:"label" yaml:"label"`
	Position  Position       `json:"position" yaml:"position"`
	Config    map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

type Edge struct {
	ID     string `json:"id" yaml:"id"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
	// Branch is "true" or "false" on edges leaving a condition node.
	Branch string `json:"branch,omitempty" yaml:"branch,omitempty"`
}

type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Issue codes.
const (
	IssueTooLarge        = "too_large"
	IssueMissingNodeID   = "missing_node_id"
	IssueDuplicateNodeID = "duplicate_node_id"
	IssueInvalidNodeType = "invalid_node_type"
	IssueUnknownEndpoint = "unknown_endpoint"
	IssueSelfLoop        = "self_loop"
	IssueDuplicateEdge   = "duplicate_edge"
	IssueInvalidBranch   = "invalid_branch"
	IssueMissingTrigger  = "missing_trigger"
	IssueTriggerHasInput = "trigger_has_input"
	IssueCycle           = "cycle"
	IssueUnreachable     = "unreachable_node"
	IssueDuplicateBranch = "duplicate_branch"
)

type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	NodeID  string `json:"node_id,omitempty"`
	EdgeID  string `json:"edge_id,omitempty"`
}

// WithGeneratedIDs fills in missing node and edge IDs.
func (g Graph) WithGeneratedIDs() Graph {
	out := g.clone()
	for i := range out.Nodes {
		if out.Nodes[i].ID == "" {
			out.Nodes[i].ID = uuid.NewString()
		}
	}
	for i := range out.Edges {
		if out.Edges[i].ID == "" {
			out.Edges[i].ID = uuid.NewString()
		}
	}
	return out
}

func (g Graph) clone() Graph {
	return Graph{
		Nodes: append([]Node(nil), g.Nodes...),
		Edges: append([]Edge(nil), g.Edges...),
	}
}

func (g Graph) nodeIndex() map[string]int {
	idx := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		if _, seen := idx[n.ID]; !seen {
			idx[n.ID] = i
		}
	}
	return idx
}

// CheckStructure returns the problems that make a graph unsavable: bad
// node ids or types, dangling or duplicate edges, self loops and branches
// outside condition nodes.
func (g Graph) CheckStructure() []Issue {
	var issues []Issue
	if len(g.Nodes) > MaxNodes || len(g.Edges) > MaxEdges {
		return []Issue{{Code: IssueTooLarge, Message: fmt.Sprintf("a workflow may have at most %d nodes and %d edges", MaxNodes, MaxEdges)}}
	}

	seen := map[string]bool{}
	for _, n := range g.Nodes {
		switch {
		case n.ID == "":
			issues = append(issues, Issue{Code: IssueMissingNodeID, Message: "node is missing an id"})
		case seen[n.ID]:
			issues = append(issues, Issue{Code: IssueDuplicateNodeID, Message: fmt.Sprintf("node id %q is used more than once", n.ID), NodeID: n.ID})
		}
		seen[n.ID] = true
		if !n.Type.IsValid() {
			issues = append(issues, Issue{Code: IssueInvalidNodeType, Message: fmt.Sprintf("node %q has unknown type %q", n.ID, n.Type), NodeID: n.ID})
		}
	}

	idx := g.nodeIndex()
	pairs := map[[2]string]bool{}
	for _, e := range g.Edges {
		_, srcOK := idx[e.Source]
		_, dstOK := idx[e.Target]
		if !srcOK || !dstOK {
			issues = append(issues, Issue{Code: IssueUnknownEndpoint, Message: fmt.Sprintf("edge %q references a node that does not exist", e.ID), EdgeID: e.ID})
			continue
		}
		if e.Source == e.Target {
			issues = append(issues, Issue{Code: IssueSelfLoop, Message: fmt.Sprintf("edge %q connects node %q to itself", e.ID, e.Source), EdgeID: e.ID})
			continue
		}
		key := [2]string{e.Source, e.Target}
		if pairs[key] {
			issues = append(issues, Issue{Code: IssueDuplicateEdge, Message: fmt.Sprintf("nodes %q and %q are connected more than once", e.Source, e.Target), EdgeID: e.ID})
		}
		pairs[key] = true

		isCondition := g.Nodes[idx[e.Source]].Type == NodeCondition
		switch {
		case e.Branch != "" && !isCondition:
			issues = append(issues, Issue{Code: IssueInvalidBranch, Message: fmt.Sprintf("edge %q has a branch but does not leave a condition", e.ID), EdgeID: e.ID})
		case e.Branch != "" && e.Branch != BranchTrue && e.Branch != BranchFalse:
			issues = append(issues, Issue{Code: IssueInvalidBranch, Message: fmt.Sprintf("edge %q has branch %q; expected true or false", e.ID, e.Branch), EdgeID: e.ID})
		}
	}
	return issues
}

// CheckPublishable returns every problem that prevents publishing. It
// includes the structural checks.
func (g Graph) CheckPublishable() []Issue {
	issues := g.CheckStructure()
	if len(issues) > 0 {
		return issues
	}

	incoming := map[string]int{}
	branches := map[string]map[string]bool{}
	for _, e := range g.Edges {
		incoming[e.Target]++
		if e.Branch != "" {
			if branches[e.Source] == nil {
				branches[e.Source] = map[string]bool{}
			}
			if branches[e.Source][e.Branch] {
				issues = append(issues, Issue{Code: IssueDuplicateBranch, Message: fmt.Sprintf("condition %q has more than one %q branch", e.Source, e.Branch), NodeID: e.Source})
			}
			branches[e.Source][e.Branch] = true
		}
	}

	triggers := 0
	for _, n := range g.Nodes {
		if n.Type != NodeTrigger {
			continue
		}
		triggers++
		if incoming[n.ID] > 0 {
			issues = append(issues, Issue{Code: IssueTriggerHasInput, Message: fmt.Sprintf("trigger %q cannot have incoming connections", n.ID), NodeID: n.ID})
		}
	}
	if triggers == 0 {
		issues = append(issues, Issue{Code: IssueMissingTrigger, Message: "a workflow needs at least one trigger"})
	}

	if _, cyclic := g.topologicalOrder(); len(cyclic) > 0 {
		for _, id := range cyclic {
			issues = append(issues, Issue{Code: IssueCycle, Message: fmt.Sprintf("node %q is part of or depends on a cycle", id), NodeID: id})
		}
	}

	reached := g.reachableFromTriggers()
	for _, n := range g.Nodes {
		if n.Type != NodeTrigger && !reached[n.ID] {
			issues = append(issues, Issue{Code: IssueUnreachable, Message: fmt.Sprintf("node %q is not reachable from any trigger", n.ID), NodeID: n.ID})
		}
	}
	return issues
}

// Step is one entry of a dry-run execution plan.
type Step struct {
	Order    int      `json:"order"`
	NodeID   string   `json:"node_id"`
	Type     NodeType `json:"type"`
	Label    string   `json:"label"`
	Platform string   `json:"platform,omitempty"`
	Depth    int      `json:"depth"`
}

// ExecutionPlan orders nodes so every node follows all of its inputs.
// Among nodes that are ready together, the one added to the graph first
// comes first.
func (g Graph) ExecutionPlan() ([]Step, error) {
	if err := issuesError(g.CheckStructure()); err != nil {
		return nil, err
	}
	order, cyclic := g.topologicalOrder()
	if len(cyclic) > 0 {
		return nil, issuesError([]Issue{{Code: IssueCycle, Message: "workflow contains a cycle"}})
	}
	depth := g.depths(order)

	steps := make([]Step, 0, len(order))
	for i, ni := range order {
		n := g.Nodes[ni]
		steps = append(steps, Step{
			Order:    i + 1,
			NodeID:   n.ID,
			Type:     n.Type,
			Label:    n.Label,
			Platform: n.Platform,
			Depth:    depth[ni],
		})
	}
	return steps, nil
}

// AutoLayout places nodes in columns by depth and rows by order within the
// column. Nodes with no connections that are not triggers, and nodes stuck
// in a cycle, go into one column after the deepest.
func (g Graph) AutoLayout() Graph {
	out := g.clone()
	if issuesError(g.CheckStructure()) != nil {
		return out
	}

	order, cyclic := g.topologicalOrder()
	depth := g.depths(order)

	connected := map[string]bool{}
	for _, e := range g.Edges {
		connected[e.Source] = true
		connected[e.Target] = true
	}

	maxDepth := 0
	for _, ni := range order {
		if connected[g.Nodes[ni].ID] || g.Nodes[ni].Type == NodeTrigger {
			maxDepth = max(maxDepth, depth[ni])
		}
	}

	column := make(map[int]int, len(g.Nodes))
	for _, ni := range order {
		n := g.Nodes[ni]
		if !connected[n.ID] && n.Type != NodeTrigger {
			column[ni] = maxDepth + 1
		} else {
			column[ni] = depth[ni]
		}
	}
	idx := g.nodeIndex()
	for _, id := range cyclic {
		column[idx[id]] = maxDepth + 1
	}

	rows := map[int]int{}
	place := func(ni int) {
		c := column[ni]
		out.Nodes[ni].Position = Position{
			X: float64(c * LayoutColumnWidth),
			Y: float64(rows[c] * LayoutRowHeight),
		}
		rows[c]++
	}
	for _, ni := range order {
		place(ni)
	}
	for _, id := range cyclic {
		place(idx[id])
	}
	return out
}

// topologicalOrder runs Kahn's algorithm over node indexes. Nodes left over
// (in or behind a cycle) are returned by id in insertion order.
func (g Graph) topologicalOrder() (order []int, cyclic []string) {
	idx := g.nodeIndex()
	indeg := make([]int, len(g.Nodes))
	out := make([][]int, len(g.Nodes))
	for _, e := range g.Edges {
		s, okS := idx[e.Source]
		t, okT := idx[e.Target]
		if !okS || !okT {
			continue
		}
		out[s] = append(out[s], t)
		indeg[t]++
	}

	ready := make([]bool, len(g.Nodes))
	done := make([]bool, len(g.Nodes))
	for i := range g.Nodes {
		ready[i] = indeg[i] == 0
	}

	for {
		next := -1
		for i := range g.Nodes {
			if ready[i] && !done[i] {
				next = i
				break
			}
		}
		if next < 0 {
			break
		}
		done[next] = true
		order = append(order, next)
		for _, t := range out[next] {
			indeg[t]--
			if indeg[t] == 0 {
				ready[t] = true
			}
		}
	}

	for i, n := range g.Nodes {
		if !done[i] {
			cyclic = append(cyclic, n.ID)
		}
	}
	return order, cyclic
}

// depths computes the longest path from any root, following order.
func (g Graph) depths(order []int) map[int]int {
	idx := g.nodeIndex()
	depth := make(map[int]int, len(order))
	for _, ni := range order {
		depth[ni] = 0
	}
	out := make(map[int][]int)
	for _, e := range g.Edges {
		out[idx[e.Source]] = append(out[idx[e.Source]], idx[e.Target])
	}
	for _, ni := range order {
		for _, t := range out[ni] {
			if _, ok := depth[t]; ok && depth[ni]+1 > depth[t] {
				depth[t] = depth[ni] + 1
			}
		}
	}
	return depth
}

func (g Graph) reachableFromTriggers() map[string]bool {
	adj := map[string][]string{}
	for _, e := range g.Edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}
	reached := map[string]bool{}
	var queue []string
	for _, n := range g.Nodes {
		if n.Type == NodeTrigger {
			reached[n.ID] = true
			queue = append(queue, n.ID)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if !reached[next] {
				reached[next] = true
				queue = append(queue, next)
			}
		}
	}
	return reached
}
