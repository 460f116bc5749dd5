package graph

import (
	"fmt"

	"github.com/zero-day-ai/kleegraph/linker"
)

// Dataset is the complete node and edge set of one linked run.
type Dataset struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// NewDataset materializes res. Nodes are ordered by label then by the
// linker's order; edges by type then by the linker's order.
func NewDataset(res *linker.Result) *Dataset {
	ds := &Dataset{
		Nodes: make([]Node, 0, len(res.TestCases)+len(res.Failures)+len(res.Functions)),
		Edges: make([]Edge, 0, len(res.Finds)+len(res.Triggers)+len(res.Executes)),
	}

	for _, tc := range res.TestCases {
		ds.Nodes = append(ds.Nodes, *NewNode(LabelTestCase, tc.ID).
			WithProperty(PropID, tc.ID).
			WithProperty(PropStatus, tc.Status.String()).
			WithProperty(PropErrorType, tc.ErrorKind).
			WithProperty(PropErrorSubtype, tc.ErrorSubkind))
	}
	for _, rec := range res.Failures {
		ds.Nodes = append(ds.Nodes, *NewNode(LabelFailure, rec.SourceLocation).
			WithProperty(PropID, rec.SourceLocation).
			WithProperty(PropKind, rec.ErrorKind.String()).
			WithProperty(PropSubkind, rec.ErrorSubkind).
			WithProperty(PropTestCaseID, rec.TestCaseID).
			WithProperty(PropMessage, rec.Message))
	}
	for _, fn := range res.Functions {
		ds.Nodes = append(ds.Nodes, *NewNode(LabelFunction, fn.Name).
			WithProperty(PropName, fn.Name).
			WithProperty(PropRole, fn.Role.String()).
			WithProperty(PropFrames, int64(fn.Frames)))
	}

	for _, f := range res.Finds {
		ds.Edges = append(ds.Edges, *NewEdge(f.TestCaseID, f.FailureID, EdgeFinds))
	}
	for _, t := range res.Triggers {
		ds.Edges = append(ds.Edges, *NewEdge(t.Function, t.FailureID, EdgeTriggers).
			WithProperty(PropOrdinal, int64(t.Ordinal)))
	}
	for _, x := range res.Executes {
		ds.Edges = append(ds.Edges, *NewEdge(x.TestCaseID, x.Function, EdgeExecutes))
	}
	return ds
}

// Validate checks every node and edge and that each edge endpoint exists.
func (d *Dataset) Validate() error {
	ids := make(map[string]map[string]bool, len(Labels))
	for _, l := range Labels {
		ids[l] = make(map[string]bool)
	}
	for i := range d.Nodes {
		n := &d.Nodes[i]
		if err := n.Validate(); err != nil {
			return err
		}
		ids[n.Label][n.ID] = true
	}
	for i := range d.Edges {
		e := &d.Edges[i]
		if err := e.Validate(); err != nil {
			return err
		}
		ep := endpoints[e.Type]
		if !ids[ep.From][e.FromID] {
			return fmt.Errorf("%s edge: %s %q not found", e.Type, ep.From, e.FromID)
		}
		if !ids[ep.To][e.ToID] {
			return fmt.Errorf("%s edge: %s %q not found", e.Type, ep.To, e.ToID)
		}
	}
	return nil
}

// NodesByLabel returns the nodes with label, in dataset order.
func (d *Dataset) NodesByLabel(label string) []Node {
	var out []Node
	for _, n := range d.Nodes {
		if n.Label == label {
			out = append(out, n)
		}
	}
	return out
}

// EdgesByType returns the edges of edgeType, in dataset order.
func (d *Dataset) EdgesByType(edgeType string) []Edge {
	var out []Edge
	for _, e := range d.Edges {
		if e.Type == edgeType {
			out = append(out, e)
		}
	}
	return out
}
