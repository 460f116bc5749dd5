package graph

import "fmt"

// Edge types.
const (
	EdgeFinds    = "FINDS"
	EdgeTriggers = "TRIGGERS"
	EdgeExecutes = "EXECUTES"
)

// EdgeTypes lists every edge type in load order.
var EdgeTypes = []string{EdgeFinds, EdgeTriggers, EdgeExecutes}

// Endpoints is the pair of labels an edge type connects.
type Endpoints struct {
	From string
	To   string
}

var endpoints = map[string]Endpoints{
	EdgeFinds:    {From: LabelTestCase, To: LabelFailure},
	EdgeTriggers: {From: LabelFunction, To: LabelFailure},
	EdgeExecutes: {From: LabelTestCase, To: LabelFunction},
}

// EndpointsOf returns the labels connected by edgeType.
func EndpointsOf(edgeType string) (Endpoints, bool) {
	e, ok := endpoints[edgeType]
	return e, ok
}

// Edge is a directed, typed connection between two nodes.
type Edge struct {
	// Type is one of EdgeFinds, EdgeTriggers or EdgeExecutes.
	Type string `json:"type"`

	// FromID and ToID are node ids; their labels follow from Type.
	FromID string `json:"from_id"`
	ToID   string `json:"to_id"`

	// Properties contains optional edge metadata.
	Properties map[string]any `json:"properties,omitempty"`
}

// NewEdge creates an Edge with the specified source, target, and type.
func NewEdge(fromID, toID, edgeType string) *Edge {
	return &Edge{
		Type:       edgeType,
		FromID:     fromID,
		ToID:       toID,
		Properties: make(map[string]any),
	}
}

// WithProperty adds a single property to the edge and returns the edge for chaining.
func (e *Edge) WithProperty(key string, value any) *Edge {
	if e.Properties == nil {
		e.Properties = make(map[string]any)
	}
	e.Properties[key] = value
	return e
}

// Validate checks that the edge has all required fields populated.
func (e *Edge) Validate() error {
	if e.FromID == "" {
		return fmt.Errorf("edge FromID cannot be empty")
	}
	if e.ToID == "" {
		return fmt.Errorf("edge ToID cannot be empty")
	}
	if _, ok := endpoints[e.Type]; !ok {
		return fmt.Errorf("edge %s->%s: unknown type %q", e.FromID, e.ToID, e.Type)
	}
	return nil
}
