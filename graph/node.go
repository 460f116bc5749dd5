package graph

import (
	"errors"
	"fmt"
)

// Node labels.
const (
	LabelTestCase = "TestCase"
	LabelFailure  = "Failure"
	LabelFunction = "Function"
)

// Labels lists every node label in load order.
var Labels = []string{LabelTestCase, LabelFailure, LabelFunction}

// Property keys shared by both backends.
const (
	PropID           = "id"
	PropName         = "name"
	PropStatus       = "status"
	PropErrorType    = "error_type"
	PropErrorSubtype = "error_subtype"
	PropKind         = "kind"
	PropSubkind      = "subkind"
	PropTestCaseID   = "test_case_id"
	PropMessage      = "message"
	PropRole         = "role"
	PropFrames       = "frames"
	PropOrdinal      = "ordinal"
)

// Node is one vertex of the graph. ID is unique per label.
type Node struct {
	// ID is the identity key: the test case id, the failure artifact name,
	// or the function name.
	ID string `json:"id"`

	// Label is one of LabelTestCase, LabelFailure or LabelFunction.
	Label string `json:"label"`

	// Properties holds scalar values only (string, int64, bool).
	Properties map[string]any `json:"properties,omitempty"`
}

// NewNode creates a Node with an empty property map.
func NewNode(label, id string) *Node {
	return &Node{
		ID:         id,
		Label:      label,
		Properties: make(map[string]any),
	}
}

// WithProperty sets a single property and returns the node for method chaining.
func (n *Node) WithProperty(key string, value any) *Node {
	if n.Properties == nil {
		n.Properties = make(map[string]any)
	}
	n.Properties[key] = value
	return n
}

// String returns the property stored under key, or "" when absent.
func (n *Node) String(key string) string {
	s, _ := n.Properties[key].(string)
	return s
}

// Validate checks the label and id.
func (n *Node) Validate() error {
	if n.ID == "" {
		return errors.New("node id is required")
	}
	if !isLabel(n.Label) {
		return fmt.Errorf("node %q: unknown label %q", n.ID, n.Label)
	}
	return nil
}

func isLabel(label string) bool {
	for _, l := range Labels {
		if l == label {
			return true
		}
	}
	return false
}

// KeyProperty returns the property holding the identity of nodes with label.
// Functions are keyed by name, everything else by id.
func KeyProperty(label string) string {
	if label == LabelFunction {
		return PropName
	}
	return PropID
}
