// Package diagram implements the workspace flow diagram: a directed graph of
// pipeline stages whose nodes own disjoint sets of assigned report ids.
package diagram

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/nordvik/vizdeck/internal/apperr"
)

// FlowDiagram is the pipeline graph embedded in a workspace document.
// Node order is the layout order and is preserved across mutations.
type FlowDiagram struct {
	Nodes       []Node    `json:"nodes"`
	Edges       []Edge    `json:"edges"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Node is a single pipeline stage. Everything except ID and
// Data.AssignedItems is display metadata the engine never touches.
type Node struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Data     NodeData       `json:"data"`
	Position Position       `json:"position"`
	Style    map[string]any `json:"style,omitempty"`
}

// NodeData carries the node's visual attributes and its assigned item ids.
// AssignedItems is serialized as an array but holds set semantics: an id
// appears at most once per node, and at most once across the whole diagram.
type NodeData struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Color         string   `json:"color"`
	Icon          string   `json:"icon"`
	AssignedItems []string `json:"assignedItems"`
}

// Position locates a node on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge is a directed connector between two nodes, for display only.
type Edge struct {
	ID       string         `json:"id"`
	Source   string         `json:"source"`
	Target   string         `json:"target"`
	Type     string         `json:"type,omitempty"`
	Animated bool           `json:"animated,omitempty"`
	Style    map[string]any `json:"style,omitempty"`
}

// FindNode returns the node with the given id, or nil.
func (d *FlowDiagram) FindNode(id string) *Node {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i]
		}
	}
	return nil
}

// Validate checks a client-supplied diagram before a whole-document replace.
// Node ids must be non-empty and unique; every edge needs an id and both
// endpoints. Returned errors wrap apperr.ErrInvalidArgument.
func (d *FlowDiagram) Validate() error {
	if d.Nodes == nil {
		return fmt.Errorf("%w: nodes must be an array", apperr.ErrInvalidArgument)
	}
	if d.Edges == nil {
		return fmt.Errorf("%w: edges must be an array", apperr.ErrInvalidArgument)
	}
	seen := make(map[string]struct{}, len(d.Nodes))
	for i := range d.Nodes {
		n := &d.Nodes[i]
		if err := n.validate(); err != nil {
			return fmt.Errorf("%w: node %d: %v", apperr.ErrInvalidArgument, i, err)
		}
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("%w: duplicate node id %q", apperr.ErrInvalidArgument, n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	for i := range d.Edges {
		if err := d.Edges[i].validate(); err != nil {
			return fmt.Errorf("%w: edge %d: %v", apperr.ErrInvalidArgument, i, err)
		}
	}
	return nil
}

func (n *Node) validate() error {
	return validation.ValidateStruct(n,
		validation.Field(&n.ID, validation.Required),
		validation.Field(&n.Type, validation.Required),
	)
}

func (e *Edge) validate() error {
	return validation.ValidateStruct(e,
		validation.Field(&e.ID, validation.Required),
		validation.Field(&e.Source, validation.Required),
		validation.Field(&e.Target, validation.Required),
	)
}
