package diagram

import (
	"errors"
	"testing"

	"github.com/nordvik/vizdeck/internal/apperr"
)

func TestValidate_OK(t *testing.T) {
	d := testDiagram()
	if err := d.Validate(); err != nil {
		t.Fatalf("valid diagram rejected: %v", err)
	}
}

func TestValidate_NilNodesOrEdges(t *testing.T) {
	d := &FlowDiagram{Edges: []Edge{}}
	if err := d.Validate(); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("nil nodes: err = %v", err)
	}
	d = &FlowDiagram{Nodes: []Node{}}
	if err := d.Validate(); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("nil edges: err = %v", err)
	}
	d = &FlowDiagram{Nodes: []Node{}, Edges: []Edge{}}
	if err := d.Validate(); err != nil {
		t.Errorf("empty diagram rejected: %v", err)
	}
}

func TestValidate_DuplicateNodeID(t *testing.T) {
	d := testDiagram()
	d.Nodes = append(d.Nodes, Node{ID: "a", Type: "customNode"})
	err := d.Validate()
	if !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestValidate_MissingFields(t *testing.T) {
	d := testDiagram()
	d.Nodes[0].ID = ""
	if err := d.Validate(); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("empty node id: err = %v", err)
	}

	d = testDiagram()
	d.Edges[0].Target = ""
	if err := d.Validate(); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("edge without target: err = %v", err)
	}
}

func TestFindNode(t *testing.T) {
	d := testDiagram()
	if n := d.FindNode("b"); n == nil || n.Data.Title != "Analyze" {
		t.Errorf("FindNode(b) = %v", n)
	}
	if n := d.FindNode("zz"); n != nil {
		t.Errorf("FindNode(zz) = %v, want nil", n)
	}
}

func TestDefaultDiagram_Shape(t *testing.T) {
	d := DefaultDiagram()
	if len(d.Nodes) != 9 {
		t.Errorf("nodes = %d, want 9", len(d.Nodes))
	}
	if len(d.Edges) != 10 {
		t.Errorf("edges = %d, want 10", len(d.Edges))
	}
	if err := d.Validate(); err != nil {
		t.Errorf("default diagram invalid: %v", err)
	}
	for _, n := range d.Nodes {
		if n.Data.AssignedItems == nil || len(n.Data.AssignedItems) != 0 {
			t.Errorf("node %s starts with items %v", n.ID, n.Data.AssignedItems)
		}
	}
	for _, e := range d.Edges {
		if d.FindNode(e.Source) == nil || d.FindNode(e.Target) == nil {
			t.Errorf("edge %s references missing node", e.ID)
		}
	}
}

func TestDefaultDiagram_FreshCopies(t *testing.T) {
	a := DefaultDiagram()
	b := DefaultDiagram()
	a.Nodes[0].Data.AssignedItems = append(a.Nodes[0].Data.AssignedItems, "r1")
	if len(b.Nodes[0].Data.AssignedItems) != 0 {
		t.Error("diagrams share assigned-items storage")
	}
}
