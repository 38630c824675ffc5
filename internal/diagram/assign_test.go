package diagram

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/nordvik/vizdeck/internal/apperr"
)

func testDiagram() *FlowDiagram {
	return &FlowDiagram{
		Nodes: []Node{
			{ID: "a", Type: "customNode", Data: NodeData{Title: "Collect"}},
			{ID: "b", Type: "customNode", Data: NodeData{Title: "Analyze"}},
			{ID: "c", Type: "customNode", Data: NodeData{Title: "Publish"}},
		},
		Edges: []Edge{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "e2", Source: "b", Target: "c"},
		},
	}
}

func items(ids ...string) []ItemID {
	out := make([]ItemID, len(ids))
	for i, id := range ids {
		out[i] = ItemID(id)
	}
	return out
}

func assigned(d *FlowDiagram, nodeID string) []string {
	return d.FindNode(nodeID).Data.AssignedItems
}

func TestAssignItems_NewAssignment(t *testing.T) {
	d := testDiagram()
	res, err := d.AssignItems("a", items("r1", "r2"))
	if err != nil {
		t.Fatal(err)
	}
	if got := assigned(d, "a"); len(got) != 2 || got[0] != "r1" || got[1] != "r2" {
		t.Errorf("node a items = %v", got)
	}
	if len(res.Evictions) != 0 {
		t.Errorf("evictions = %v, want none", res.Evictions)
	}
	if res.Target.ID != "a" {
		t.Errorf("target = %s", res.Target.ID)
	}
	if d.LastUpdated.IsZero() {
		t.Error("LastUpdated not set")
	}
}

func TestAssignItems_MovesBetweenNodes(t *testing.T) {
	d := testDiagram()
	if _, err := d.AssignItems("a", items("r1", "r2", "r3")); err != nil {
		t.Fatal(err)
	}
	res, err := d.AssignItems("b", items("r2"))
	if err != nil {
		t.Fatal(err)
	}

	if got := assigned(d, "a"); len(got) != 2 || got[0] != "r1" || got[1] != "r3" {
		t.Errorf("node a items = %v, want [r1 r3]", got)
	}
	if got := assigned(d, "b"); len(got) != 1 || got[0] != "r2" {
		t.Errorf("node b items = %v, want [r2]", got)
	}

	if len(res.Evictions) != 1 {
		t.Fatalf("evictions = %v, want one", res.Evictions)
	}
	ev := res.Evictions[0]
	if ev.FromNodeID != "a" || ev.FromNodeTitle != "Collect" {
		t.Errorf("eviction source = %s/%s", ev.FromNodeID, ev.FromNodeTitle)
	}
	if len(ev.RemovedItems) != 1 || ev.RemovedItems[0] != "r2" {
		t.Errorf("eviction items = %v", ev.RemovedItems)
	}
	// Moved items stay owned by the target, not cleared.
	if len(res.Cleared) != 0 {
		t.Errorf("cleared = %v, want none", res.Cleared)
	}
}

func TestAssignItems_IdempotentReassign(t *testing.T) {
	d := testDiagram()
	if _, err := d.AssignItems("a", items("r1", "r2")); err != nil {
		t.Fatal(err)
	}
	res, err := d.AssignItems("a", items("r1", "r2"))
	if err != nil {
		t.Fatal(err)
	}
	if got := assigned(d, "a"); len(got) != 2 {
		t.Errorf("node a items = %v, want 2 entries", got)
	}
	if len(res.Evictions) != 0 {
		t.Errorf("evictions = %v, want none", res.Evictions)
	}
}

func TestAssignItems_EmptyRequestIsNoop(t *testing.T) {
	d := testDiagram()
	if _, err := d.AssignItems("a", items("r1")); err != nil {
		t.Fatal(err)
	}
	res, err := d.AssignItems("b", []ItemID{})
	if err != nil {
		t.Fatal(err)
	}
	if got := assigned(d, "a"); len(got) != 1 {
		t.Errorf("node a items = %v, want [r1]", got)
	}
	if got := assigned(d, "b"); len(got) != 0 {
		t.Errorf("node b items = %v, want empty", got)
	}
	if len(res.Assigned) != 0 {
		t.Errorf("assigned = %v", res.Assigned)
	}
}

func TestAssignItems_MissingNode(t *testing.T) {
	d := testDiagram()
	_, err := d.AssignItems("nope", items("r1"))
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAssignItems_DeduplicatesRequest(t *testing.T) {
	d := testDiagram()
	res, err := d.AssignItems("a", items("r1", "r1", "r2", "r1"))
	if err != nil {
		t.Fatal(err)
	}
	if got := assigned(d, "a"); len(got) != 2 {
		t.Errorf("node a items = %v, want [r1 r2]", got)
	}
	if len(res.Assigned) != 2 {
		t.Errorf("assigned = %v", res.Assigned)
	}
}

func TestAssignItems_RepairsMultiOwnerItem(t *testing.T) {
	// Simulate a pre-existing exclusivity violation: r1 on two nodes.
	d := testDiagram()
	d.FindNode("a").Data.AssignedItems = []string{"r1"}
	d.FindNode("b").Data.AssignedItems = []string{"r1", "r2"}

	res, err := d.AssignItems("c", items("r1"))
	if err != nil {
		t.Fatal(err)
	}
	if got := assigned(d, "a"); len(got) != 0 {
		t.Errorf("node a items = %v, want empty", got)
	}
	if got := assigned(d, "b"); len(got) != 1 || got[0] != "r2" {
		t.Errorf("node b items = %v, want [r2]", got)
	}
	if got := assigned(d, "c"); len(got) != 1 || got[0] != "r1" {
		t.Errorf("node c items = %v, want [r1]", got)
	}
	if len(res.Evictions) != 2 {
		t.Errorf("evictions = %v, want entries for both former owners", res.Evictions)
	}
}

func TestAssignItems_ExclusivityInvariant(t *testing.T) {
	d := testDiagram()
	if _, err := d.AssignItems("a", items("r1", "r2")); err != nil {
		t.Fatal(err)
	}
	if _, err := d.AssignItems("b", items("r2", "r3")); err != nil {
		t.Fatal(err)
	}
	if _, err := d.AssignItems("c", items("r3")); err != nil {
		t.Fatal(err)
	}

	owners := make(map[string]int)
	for _, n := range d.Nodes {
		for _, id := range n.Data.AssignedItems {
			owners[id]++
		}
	}
	for id, count := range owners {
		if count != 1 {
			t.Errorf("item %s owned by %d nodes", id, count)
		}
	}
}

func TestDeleteNode_CascadesEdgesAndClearsItems(t *testing.T) {
	d := testDiagram()
	if _, err := d.AssignItems("b", items("r1", "r2")); err != nil {
		t.Fatal(err)
	}

	res, err := d.DeleteNode("b")
	if err != nil {
		t.Fatal(err)
	}
	if res.RemovedNodeID != "b" {
		t.Errorf("removed = %s", res.RemovedNodeID)
	}
	if len(res.ClearedItems) != 2 {
		t.Errorf("cleared = %v, want [r1 r2]", res.ClearedItems)
	}
	if res.RemovedEdges != 2 {
		t.Errorf("removed edges = %d, want 2", res.RemovedEdges)
	}
	if d.FindNode("b") != nil {
		t.Error("node b still present")
	}
	if len(d.Nodes) != 2 || len(d.Edges) != 0 {
		t.Errorf("nodes=%d edges=%d after delete", len(d.Nodes), len(d.Edges))
	}
}

func TestDeleteNode_KeepsUnrelatedEdges(t *testing.T) {
	d := testDiagram()
	res, err := d.DeleteNode("c")
	if err != nil {
		t.Fatal(err)
	}
	if res.RemovedEdges != 1 {
		t.Errorf("removed edges = %d, want 1", res.RemovedEdges)
	}
	if len(d.Edges) != 1 || d.Edges[0].ID != "e1" {
		t.Errorf("edges = %v, want [e1]", d.Edges)
	}
}

func TestDeleteNode_Missing(t *testing.T) {
	d := testDiagram()
	_, err := d.DeleteNode("nope")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestItemID_UnmarshalStringOrNumber(t *testing.T) {
	var got []ItemID
	if err := json.Unmarshal([]byte(`["abc", 42, "7"]`), &got); err != nil {
		t.Fatal(err)
	}
	want := []ItemID{"abc", "42", "7"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("id[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if err := json.Unmarshal([]byte(`[true]`), &got); err == nil {
		t.Error("expected error for boolean id")
	}
}

func TestItemID_NumberAndStringCollapse(t *testing.T) {
	// "42" sent as number and as string is the same item.
	d := testDiagram()
	if _, err := d.AssignItems("a", items("42")); err != nil {
		t.Fatal(err)
	}
	var req []ItemID
	if err := json.Unmarshal([]byte(`[42]`), &req); err != nil {
		t.Fatal(err)
	}
	res, err := d.AssignItems("b", req)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Evictions) != 1 || res.Evictions[0].FromNodeID != "a" {
		t.Errorf("evictions = %v, want move from a", res.Evictions)
	}
}

func TestNormalizeIDs(t *testing.T) {
	got := NormalizeIDs(items("b", "a", "b", "c", "a"))
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}
