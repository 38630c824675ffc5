package diagram

import (
	"fmt"
	"time"

	"github.com/nordvik/vizdeck/internal/apperr"
)

// Eviction records items removed from one node because they were assigned
// to another.
type Eviction struct {
	FromNodeID    string   `json:"fromNodeId"`
	FromNodeTitle string   `json:"fromNodeTitle"`
	RemovedItems  []string `json:"removedItems"`
}

// AssignResult describes the outcome of an AssignItems mutation.
type AssignResult struct {
	// Target is the node the items now live on.
	Target *Node
	// Assigned is the normalized, deduplicated request set. Every id in it
	// is owned by Target after the call.
	Assigned []string
	// Evictions lists, per source node, the ids removed from that node.
	Evictions []Eviction
	// Cleared holds evicted ids that did not end up on the target. Eviction
	// only ever removes requested ids, so this is empty unless a future
	// caller widens the eviction set; back-reference sync still honors it.
	Cleared []string
}

// AssignItems moves the given items onto the node with id nodeID, removing
// them from every other node first. An item already on the target stays put
// (no duplicate entry, no eviction record). An id owned by no node becomes
// newly assigned. If a pre-existing inconsistency left an id on several
// nodes, all foreign copies are evicted and the call repairs the partition.
//
// The mutation is purely in-memory; the caller persists the diagram and
// synchronizes the items' back-references afterwards.
func (d *FlowDiagram) AssignItems(nodeID string, items []ItemID) (*AssignResult, error) {
	target := d.FindNode(nodeID)
	if target == nil {
		return nil, fmt.Errorf("node %q: %w", nodeID, apperr.ErrNotFound)
	}

	requested := NormalizeIDs(items)
	reqSet := make(map[string]struct{}, len(requested))
	for _, id := range requested {
		reqSet[id] = struct{}{}
	}

	var evictions []Eviction
	for i := range d.Nodes {
		n := &d.Nodes[i]
		if n.ID == nodeID {
			continue
		}
		var removed []string
		kept := n.Data.AssignedItems[:0]
		for _, id := range n.Data.AssignedItems {
			if _, hit := reqSet[id]; hit {
				removed = append(removed, id)
			} else {
				kept = append(kept, id)
			}
		}
		n.Data.AssignedItems = kept
		if len(removed) > 0 {
			evictions = append(evictions, Eviction{
				FromNodeID:    n.ID,
				FromNodeTitle: n.Data.Title,
				RemovedItems:  removed,
			})
		}
	}

	// Union the request set into the target, dropping any duplicates the
	// stored array may have accumulated.
	merged := make([]string, 0, len(target.Data.AssignedItems)+len(requested))
	have := make(map[string]struct{}, len(target.Data.AssignedItems)+len(requested))
	for _, id := range target.Data.AssignedItems {
		if _, ok := have[id]; ok {
			continue
		}
		have[id] = struct{}{}
		merged = append(merged, id)
	}
	for _, id := range requested {
		if _, ok := have[id]; ok {
			continue
		}
		have[id] = struct{}{}
		merged = append(merged, id)
	}
	target.Data.AssignedItems = merged

	var cleared []string
	for _, ev := range evictions {
		for _, id := range ev.RemovedItems {
			if _, ok := reqSet[id]; !ok {
				cleared = append(cleared, id)
			}
		}
	}

	d.LastUpdated = time.Now().UTC()

	return &AssignResult{
		Target:    target,
		Assigned:  requested,
		Evictions: evictions,
		Cleared:   cleared,
	}, nil
}

// DeleteResult describes the outcome of a DeleteNode mutation.
type DeleteResult struct {
	RemovedNodeID string
	// ClearedItems are the ids the node owned; their back-references must
	// be reset to unassigned by the caller.
	ClearedItems []string
	RemovedEdges int
}

// DeleteNode removes the node with the given id together with every edge
// touching it, and reports the items that became unassigned.
func (d *FlowDiagram) DeleteNode(nodeID string) (*DeleteResult, error) {
	idx := -1
	for i := range d.Nodes {
		if d.Nodes[i].ID == nodeID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("node %q: %w", nodeID, apperr.ErrNotFound)
	}

	cleared := make([]string, 0, len(d.Nodes[idx].Data.AssignedItems))
	seen := make(map[string]struct{})
	for _, id := range d.Nodes[idx].Data.AssignedItems {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		cleared = append(cleared, id)
	}

	d.Nodes = append(d.Nodes[:idx], d.Nodes[idx+1:]...)

	kept := d.Edges[:0]
	removed := 0
	for _, e := range d.Edges {
		if e.Source == nodeID || e.Target == nodeID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	d.Edges = kept

	d.LastUpdated = time.Now().UTC()

	return &DeleteResult{
		RemovedNodeID: nodeID,
		ClearedItems:  cleared,
		RemovedEdges:  removed,
	}, nil
}
