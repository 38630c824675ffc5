package workspace

import (
	"context"
	"time"

	"github.com/nordvik/vizdeck/internal/diagram"
	"github.com/nordvik/vizdeck/internal/store"
)

// ResolvedWorkspace is the read-side view of a workspace with each diagram
// node's assigned item ids expanded to full report records.
type ResolvedWorkspace struct {
	ID          string           `json:"id"`
	UserID      string           `json:"userId"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Photo       string           `json:"photo,omitempty"`
	FlowDiagram *ResolvedDiagram `json:"flowDiagram"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// ResolvedDiagram mirrors diagram.FlowDiagram with enriched node data.
type ResolvedDiagram struct {
	Nodes       []ResolvedNode `json:"nodes"`
	Edges       []diagram.Edge `json:"edges"`
	LastUpdated time.Time      `json:"lastUpdated"`
}

// ResolvedNode is a diagram node whose data additionally carries the full
// report records it owns.
type ResolvedNode struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Data     ResolvedNodeData `json:"data"`
	Position diagram.Position `json:"position"`
	Style    map[string]any   `json:"style,omitempty"`
}

// ResolvedNodeData embeds the node's stored data and adds assignedReports.
type ResolvedNodeData struct {
	diagram.NodeData
	AssignedReports []store.Report `json:"assignedReports"`
}

// FetchFunc loads the report records for a set of ids. Ids without a
// matching record are simply absent from the result.
type FetchFunc func(ctx context.Context, ids []string) ([]store.Report, error)

// Resolve produces the annotated view of a diagram. The diagram remains the
// source of truth for ownership: an assigned id whose report no longer
// exists is omitted from the resolved list rather than treated as an error.
func Resolve(ctx context.Context, d *diagram.FlowDiagram, fetch FetchFunc) (*ResolvedDiagram, error) {
	var all []string
	seen := make(map[string]struct{})
	for i := range d.Nodes {
		for _, id := range d.Nodes[i].Data.AssignedItems {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			all = append(all, id)
		}
	}

	byID := make(map[string]store.Report, len(all))
	if len(all) > 0 {
		reports, err := fetch(ctx, all)
		if err != nil {
			return nil, err
		}
		for _, r := range reports {
			byID[r.ID] = r
		}
	}

	out := &ResolvedDiagram{
		Nodes:       make([]ResolvedNode, len(d.Nodes)),
		Edges:       d.Edges,
		LastUpdated: d.LastUpdated,
	}
	for i := range d.Nodes {
		n := &d.Nodes[i]
		resolved := make([]store.Report, 0, len(n.Data.AssignedItems))
		for _, id := range n.Data.AssignedItems {
			if r, ok := byID[id]; ok {
				resolved = append(resolved, r)
			}
		}
		data := n.Data
		if data.AssignedItems == nil {
			data.AssignedItems = []string{}
		}
		out.Nodes[i] = ResolvedNode{
			ID:       n.ID,
			Type:     n.Type,
			Data:     ResolvedNodeData{NodeData: data, AssignedReports: resolved},
			Position: n.Position,
			Style:    n.Style,
		}
	}
	return out, nil
}
