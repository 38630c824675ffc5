// Package workspace implements the workspace service: CRUD, the flow-diagram
// assignment engine orchestration, and the read-side report resolution.
package workspace

import (
	"context"
	"fmt"

	"github.com/nordvik/vizdeck/internal/apperr"
	"github.com/nordvik/vizdeck/internal/diagram"
	"github.com/nordvik/vizdeck/internal/store"
)

// NotifyFunc receives change events for broadcast to connected clients.
type NotifyFunc func(event, workspaceID string)

// Service coordinates workspace persistence with the diagram engine.
type Service struct {
	db     *store.DB
	locks  *keyedMutex
	notify NotifyFunc
}

// NewService creates a workspace service. notify may be nil.
func NewService(db *store.DB, notify NotifyFunc) *Service {
	if notify == nil {
		notify = func(string, string) {}
	}
	return &Service{db: db, locks: newKeyedMutex(), notify: notify}
}

// Notify publishes a change event through the service's notify hook.
func (s *Service) Notify(event, workspaceID string) {
	s.notify(event, workspaceID)
}

// Create seeds a new workspace with the default pipeline diagram.
func (s *Service) Create(ctx context.Context, userID, name, description, photo string) (*store.Workspace, error) {
	if name == "" || description == "" || photo == "" {
		return nil, fmt.Errorf("%w: name, description and photo are required", apperr.ErrInvalidArgument)
	}
	w := &store.Workspace{
		UserID:      userID,
		Name:        name,
		Description: description,
		Photo:       photo,
		FlowDiagram: diagram.DefaultDiagram(),
	}
	if err := s.db.CreateWorkspace(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// UpdateInput carries the optional fields of a workspace update. Nil fields
// are left untouched; a non-nil FlowDiagram replaces the whole diagram.
type UpdateInput struct {
	Name        *string
	Description *string
	Photo       *string
	FlowDiagram *diagram.FlowDiagram
}

// Update applies partial changes to a workspace owned by actorID.
func (s *Service) Update(ctx context.Context, actorID, workspaceID string, in UpdateInput) (*store.Workspace, error) {
	unlock := s.locks.Lock(workspaceID)
	defer unlock()

	w, err := s.db.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if w.UserID != actorID {
		return nil, fmt.Errorf("workspace %q: %w", workspaceID, apperr.ErrForbidden)
	}
	if in.Name != nil && *in.Name != "" {
		w.Name = *in.Name
	}
	if in.Description != nil && *in.Description != "" {
		w.Description = *in.Description
	}
	if in.Photo != nil && *in.Photo != "" {
		w.Photo = *in.Photo
	}
	if in.FlowDiagram != nil {
		if err := in.FlowDiagram.Validate(); err != nil {
			return nil, err
		}
		w.FlowDiagram = in.FlowDiagram
	}
	if err := s.db.UpdateWorkspace(ctx, w); err != nil {
		return nil, err
	}
	if in.FlowDiagram != nil {
		s.notify("diagram.updated", w.ID)
	} else {
		s.notify("workspace.updated", w.ID)
	}
	return w, nil
}

// Delete removes a workspace owned by actorID.
func (s *Service) Delete(ctx context.Context, actorID, workspaceID string) error {
	w, err := s.db.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return err
	}
	if w.UserID != actorID {
		return fmt.Errorf("workspace %q: %w", workspaceID, apperr.ErrForbidden)
	}
	if err := s.db.DeleteWorkspace(ctx, workspaceID); err != nil {
		return err
	}
	s.notify("workspace.deleted", workspaceID)
	return nil
}

// List returns all workspaces, or only userID's when non-empty.
func (s *Service) List(ctx context.Context, userID string) ([]store.Workspace, error) {
	return s.db.ListWorkspaces(ctx, userID)
}

// Get returns a workspace with every node's assigned item ids resolved to
// full report records.
func (s *Service) Get(ctx context.Context, workspaceID string) (*ResolvedWorkspace, error) {
	w, err := s.db.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	resolved, err := Resolve(ctx, w.FlowDiagram, s.db.FindReportsByIDs)
	if err != nil {
		return nil, err
	}
	return &ResolvedWorkspace{
		ID:          w.ID,
		UserID:      w.UserID,
		Name:        w.Name,
		Description: w.Description,
		Photo:       w.Photo,
		FlowDiagram: resolved,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}, nil
}

// NodeSummary describes the assignment target after an assign call.
type NodeSummary struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	AssignedItems []string `json:"assignedItems"`
}

// AssignOutput reports what an assignment changed.
type AssignOutput struct {
	TargetNode         NodeSummary        `json:"targetNode"`
	MovedItems         []diagram.Eviction `json:"movedItems"`
	TotalAssignedItems int                `json:"totalAssignedItems"`
}

// AssignItems assigns items to a node, evicting them from every other node,
// and synchronizes the reports' node back-references. items must be non-nil;
// an empty slice is a valid no-op request.
//
// The diagram write commits before the report updates. If a report update
// fails afterwards the two stores disagree until the next corrective
// assignment; the error is surfaced so operators know reconciliation is due.
func (s *Service) AssignItems(ctx context.Context, actorID, workspaceID, nodeID string, items []diagram.ItemID) (*AssignOutput, error) {
	if items == nil {
		return nil, fmt.Errorf("%w: assignedItems must be an array", apperr.ErrInvalidArgument)
	}

	unlock := s.locks.Lock(workspaceID)
	defer unlock()

	w, err := s.db.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if w.UserID != actorID {
		return nil, fmt.Errorf("workspace %q: %w", workspaceID, apperr.ErrForbidden)
	}

	res, err := w.FlowDiagram.AssignItems(nodeID, items)
	if err != nil {
		return nil, err
	}

	if err := s.db.UpdateWorkspace(ctx, w); err != nil {
		return nil, err
	}
	if err := s.db.SetReportNodeID(ctx, res.Assigned, &nodeID); err != nil {
		return nil, err
	}
	if err := s.db.SetReportNodeID(ctx, res.Cleared, nil); err != nil {
		return nil, err
	}

	s.notify("reports.assigned", workspaceID)

	moved := res.Evictions
	if moved == nil {
		moved = []diagram.Eviction{}
	}
	return &AssignOutput{
		TargetNode: NodeSummary{
			ID:            res.Target.ID,
			Title:         res.Target.Data.Title,
			AssignedItems: res.Target.Data.AssignedItems,
		},
		MovedItems:         moved,
		TotalAssignedItems: len(res.Target.Data.AssignedItems),
	}, nil
}

// DeleteNodeOutput reports a node removal.
type DeleteNodeOutput struct {
	Workspace     *store.Workspace `json:"workspace"`
	RemovedNodeID string           `json:"removedNodeId"`
	ClearedItems  []string         `json:"clearedItems"`
}

// DeleteNode removes a node from the workspace's diagram, drops its incident
// edges, and marks the node's reports unassigned.
func (s *Service) DeleteNode(ctx context.Context, actorID, workspaceID, nodeID string) (*DeleteNodeOutput, error) {
	unlock := s.locks.Lock(workspaceID)
	defer unlock()

	w, err := s.db.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if w.UserID != actorID {
		return nil, fmt.Errorf("workspace %q: %w", workspaceID, apperr.ErrForbidden)
	}

	res, err := w.FlowDiagram.DeleteNode(nodeID)
	if err != nil {
		return nil, err
	}

	if err := s.db.UpdateWorkspace(ctx, w); err != nil {
		return nil, err
	}
	if err := s.db.SetReportNodeID(ctx, res.ClearedItems, nil); err != nil {
		return nil, err
	}

	s.notify("node.deleted", workspaceID)

	cleared := res.ClearedItems
	if cleared == nil {
		cleared = []string{}
	}
	return &DeleteNodeOutput{
		Workspace:     w,
		RemovedNodeID: res.RemovedNodeID,
		ClearedItems:  cleared,
	}, nil
}
