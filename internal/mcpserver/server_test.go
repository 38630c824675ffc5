package mcpserver

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nordvik/vizdeck/internal/store"
	"github.com/nordvik/vizdeck/internal/workspace"
)

func testServer(t *testing.T) (*Server, *store.DB, *store.Workspace) {
	t.Helper()

	dbFile, err := os.CreateTemp("", "vizdeck-mcp-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	u := &store.User{Name: "Alice", Email: "alice@example.com"}
	if err := db.CreateUser(ctx, u); err != nil {
		t.Fatal(err)
	}

	svc := workspace.NewService(db, nil)
	w, err := svc.Create(ctx, u.ID, "Sales", "Quarterly sales pipeline", "/uploads/sales.png")
	if err != nil {
		t.Fatal(err)
	}

	srv := New(svc, db, u.ID)
	return srv, db, w
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_workspaces":
		result, err = srv.listWorkspaces(ctx, req)
	case "get_workspace":
		result, err = srv.getWorkspace(ctx, req)
	case "assign_reports":
		result, err = srv.assignReports(ctx, req)
	case "list_reports":
		result, err = srv.listReports(ctx, req)
	case "search_reports":
		result, err = srv.searchReports(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func seedReport(t *testing.T, db *store.DB, w *store.Workspace, name string) *store.Report {
	t.Helper()
	r := &store.Report{Name: name, UserID: w.UserID, WorkspaceID: w.ID}
	if err := db.CreateReport(context.Background(), r); err != nil {
		t.Fatal(err)
	}
	return r
}

func TestListWorkspaces(t *testing.T) {
	srv, _, w := testServer(t)

	r := callTool(t, srv, "list_workspaces", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, w.ID) {
		t.Errorf("list missing workspace id: %q", text)
	}
}

func TestGetWorkspaceResolvesReports(t *testing.T) {
	srv, db, w := testServer(t)
	rep := seedReport(t, db, w, "Revenue by region")

	callTool(t, srv, "assign_reports", map[string]interface{}{
		"workspace_id": w.ID,
		"node_id":      "1",
		"report_ids":   rep.ID,
	})

	r := callTool(t, srv, "get_workspace", map[string]interface{}{"workspace_id": w.ID})
	text := resultText(r)
	if !strings.Contains(text, "Revenue by region") {
		t.Errorf("resolved workspace missing assigned report: %q", text)
	}
}

func TestAssignReportsMovesBetweenNodes(t *testing.T) {
	srv, db, w := testServer(t)
	rep := seedReport(t, db, w, "Churn funnel")

	callTool(t, srv, "assign_reports", map[string]interface{}{
		"workspace_id": w.ID,
		"node_id":      "1",
		"report_ids":   rep.ID,
	})
	r := callTool(t, srv, "assign_reports", map[string]interface{}{
		"workspace_id": w.ID,
		"node_id":      "2",
		"report_ids":   rep.ID,
	})
	if r.IsError {
		t.Fatalf("assign error: %q", resultText(r))
	}
	if !strings.Contains(resultText(r), `"movedItems"`) {
		t.Errorf("assign output missing movedItems: %q", resultText(r))
	}

	got, err := db.GetReport(context.Background(), rep.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.NodeID == nil || *got.NodeID != "2" {
		t.Errorf("report node = %v, want 2", got.NodeID)
	}
}

func TestAssignReportsMissingNode(t *testing.T) {
	srv, _, w := testServer(t)
	r := callTool(t, srv, "assign_reports", map[string]interface{}{
		"workspace_id": w.ID,
		"node_id":      "nope",
		"report_ids":   "r1",
	})
	if !r.IsError {
		t.Error("expected error for missing node")
	}
}

func TestSearchReports(t *testing.T) {
	srv, db, w := testServer(t)
	seedReport(t, db, w, "Monthly revenue")
	seedReport(t, db, w, "Headcount")

	r := callTool(t, srv, "search_reports", map[string]interface{}{"query": "revenue"})
	text := resultText(r)
	if !strings.Contains(text, "Monthly revenue") || strings.Contains(text, "Headcount") {
		t.Errorf("search = %q", text)
	}

	r = callTool(t, srv, "search_reports", map[string]interface{}{"query": "zzz"})
	if resultText(r) != "no reports found" {
		t.Errorf("empty search = %q", resultText(r))
	}
}
