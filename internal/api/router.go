package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nordvik/vizdeck/internal/store"
	"github.com/nordvik/vizdeck/internal/workspace"
)

// NewRouter creates a chi router with all API routes mounted.
// authMode selects the AuthMiddleware behavior. sseHandler, if non-nil, is
// mounted at GET /events inside the auth group. uploadsDir is where photos
// and dataset files land.
func NewRouter(svc *workspace.Service, db *store.DB, authMode string, sseHandler http.Handler, uploadsDir string) chi.Router {
	uploads := NewUploadHandler(uploadsDir)
	wh := NewWorkspaceHandler(svc, uploads)
	rh := NewReportHandler(db, svc.Notify)
	fh := NewFolderHandler(db)
	uh := NewUserHandler(db)
	dh := NewDatasetHandler(db, uploads)

	r := chi.NewRouter()

	// Registration stays outside the auth group: it is where tokens come from.
	r.Post("/users", uh.Register)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authMode, db))

		r.Get("/users/{id}", uh.Get)

		// Workspaces and the flow-diagram engine.
		r.Post("/workspaces", wh.Create)
		r.Get("/workspaces", wh.List)
		r.Get("/workspaces/{id}", wh.Get)
		r.Put("/workspaces/{id}", wh.Update)
		r.Delete("/workspaces/{id}", wh.Delete)
		r.Post("/workspaces/{id}/nodes/{nodeID}/assignments", wh.AssignItems)
		r.Delete("/workspaces/{id}/nodes/{nodeID}", wh.DeleteNode)
		r.Get("/workspaces/{id}/reports", rh.ListByWorkspace)
		r.Get("/workspaces/{id}/folders", fh.ListByWorkspace)

		// Reports.
		r.Post("/reports", rh.Create)
		r.Get("/reports/{id}", rh.Get)
		r.Put("/reports/{id}", rh.Update)
		r.Delete("/reports/{id}", rh.Delete)

		// Folders.
		r.Post("/folders", fh.Create)
		r.Get("/folders", fh.List)
		r.Get("/folders/{id}", fh.Get)
		r.Put("/folders/{id}", fh.Update)
		r.Delete("/folders/{id}", fh.Delete)
		r.Get("/folders/{id}/reports", fh.ListReports)
		r.Post("/folders/{id}/reports", fh.AddReport)
		r.Delete("/folders/{id}/reports/{reportID}", fh.RemoveReport)

		// Dataset uploads.
		r.Post("/datasets", dh.Upload)
		r.Get("/datasets", dh.List)
		r.Get("/datasets/{id}", dh.Get)

		// SSE endpoint (protected by same auth middleware).
		if sseHandler != nil {
			r.Get("/events", sseHandler.ServeHTTP)
		}
	})

	return r
}
