package api

import (
	"net/http"

	"github.com/NavDevs/AI-InternShip/internal/auth"
	"github.com/NavDevs/AI-InternShip/internal/tracker"
)

// Routes groups the handlers served behind authentication.
type Routes struct {
	Tracker *tracker.Handler
	AI      *AIHandler // optional
}

// NewRouter builds the service's root handler: /health is public, every
// other route requires a principal.
func NewRouter(routes Routes, authn *auth.Authenticator, service, version string) http.Handler {
	protected := http.NewServeMux()
	routes.Tracker.RegisterRoutes(protected)
	if routes.AI != nil {
		routes.AI.RegisterRoutes(protected)
	}

	root := http.NewServeMux()
	root.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"service": service,
			"version": version,
		})
	})
	root.Handle("/", authn.Middleware(protected))

	return Chain(root, RequestID, Logger, Recover)
}
