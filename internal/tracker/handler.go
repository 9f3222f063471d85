package tracker

// HTTP handlers for the tracker service. The principal is resolved by the
// auth middleware in front of these routes.
//
// Routes:
//
//	GET    /applications?q=              → list user's applications (optionally filtered)
//	POST   /applications                 → create an application
//	GET    /applications/{id}            → fetch one application
//	DELETE /applications/{id}            → delete an application
//	POST   /applications/{id}/status     → set status
//	POST   /applications/{id}/follow-up  → set or clear the follow-up date
//	POST   /applications/{id}/note       → add/update free-text note
//	POST   /listings/apply               → record an application from a listing
//	GET    /dashboard                    → counts, recent activity, upcoming follow-ups

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/NavDevs/AI-InternShip/internal/auth"
)

// Handler exposes a Service over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts all tracker routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /applications", h.listApplications)
	mux.HandleFunc("POST /applications", h.createApplication)
	mux.HandleFunc("GET /applications/{id}", h.getApplication)
	mux.HandleFunc("DELETE /applications/{id}", h.deleteApplication)
	mux.HandleFunc("POST /applications/{id}/status", h.updateStatus)
	mux.HandleFunc("POST /applications/{id}/follow-up", h.setFollowUp)
	mux.HandleFunc("POST /applications/{id}/note", h.addNote)
	mux.HandleFunc("POST /listings/apply", h.applyToListing)
	mux.HandleFunc("GET /dashboard", h.dashboard)
}

// ─── Individual handlers ──────────────────────────────────────────────────────

func (h *Handler) listApplications(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	apps, err := h.svc.ListApplications(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonOK(w, http.StatusOK, FilterByText(apps, r.URL.Query().Get("q")))
}

func (h *Handler) createApplication(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	var body NewApplication
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	app, err := h.svc.CreateApplication(r.Context(), userID, body)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonOK(w, http.StatusCreated, app)
}

func (h *Handler) getApplication(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	app, err := h.svc.GetApplication(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	jsonOK(w, http.StatusOK, app)
}

func (h *Handler) deleteApplication(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteApplication(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Status == "" {
		jsonError(w, "body must contain status", http.StatusBadRequest)
		return
	}
	app, err := h.svc.UpdateStatus(r.Context(), userID, r.PathValue("id"), body.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonOK(w, http.StatusOK, app)
}

func (h *Handler) setFollowUp(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	var body struct {
		FollowUpDate *time.Time `json:"followUpDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "followUpDate must be an RFC 3339 timestamp or null", http.StatusBadRequest)
		return
	}
	app, err := h.svc.SetFollowUp(r.Context(), userID, r.PathValue("id"), body.FollowUpDate)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonOK(w, http.StatusOK, app)
}

func (h *Handler) addNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	var body struct {
		Note string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	app, err := h.svc.AddNote(r.Context(), userID, r.PathValue("id"), body.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonOK(w, http.StatusOK, app)
}

func (h *Handler) applyToListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	var body Listing
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	app, err := h.svc.ApplyToListing(r.Context(), userID, body)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonOK(w, http.StatusCreated, app)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	d, err := h.svc.Dashboard(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonOK(w, http.StatusOK, d)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func userIDFrom(w http.ResponseWriter, r *http.Request) (string, bool) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		jsonError(w, "missing authenticated principal", http.StatusUnauthorized)
		return "", false
	}
	return p.UserID, true
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var ve *ValidationError
	var pe *PersistenceError
	switch {
	case errors.As(err, &ve):
		jsonError(w, ve.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrMissingUser):
		jsonError(w, err.Error(), http.StatusUnauthorized)
	case errors.As(err, &pe):
		slog.Error("store operation failed", "op", pe.Op, "err", pe.Err, "stack", string(pe.Stack))
		jsonError(w, "database error", http.StatusInternalServerError)
	default:
		slog.Error("unexpected tracker error", "err", err)
		jsonError(w, "internal server error", http.StatusInternalServerError)
	}
}

func jsonOK(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
