package api

// AI proxy routes. Requests run as the authenticated principal, whose id is
// forwarded to the AI service.
//
//	POST /ai/analyze               {jdText}
//	POST /ai/eligibility           {job, userSkills}
//	POST /ai/roadmap               {dreamJob}
//	POST /ai/interview-questions   {role}
//	POST /ai/chat                  {message, chatHistory}
//	POST /ai/career-advice
//	GET  /jobs/live?keyword=&location=&type=

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/NavDevs/AI-InternShip/internal/aiclient"
	"github.com/NavDevs/AI-InternShip/internal/auth"
	"github.com/NavDevs/AI-InternShip/internal/tracker"
)

// AIHandler proxies the AI service.
type AIHandler struct {
	client   *aiclient.Client
	redFlags []string
}

// NewAIHandler returns a handler on client. Live listings mentioning any of
// redFlags are dropped.
func NewAIHandler(client *aiclient.Client, redFlags []string) *AIHandler {
	return &AIHandler{client: client, redFlags: redFlags}
}

// RegisterRoutes mounts the AI routes on mux.
func (h *AIHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /ai/analyze", h.analyze)
	mux.HandleFunc("POST /ai/eligibility", h.eligibility)
	mux.HandleFunc("POST /ai/roadmap", h.roadmap)
	mux.HandleFunc("POST /ai/interview-questions", h.interviewQuestions)
	mux.HandleFunc("POST /ai/chat", h.chat)
	mux.HandleFunc("POST /ai/career-advice", h.careerAdvice)
	mux.HandleFunc("GET /jobs/live", h.liveJobs)
}

func (h *AIHandler) analyze(w http.ResponseWriter, r *http.Request) {
	var body struct {
		JDText string `json:"jdText"`
	}
	p, ok := decode(w, r, &body)
	if !ok {
		return
	}
	res, err := h.client.Analyze(r.Context(), p, body.JDText)
	respond(w, res, err)
}

func (h *AIHandler) eligibility(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Job        aiclient.Job `json:"job"`
		UserSkills []string     `json:"userSkills"`
	}
	p, ok := decode(w, r, &body)
	if !ok {
		return
	}
	res, err := h.client.Eligibility(r.Context(), p, body.Job, body.UserSkills)
	respond(w, res, err)
}

func (h *AIHandler) roadmap(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DreamJob string `json:"dreamJob"`
	}
	p, ok := decode(w, r, &body)
	if !ok {
		return
	}
	res, err := h.client.Roadmap(r.Context(), p, body.DreamJob)
	respond(w, res, err)
}

func (h *AIHandler) interviewQuestions(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Role string `json:"role"`
	}
	p, ok := decode(w, r, &body)
	if !ok {
		return
	}
	res, err := h.client.InterviewQuestions(r.Context(), p, body.Role)
	respond(w, res, err)
}

func (h *AIHandler) chat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message     string              `json:"message"`
		ChatHistory []aiclient.ChatTurn `json:"chatHistory"`
	}
	p, ok := decode(w, r, &body)
	if !ok {
		return
	}
	res, err := h.client.Chat(r.Context(), p, body.Message, body.ChatHistory)
	respond(w, res, err)
}

func (h *AIHandler) careerAdvice(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing authenticated principal"})
		return
	}
	res, err := h.client.CareerAdvice(r.Context(), p)
	respond(w, res, err)
}

func (h *AIHandler) liveJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	location := q.Get("location")
	res, err := h.client.SearchJobs(r.Context(), aiclient.JobQuery{
		Keyword:  q.Get("keyword"),
		Location: location,
		Type:     q.Get("type"),
	})
	if err != nil {
		respond(w, nil, err)
		return
	}

	kept := res.Listings[:0:0]
	for _, l := range aiclient.DropRedFlagged(res.Listings, h.redFlags) {
		if tracker.MatchesLocation(l.Location, location) {
			kept = append(kept, l)
		}
	}
	res.Listings = kept
	writeJSON(w, http.StatusOK, res)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func decode(w http.ResponseWriter, r *http.Request, into any) (auth.Principal, bool) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing authenticated principal"})
		return auth.Principal{}, false
	}
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return auth.Principal{}, false
	}
	return p, true
}

// respond maps AI client errors: rate limiting passes through as 429, other
// upstream failures become 502 with the user-facing message and kind.
func respond(w http.ResponseWriter, v any, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, v)
		return
	}
	if errors.Is(err, aiclient.ErrMissingInput) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if re, ok := aiclient.AsRemoteServiceError(err); ok {
		code := http.StatusBadGateway
		if re.Kind == aiclient.KindRateLimited {
			code = http.StatusTooManyRequests
		}
		writeJSON(w, code, map[string]string{"error": re.UserMessage(), "kind": string(re.Kind)})
		return
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "request cancelled"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
