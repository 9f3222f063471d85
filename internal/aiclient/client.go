// Package aiclient calls the remote Intern-AI service: job-description
// analysis, eligibility scoring, roadmaps, interview questions, the career
// chat bot, and live job listings.
//
// Every failed call surfaces as a *RemoteServiceError whose Kind drives the
// message shown to the user.
package aiclient

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/NavDevs/AI-InternShip/internal/auth"
	"github.com/NavDevs/AI-InternShip/internal/cache"
	"github.com/NavDevs/AI-InternShip/internal/telemetry"
)

var tracer = telemetry.Tracer("github.com/NavDevs/AI-InternShip/internal/aiclient")

const (
	// DefaultBaseURL is the hosted Intern-AI API.
	DefaultBaseURL = "https://ai-internship.onrender.com/api"
	// DefaultTimeout bounds a single call; AI endpoints are slow but not unbounded.
	DefaultTimeout = 60 * time.Second
	// DefaultKeyword and DefaultLocation fill empty live-job searches.
	DefaultKeyword  = "internship"
	DefaultLocation = "India"

	maxBodyBytes = 4 << 20
)

// ErrMissingInput is returned before any request when a required field is blank.
var ErrMissingInput = errors.New("missing required input")

// Client talks to the AI API. It is safe for concurrent use.
type Client struct {
	baseURL  string
	http     *http.Client
	cache    cache.Cache
	cacheTTL time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-call timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithCache caches roadmap and interview-question responses for ttl.
func WithCache(cc cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cc
		c.cacheTTL = ttl
	}
}

// New returns a Client for baseURL (DefaultBaseURL when empty).
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ─── Endpoints ───────────────────────────────────────────────────────────────

// Analyze matches a pasted job description against the user's profile.
func (c *Client) Analyze(ctx context.Context, p auth.Principal, jdText string) (*Analysis, error) {
	if strings.TrimSpace(jdText) == "" {
		return nil, fmt.Errorf("%w: jdText", ErrMissingInput)
	}
	var out Analysis
	if err := c.post(ctx, p, "/ai/analyze", map[string]string{"jdText": jdText}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Eligibility scores the user's skills against a listing. Markup is removed
// from the title and description before sending.
func (c *Client) Eligibility(ctx context.Context, p auth.Principal, job Job, skills []string) (*Eligibility, error) {
	job.Title = StripHTML(job.Title)
	job.Description = StripHTML(job.Description)
	if job.Title == "" {
		return nil, fmt.Errorf("%w: job title", ErrMissingInput)
	}
	if skills == nil {
		skills = []string{}
	}
	body := struct {
		Job        Job      `json:"job"`
		UserSkills []string `json:"userSkills"`
	}{job, skills}

	var out Eligibility
	if err := c.post(ctx, p, "/ai/eligibility", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Roadmap returns a plan toward dreamJob. Results are cached per user.
func (c *Client) Roadmap(ctx context.Context, p auth.Principal, dreamJob string) (*Roadmap, error) {
	dreamJob = strings.TrimSpace(dreamJob)
	if dreamJob == "" {
		return nil, fmt.Errorf("%w: dreamJob", ErrMissingInput)
	}
	key := cacheKey("roadmap", p.UserID, dreamJob)
	out, err := cached(ctx, c, key, func() (Roadmap, error) {
		var r Roadmap
		err := c.post(ctx, p, "/ai/roadmap", map[string]string{"dreamJob": dreamJob}, &r)
		return r, err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// InterviewQuestions returns practice questions for role. Results are cached
// per role since they do not depend on the user.
func (c *Client) InterviewQuestions(ctx context.Context, p auth.Principal, role string) (*InterviewQuestions, error) {
	role = StripHTML(role)
	if role == "" {
		return nil, fmt.Errorf("%w: role", ErrMissingInput)
	}
	key := cacheKey("interview", "", role)
	out, err := cached(ctx, c, key, func() (InterviewQuestions, error) {
		var q InterviewQuestions
		err := c.post(ctx, p, "/ai/interview-questions", map[string]string{"role": role}, &q)
		return q, err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Chat sends one message with the prior conversation.
func (c *Client) Chat(ctx context.Context, p auth.Principal, message string, history []ChatTurn) (*ChatReply, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: message", ErrMissingInput)
	}
	if history == nil {
		history = []ChatTurn{}
	}
	body := struct {
		Message     string     `json:"message"`
		ChatHistory []ChatTurn `json:"chatHistory"`
	}{message, history}

	var out ChatReply
	if err := c.post(ctx, p, "/ai/chat", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CareerAdvice asks for an assessment of the user's saved applications.
func (c *Client) CareerAdvice(ctx context.Context, p auth.Principal) (*CareerAdvice, error) {
	var out CareerAdvice
	if err := c.post(ctx, p, "/ai/career-advice", struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// JobQuery parameterises a listing search.
type JobQuery struct {
	Keyword  string
	Location string
	Type     string // only used by the fallback listing endpoint
}

// JobResults holds listings and whether they came from the live search.
type JobResults struct {
	Listings []JobListing `json:"listings"`
	Live     bool         `json:"live"`
}

// SearchJobs queries live listings and falls back to the stored listing
// endpoint when the live search fails.
func (c *Client) SearchJobs(ctx context.Context, q JobQuery) (*JobResults, error) {
	keyword := strings.TrimSpace(q.Keyword)
	if keyword == "" {
		keyword = DefaultKeyword
	}
	location := strings.TrimSpace(q.Location)
	if location == "" {
		location = DefaultLocation
	}

	var live []JobListing
	err := c.get(ctx, "/jobs/live", url.Values{"keyword": {keyword}, "location": {location}}, &live)
	if err == nil {
		return &JobResults{Listings: nonNil(live), Live: true}, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	slog.Warn("live job search failed, using stored listings", "keyword", keyword, "err", err)

	params := url.Values{}
	if q.Type != "" {
		params.Set("type", q.Type)
	}
	if q.Location != "" {
		params.Set("state", strings.TrimSpace(q.Location))
	}
	var stored []JobListing
	if err := c.get(ctx, "/jobs", params, &stored); err != nil {
		return nil, err
	}
	return &JobResults{Listings: nonNil(stored), Live: false}, nil
}

// ─── Transport ───────────────────────────────────────────────────────────────

func (c *Client) post(ctx context.Context, p auth.Principal, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s body: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.UserID != "" {
		req.Header.Set(auth.UserIDHeader, p.UserID)
	}
	if p.Token != "" {
		req.Header.Set("Authorization", "Bearer "+p.Token)
	}
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	ctx, span := tracer.Start(req.Context(), "aiclient "+req.Method+" "+req.URL.Path)
	defer span.End()
	req = req.WithContext(ctx)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return ctx.Err()
		}
		return unreachable(err)
	}
	defer resp.Body.Close()
	span.SetAttributes(telemetry.Int("http.status_code", resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return unreachable(fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rerr := statusError(resp.StatusCode, body)
		span.RecordError(rerr)
		return rerr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &RemoteServiceError{
			Kind:       KindGeneric,
			StatusCode: resp.StatusCode,
			Message:    "malformed response",
			Err:        err,
		}
	}
	return nil
}

// cached serves key from the cache, or runs fetch and stores its result.
// An entry that does not decode is ignored and overwritten. Cache failures
// never fail the call.
func cached[T any](ctx context.Context, c *Client, key string, fetch func() (T, error)) (T, error) {
	if c.cache == nil {
		return fetch()
	}

	var raw []byte
	if err := c.cache.Get(ctx, key, &raw); err == nil {
		var hit T
		if err := json.Unmarshal(raw, &hit); err == nil {
			return hit, nil
		}
		slog.Warn("ai cache entry undecodable", "key", key, "err", err)
	} else if !errors.Is(err, cache.ErrNotFound) {
		slog.Warn("ai cache read failed", "key", key, "err", err)
	}

	out, err := fetch()
	if err != nil {
		return out, err
	}

	if raw, err := json.Marshal(out); err == nil {
		if err := c.cache.Set(ctx, key, raw, c.cacheTTL); err != nil {
			slog.Warn("ai cache write failed", "key", key, "err", err)
		}
	}
	return out, nil
}

func cacheKey(kind, userID, input string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(input))))
	if userID == "" {
		return "ai:" + kind + ":" + hex.EncodeToString(sum[:12])
	}
	return "ai:" + kind + ":" + userID + ":" + hex.EncodeToString(sum[:12])
}

func nonNil(l []JobListing) []JobListing {
	if l == nil {
		return []JobListing{}
	}
	return l
}
