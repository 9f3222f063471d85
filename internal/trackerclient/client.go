// Package trackerclient is an HTTP client for the tracker service API. It
// satisfies view.Backend so a ListView can run against a remote service.
package trackerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/NavDevs/AI-InternShip/internal/auth"
	"github.com/NavDevs/AI-InternShip/internal/tracker"
)

// Client calls the tracker REST API on behalf of one principal. The userID
// arguments of its methods must match that principal.
type Client struct {
	baseURL   string
	principal auth.Principal
	http      *http.Client
}

// New returns a client for baseURL acting as p. With a token the client
// sends a bearer credential, otherwise the gateway user header.
func New(baseURL string, p auth.Principal, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), principal: p, http: hc}
}

// ListApplications returns every application of the principal.
func (c *Client) ListApplications(ctx context.Context, userID string) ([]tracker.Application, error) {
	var apps []tracker.Application
	if err := c.call(ctx, userID, http.MethodGet, "/applications", nil, &apps); err != nil {
		return nil, err
	}
	if apps == nil {
		apps = []tracker.Application{}
	}
	return apps, nil
}

// CreateApplication creates an application.
func (c *Client) CreateApplication(ctx context.Context, userID string, in tracker.NewApplication) (*tracker.Application, error) {
	var app tracker.Application
	if err := c.call(ctx, userID, http.MethodPost, "/applications", in, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// UpdateStatus sets the status of an application.
func (c *Client) UpdateStatus(ctx context.Context, userID, appID, status string) (*tracker.Application, error) {
	var app tracker.Application
	body := map[string]string{"status": status}
	if err := c.call(ctx, userID, http.MethodPost, "/applications/"+url.PathEscape(appID)+"/status", body, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// DeleteApplication removes an application.
func (c *Client) DeleteApplication(ctx context.Context, userID, appID string) error {
	return c.call(ctx, userID, http.MethodDelete, "/applications/"+url.PathEscape(appID), nil, nil)
}

// Dashboard fetches the server-side summary.
func (c *Client) Dashboard(ctx context.Context, userID string) (*tracker.Dashboard, error) {
	var d tracker.Dashboard
	if err := c.call(ctx, userID, http.MethodGet, "/dashboard", nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ─── Transport ───────────────────────────────────────────────────────────────

func (c *Client) call(ctx context.Context, userID, method, path string, in, out any) error {
	if userID == "" {
		return tracker.ErrMissingUser
	}
	if userID != c.principal.UserID {
		return fmt.Errorf("%w: client acts as %q, not %q", auth.ErrUnauthenticated, c.principal.UserID, userID)
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.principal.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.principal.Token)
	} else {
		req.Header.Set(auth.UserIDHeader, c.principal.UserID)
	}

	op := strings.ToLower(method) + " " + path
	resp, err := c.http.Do(req)
	if err != nil {
		return tracker.NewPersistenceError(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return tracker.NewPersistenceError(op, err)
	}

	if resp.StatusCode >= 300 {
		msg := errorMessage(raw)
		switch resp.StatusCode {
		case http.StatusBadRequest:
			return &tracker.ValidationError{Msg: msg}
		case http.StatusNotFound:
			return tracker.ErrNotFound
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", auth.ErrUnauthenticated, msg)
		}
		return tracker.NewPersistenceError(op, fmt.Errorf("tracker returned %d: %s", resp.StatusCode, msg))
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return tracker.NewPersistenceError(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func errorMessage(raw []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(raw))
}

// IsUnauthenticated reports whether err came from a rejected credential.
func IsUnauthenticated(err error) bool { return errors.Is(err, auth.ErrUnauthenticated) }
