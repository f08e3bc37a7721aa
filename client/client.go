// Package client implements a Go client for the AI Wrapper API, a service
// that fronts browser-driven AI chat projects behind a small HTTP surface:
// POST /chat, GET /status, GET /projects, POST /reload.
//
// A Client is stateless between calls and safe for concurrent use. Chat
// outcomes reported by the server, including failed ones, come back as
// ChatResult data; errors are reserved for invalid input and for responses
// that violate the API contract.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to one AI Wrapper server.
type Client struct {
	baseURL   string
	transport *Transport
}

// New creates a Client for baseURL with default settings.
func New(baseURL string) (*Client, error) {
	return NewWithConfig(Config{BaseURL: baseURL})
}

// NewWithConfig creates a Client from cfg. The base URL must be an
// absolute http(s) URL; trailing slashes are trimmed so endpoint paths
// join cleanly. Construction performs no network calls.
func NewWithConfig(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, &InvalidInputError{Reason: "base URL is required"}
	}
	u, err := url.Parse(base)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("base URL %q is not an absolute URL", cfg.BaseURL)}
	}

	return &Client{
		baseURL:   base,
		transport: NewTransport(cfg.Timeout),
	}, nil
}

// BaseURL returns the server root this client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// Timeout returns the per-call deadline.
func (c *Client) Timeout() time.Duration { return c.transport.Timeout() }

// Chat sends prompt to the server's default project.
func (c *Client) Chat(ctx context.Context, prompt string) (*ChatResult, error) {
	return c.Send(ctx, ChatRequest{Prompt: prompt})
}

// ChatWithProject sends prompt to the project addressed by projectURL.
func (c *Client) ChatWithProject(ctx context.Context, prompt, projectURL string) (*ChatResult, error) {
	return c.Send(ctx, ChatRequest{Prompt: prompt, ProjectURL: projectURL})
}

// ChatWithImages sends prompt together with base64-encoded images.
func (c *Client) ChatWithImages(ctx context.Context, prompt string, images []string) (*ChatResult, error) {
	return c.Send(ctx, ChatRequest{Prompt: prompt, Images: images})
}

// Send performs one chat exchange against POST /chat. A timeout, an
// unreachable server, or a non-2xx reply is a failed ChatResult rather
// than an error: a slow or briefly absent backend is a normal chat
// outcome and the caller decides what to do with it. The returned error
// is non-nil only for invalid input and contract violations.
func (c *Client) Send(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	if err := validateChatRequest(req); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &InvalidInputError{Reason: fmt.Sprintf("request not serializable: %v", err)}
	}

	code, body, err := c.transport.Do(ctx, "chat", http.MethodPost, c.baseURL+"/chat", payload)
	if err != nil {
		return failedResult(err), nil
	}
	if code < 200 || code > 299 {
		return &ChatResult{Success: false, Error: fmt.Sprintf("server returned HTTP %d", code)}, nil
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ProtocolError{Op: "chat", Detail: "response body is not valid JSON", Err: err}
	}
	if resp.Status == "" {
		return nil, &ProtocolError{Op: "chat", Detail: `response lacks a "status" field`}
	}

	if resp.Status != "success" {
		msg := resp.Error
		if msg == "" {
			msg = msgUnknownError
		}
		return &ChatResult{Success: false, Error: msg}, nil
	}

	return &ChatResult{
		Success:        true,
		Response:       resp.Response,
		ProjectID:      resp.ProjectID,
		ImagesUploaded: resp.ImagesUploaded,
	}, nil
}

// Status fetches the server's health snapshot from GET /status. Unlike
// Send, transport failures come back as errors; a health probe has no
// partial-success reading. A degraded APIStatus is still a successful
// call.
func (c *Client) Status(ctx context.Context) (*StatusInfo, error) {
	code, body, err := c.transport.Do(ctx, "status", http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return nil, err
	}
	if code < 200 || code > 299 {
		return nil, &ProtocolError{Op: "status", Detail: fmt.Sprintf("server returned HTTP %d", code)}
	}

	var details map[string]any
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, &ProtocolError{Op: "status", Detail: "response body is not a JSON object", Err: err}
	}
	apiStatus, ok := details["api_status"].(string)
	if !ok {
		return nil, &ProtocolError{Op: "status", Detail: `response lacks an "api_status" field`}
	}

	return &StatusInfo{APIStatus: apiStatus, Details: details}, nil
}

// Projects lists the server's active project contexts from GET /projects,
// in server order. Transport failures come back as errors, like Status.
func (c *Client) Projects(ctx context.Context) (ProjectList, error) {
	code, body, err := c.transport.Do(ctx, "projects", http.MethodGet, c.baseURL+"/projects", nil)
	if err != nil {
		return nil, err
	}
	if code < 200 || code > 299 {
		return nil, &ProtocolError{Op: "projects", Detail: fmt.Sprintf("server returned HTTP %d", code)}
	}

	var projects ProjectList
	if err := json.Unmarshal(body, &projects); err != nil {
		return nil, &ProtocolError{Op: "projects", Detail: "response body is not a project array", Err: err}
	}
	return projects, nil
}

// Reload asks the server to restart its browser engine via POST /reload,
// which recovers a crashed or wedged backend session. Transport failures
// come back as errors, like Status. The reply is passed through; a
// missing "status" field leaves ReloadInfo.Status empty.
func (c *Client) Reload(ctx context.Context) (*ReloadInfo, error) {
	code, body, err := c.transport.Do(ctx, "reload", http.MethodPost, c.baseURL+"/reload", nil)
	if err != nil {
		return nil, err
	}
	if code < 200 || code > 299 {
		return nil, &ProtocolError{Op: "reload", Detail: fmt.Sprintf("server returned HTTP %d", code)}
	}

	var details map[string]any
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, &ProtocolError{Op: "reload", Detail: "response body is not a JSON object", Err: err}
	}
	status, _ := details["status"].(string)

	return &ReloadInfo{Status: status, Details: details}, nil
}

// Ask is the one-shot helper: it builds a throwaway client, sends a
// single prompt to the default project, and returns the response text.
// Failed chats surface as errors here because there is no result value
// to carry them.
func Ask(ctx context.Context, baseURL, prompt string) (string, error) {
	c, err := New(baseURL)
	if err != nil {
		return "", err
	}
	res, err := c.Chat(ctx, prompt)
	if err != nil {
		return "", err
	}
	if !res.Success {
		return "", fmt.Errorf("chat failed: %s", res.Error)
	}
	return res.Response, nil
}

// validateChatRequest rejects requests locally before any network
// activity. The prompt must be non-blank; optional fields must be
// well-formed when present.
func validateChatRequest(req ChatRequest) error {
	if strings.TrimSpace(req.Prompt) == "" {
		return &InvalidInputError{Reason: "prompt must be a non-empty string"}
	}
	if req.ProjectURL != "" {
		u, err := url.Parse(req.ProjectURL)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return &InvalidInputError{Reason: fmt.Sprintf("project URL %q is not an absolute URL", req.ProjectURL)}
		}
	}
	for i, img := range req.Images {
		if strings.TrimSpace(img) == "" {
			return &InvalidInputError{Reason: fmt.Sprintf("image %d is empty", i)}
		}
	}
	return nil
}

// failedResult renders a transport failure as chat failure data.
func failedResult(err error) *ChatResult {
	if IsTimeout(err) {
		return &ChatResult{Success: false, Error: msgRequestTimeout}
	}
	return &ChatResult{Success: false, Error: fmt.Sprintf("Request failed: %v", err)}
}
