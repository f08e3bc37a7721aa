package client

import "time"

// DefaultTimeout bounds one full request/response exchange when the
// config does not say otherwise. Chat completion can legitimately take
// minutes while the backend generates a reply.
const DefaultTimeout = 180 * time.Second

// Config holds the settings of a Client. A Client is immutable after
// construction; build a new one to change these.
type Config struct {
	// BaseURL is the root of the wrapper API, e.g. "http://vm-server:8000".
	BaseURL string

	// Timeout bounds each call from connection establishment through
	// full body receipt. Zero means DefaultTimeout.
	Timeout time.Duration
}

// ChatRequest is the payload of one POST /chat exchange. The optional
// fields carry omitempty so an absent value is omitted from the wire
// entirely: the server reads field presence, not null, to decide between
// the default project and an explicit one.
type ChatRequest struct {
	Prompt     string   `json:"prompt"`
	ProjectURL string   `json:"project_url,omitempty"`
	Images     []string `json:"images,omitempty"`
}

// ChatResult is the normalized outcome of a chat call. Business failure
// is data, not an error: exactly one of Response and Error is meaningful,
// matching Success.
type ChatResult struct {
	Success        bool
	Response       string
	ProjectID      string
	ImagesUploaded int
	Error          string
}

// StatusInfo is a snapshot of server health at call time. Details holds
// the parsed body with every field the server sent; APIStatus is lifted
// out for convenience. A non-"running" APIStatus is data for the caller,
// not an error.
type StatusInfo struct {
	APIStatus string
	Details   map[string]any
}

// Project describes one active server-side chat project.
type Project struct {
	ID  string `json:"project_id"`
	URL string `json:"project_url"`
}

// ProjectList holds the server's project listing in server order. The
// client does not reorder, filter, or deduplicate it.
type ProjectList []Project

// ReloadInfo reports the outcome of a browser engine reload.
type ReloadInfo struct {
	Status  string
	Details map[string]any
}

// chatResponse is the wire shape of a POST /chat reply.
type chatResponse struct {
	Status         string `json:"status"`
	Response       string `json:"response"`
	ProjectID      string `json:"project_id"`
	Error          string `json:"error"`
	ImagesUploaded int    `json:"images_uploaded"`
}
