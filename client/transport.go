package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"
)

// Transport performs one HTTP request/response cycle against the wrapper
// API and classifies failures. It never interprets body contents; that is
// the Client's job. A single deadline covers the whole exchange, from
// connection establishment through full body receipt, because with a
// generative backend nearly all the latency is server-side processing.
type Transport struct {
	http *http.Client
}

// NewTransport returns a Transport whose exchanges are bounded by timeout.
// A non-positive timeout falls back to DefaultTimeout.
func NewTransport(timeout time.Duration) *Transport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Transport{
		http: &http.Client{Timeout: timeout},
	}
}

// Timeout returns the deadline applied to each exchange.
func (t *Transport) Timeout() time.Duration {
	return t.http.Timeout
}

// Do issues one request and returns the HTTP status code and the full
// response body. Any failure before a complete response has been read
// comes back as a *TransportError of kind timeout or connection. There
// are no retries; the caller sees exactly one exchange.
func (t *Transport) Do(ctx context.Context, op, method, url string, payload []byte) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, nil, &TransportError{Kind: ErrKindConnection, Op: op, Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.http.Do(req)
	if err != nil {
		return 0, nil, classify(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		// The exchange only counts as complete once the whole body arrived.
		return 0, nil, classify(op, err)
	}

	return resp.StatusCode, data, nil
}

// classify maps a failed exchange onto the two failure kinds. Context
// cancellation lands in the connection bucket: the client exposes no
// cancellation outcome distinct from the deadline.
func classify(op string, err error) *TransportError {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &TransportError{Kind: ErrKindTimeout, Op: op, Err: err}
	}
	return &TransportError{Kind: ErrKindConnection, Op: op, Err: err}
}
