package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidatesBaseURL(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
	assert.True(t, IsInvalidInput(err))

	_, err = New("not-a-url")
	assert.True(t, IsInvalidInput(err))

	_, err = New("/relative/path")
	assert.True(t, IsInvalidInput(err))

	c, err := New("http://vm-server:8000")
	require.NoError(t, err)
	assert.Equal(t, "http://vm-server:8000", c.BaseURL())
}

func TestNewTrimsTrailingSlash(t *testing.T) {
	c, err := New("http://vm-server:8000///")
	require.NoError(t, err)
	assert.Equal(t, "http://vm-server:8000", c.BaseURL())
}

func TestNewWithConfigDefaultTimeout(t *testing.T) {
	c, err := NewWithConfig(Config{BaseURL: "http://localhost:8000"})
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, c.Timeout())

	c, err = NewWithConfig(Config{BaseURL: "http://localhost:8000", Timeout: 5 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, c.Timeout())
}

func TestChatSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"success","response":"Hello there","project_id":"proj-1"}`)
	}))
	defer server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)

	res, err := c.Chat(context.Background(), "Hello")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Hello there", res.Response)
	assert.Equal(t, "proj-1", res.ProjectID)
	assert.Empty(t, res.Error)
}

func TestChatOmitsOptionalFieldsWhenAbsent(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		fmt.Fprint(w, `{"status":"success","response":"ok"}`)
	}))
	defer server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)

	_, err = c.Chat(context.Background(), "Hello")
	require.NoError(t, err)

	assert.Equal(t, "Hello", captured["prompt"])
	_, hasProject := captured["project_url"]
	assert.False(t, hasProject, "absent project_url must not appear in the payload")
	_, hasImages := captured["images"]
	assert.False(t, hasImages, "absent images must not appear in the payload")
}

func TestChatSendsProjectURLVerbatim(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		fmt.Fprint(w, `{"status":"success","response":"ok","project_id":"p2"}`)
	}))
	defer server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)

	res, err := c.ChatWithProject(context.Background(), "Hello", "https://chat.example.com/project/abc")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "p2", res.ProjectID)
	assert.Equal(t, "https://chat.example.com/project/abc", captured["project_url"])
}

func TestChatSendsImages(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		fmt.Fprint(w, `{"status":"success","response":"ok","images_uploaded":2}`)
	}))
	defer server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)

	res, err := c.ChatWithImages(context.Background(), "What is this?", []string{"aGVsbG8=", "d29ybGQ="})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.ImagesUploaded)

	images, ok := captured["images"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"aGVsbG8=", "d29ybGQ="}, images)
}

func TestChatRejectsBlankPromptWithoutNetworkCall(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"status":"success","response":"ok"}`)
	}))
	defer server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)

	for _, prompt := range []string{"", "   ", "\t\n"} {
		res, err := c.Chat(context.Background(), prompt)
		assert.Nil(t, res)
		assert.True(t, IsInvalidInput(err), "prompt %q should be rejected locally", prompt)
	}
	assert.Equal(t, int32(0), calls.Load(), "validation failures must not reach the network")
}

func TestChatRejectsMalformedProjectURL(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)

	_, err = c.ChatWithProject(context.Background(), "Hello", "not a url")
	assert.True(t, IsInvalidInput(err))

	_, err = c.ChatWithImages(context.Background(), "Hello", []string{""})
	assert.True(t, IsInvalidInput(err))

	assert.Equal(t, int32(0), calls.Load())
}

func TestChatServerReportedFailureIsData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"error","error":"NOT_LOGGED_IN"}`)
	}))
	defer server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)

	res, err := c.Chat(context.Background(), "Hello")
	require.NoError(t, err, "a server-reported failure is a result, not an error")
	assert.False(t, res.Success)
	assert.Equal(t, "NOT_LOGGED_IN", res.Error)
	assert.Empty(t, res.Response)
}

func TestChatFailureWithoutDetailGetsDefaultMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"error"}`)
	}))
	defer server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)

	res, err := c.Chat(context.Background(), "Hello")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Unknown error", res.Error)
}

func TestChatTimeoutBecomesFailedResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(10 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	c, err := NewWithConfig(Config{BaseURL: server.URL, Timeout: 100 * time.Millisecond})
	require.NoError(t, err)

	start := time.Now()
	res, err := c.Chat(context.Background(), "Hello")
	elapsed := time.Since(start)

	require.NoError(t, err, "a timeout is a failed result, not an error")
	assert.False(t, res.Success)
	assert.Equal(t, "Request timeout", res.Error)
	assert.Less(t, elapsed, 2*time.Second, "the call must return shortly after the deadline")
}

func TestChatConnectionFailureBecomesFailedResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c, err := New(url)
	require.NoError(t, err)

	res, err := c.Chat(context.Background(), "Hello")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "Request failed")
}

func TestChatNon2xxBecomesFailedResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)

	res, err := c.Chat(context.Background(), "Hello")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "server returned HTTP 500", res.Error)
}

func TestChatMalformedBodyIsProtocolError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>gateway error</html>`)
	}))
	defer server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)

	res, err := c.Chat(context.Background(), "Hello")
	assert.Nil(t, res)
	assert.True(t, IsProtocolError(err), "non-JSON body must be a protocol error, got %v", err)
}

func TestChatMissingStatusFieldIsProtocolError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response":"hi"}`)
	}))
	defer server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)

	res, err := c.Chat(context.Background(), "Hello")
	assert.Nil(t, res)
	assert.True(t, IsProtocolError(err))
}

func TestClientReusableAcrossMixedOutcomes(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			fmt.Fprint(w, `{"status":"success","response":"first"}`)
		case 2:
			fmt.Fprint(w, `{"status":"error","error":"NOT_LOGGED_IN"}`)
		default:
			fmt.Fprint(w, `{"status":"success","response":"third"}`)
		}
	}))
	defer server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)
	ctx := context.Background()

	res, err := c.Chat(ctx, "one")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "first", res.Response)

	res, err = c.Chat(ctx, "two")
	require.NoError(t, err)
	assert.False(t, res.Success)

	res, err = c.Chat(ctx, "three")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "third", res.Response, "earlier failures must not bleed into later calls")
}

func TestStatusPassesDetailsThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/status", r.URL.Path)
		fmt.Fprint(w, `{"api_status":"running","browser_engine":"healthy","context_pool":{"total_contexts":3}}`)
	}))
	defer server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)

	info, err := c.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "running", info.APIStatus)
	assert.Equal(t, "healthy", info.Details["browser_engine"])

	pool, ok := info.Details["context_pool"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(3), pool["total_contexts"])
}

func TestStatusDegradedIsDataNotError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"api_status":"degraded"}`)
	}))
	defer server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)

	info, err := c.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "degraded", info.APIStatus)
}

func TestStatusMissingAPIStatusIsProtocolError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"uptime":42}`)
	}))
	defer server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)

	_, err = c.Status(context.Background())
	assert.True(t, IsProtocolError(err))
}

func TestStatusTransportFailureIsTypedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c, err := New(url)
	require.NoError(t, err)

	_, err = c.Status(context.Background())
	require.Error(t, err)
	assert.True(t, IsConnectionFailure(err))
	assert.False(t, IsTimeout(err))
}

func TestStatusTimeoutIsTypedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(10 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	c, err := NewWithConfig(Config{BaseURL: server.URL, Timeout: 100 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.Status(context.Background())
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
}

func TestProjectsPreservesServerOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/projects", r.URL.Path)
		fmt.Fprint(w, `[
			{"project_id":"p2","project_url":"https://chat.example.com/p2"},
			{"project_id":"p1","project_url":"https://chat.example.com/p1"},
			{"project_id":"p2","project_url":"https://chat.example.com/p2"}
		]`)
	}))
	defer server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)

	projects, err := c.Projects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 3, "duplicates must be preserved")
	assert.Equal(t, "p2", projects[0].ID)
	assert.Equal(t, "p1", projects[1].ID)
	assert.Equal(t, "https://chat.example.com/p1", projects[1].URL)
}

func TestProjectsEmptyList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)

	projects, err := c.Projects(context.Background())
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestProjectsMalformedBodyIsProtocolError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"projects":"nope"}`)
	}))
	defer server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)

	_, err = c.Projects(context.Background())
	assert.True(t, IsProtocolError(err))
}

func TestProjectsTransportFailureIsTypedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c, err := New(url)
	require.NoError(t, err)

	_, err = c.Projects(context.Background())
	require.Error(t, err)
	assert.True(t, IsConnectionFailure(err))
	assert.False(t, IsTimeout(err))
}

func TestProjectsTimeoutIsTypedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(10 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	c, err := NewWithConfig(Config{BaseURL: server.URL, Timeout: 100 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.Projects(context.Background())
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
}

func TestReload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/reload", r.URL.Path)
		fmt.Fprint(w, `{"status":"reloaded","browser_engine":"restarted"}`)
	}))
	defer server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)

	info, err := c.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "reloaded", info.Status)
	assert.Equal(t, "restarted", info.Details["browser_engine"])
}

func TestReloadTransportFailureIsTypedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c, err := New(url)
	require.NoError(t, err)

	_, err = c.Reload(context.Background())
	require.Error(t, err)
	assert.True(t, IsConnectionFailure(err))
}

func TestAsk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"success","response":"42"}`)
	}))
	defer server.Close()

	answer, err := Ask(context.Background(), server.URL, "meaning of life?")
	require.NoError(t, err)
	assert.Equal(t, "42", answer)
}

func TestAskSurfacesChatFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"error","error":"NOT_LOGGED_IN"}`)
	}))
	defer server.Close()

	_, err := Ask(context.Background(), server.URL, "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOT_LOGGED_IN")
}

func TestEncodeImageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pixel.png")
	require.NoError(t, os.WriteFile(path, []byte("fake image bytes"), 0644))

	encoded, err := EncodeImageFile(path)
	require.NoError(t, err)
	assert.Equal(t, EncodeImage([]byte("fake image bytes")), encoded)

	_, err = EncodeImageFile(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
