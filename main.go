package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/fathindifa26/ai-wrapper-client/audit"
	"github.com/fathindifa26/ai-wrapper-client/client"
	"github.com/fathindifa26/ai-wrapper-client/config"
	"github.com/fathindifa26/ai-wrapper-client/mcp"
	"github.com/fathindifa26/ai-wrapper-client/session"
	"github.com/fathindifa26/ai-wrapper-client/transcript"
	"github.com/fathindifa26/ai-wrapper-client/ui"
)

const version = "1.0.0"

// imageFlags collects repeated -image arguments
type imageFlags []string

func (f *imageFlags) String() string     { return strings.Join(*f, ",") }
func (f *imageFlags) Set(v string) error { *f = append(*f, v); return nil }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env before flags and config so overrides can come from any layer
	_ = godotenv.Load()

	var images imageFlags
	configPath := flag.String("config", "", "path to config file")
	baseURL := flag.String("url", "", "wrapper API base URL (overrides config)")
	timeoutSec := flag.Int("timeout", 0, "request timeout in seconds (overrides config)")
	projectURL := flag.String("project", "", "project URL for this session (overrides config)")
	prompt := flag.String("p", "", "send one prompt, print the reply, and exit")
	mcpMode := flag.Bool("mcp", false, "serve MCP tools over stdio instead of the chat loop")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Var(&images, "image", "attach an image file to the prompt (repeatable, with -p)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("ai-wrapper-client v%s\n", version)
		return
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		if shouldWarnConfig(*configPath, err) {
			fmt.Printf("Warning: failed to load config, using defaults: %v\n", err)
		}
		cfg = config.Get() // Get default config
	}

	// Flags win over file and environment
	if *baseURL != "" {
		cfg.Server.BaseURL = *baseURL
	}
	if *timeoutSec > 0 {
		cfg.Server.TimeoutSeconds = *timeoutSec
	}
	if *projectURL != "" {
		cfg.Defaults.ProjectURL = *projectURL
	}

	api, err := client.NewWithConfig(client.Config{
		BaseURL: cfg.Server.BaseURL,
		Timeout: cfg.Timeout(),
	})
	if err != nil {
		fmt.Println("Startup failed:", err)
		os.Exit(1)
	}

	if *mcpMode {
		if err := mcp.NewServer(api, version).ServeStdio(); err != nil {
			fmt.Fprintln(os.Stderr, "MCP server stopped:", err)
			os.Exit(1)
		}
		return
	}

	if *prompt != "" {
		os.Exit(runOneShot(ctx, api, *prompt, cfg.Defaults.ProjectURL, images))
	}

	runChat(ctx, api, cfg)
}

// shouldWarnConfig reports whether a failed config load deserves a warning.
// A missing file at the default location is a fresh install and stays quiet.
// Explicit -config paths and files that exist but cannot be read or parsed
// always warn.
func shouldWarnConfig(path string, err error) bool {
	return path != "" || !errors.Is(err, os.ErrNotExist)
}

// runOneShot sends a single prompt and prints the reply to stdout.
// Failures go to stderr with a non-zero exit so scripts can branch on it.
func runOneShot(ctx context.Context, api *client.Client, prompt, projectURL string, imagePaths []string) int {
	req := client.ChatRequest{Prompt: prompt, ProjectURL: projectURL}
	for _, path := range imagePaths {
		encoded, err := client.EncodeImageFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return 1
		}
		req.Images = append(req.Images, encoded)
	}

	res, err := api.Send(ctx, req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	if !res.Success {
		fmt.Fprintln(os.Stderr, "Chat failed:", res.Error)
		return 1
	}

	fmt.Println(res.Response)
	return 0
}

func runChat(ctx context.Context, api *client.Client, cfg *config.Config) {
	s := &chatSession{
		console: ui.NewConsole(),
		api:     api,
		history: session.NewHistory(cfg.History.MaxTurns),
		project: cfg.Defaults.ProjectURL,
	}

	if cfg.HistoryEnabled() {
		store, err := transcript.NewStore(cfg.History.DBPath)
		if err != nil {
			fmt.Printf("Warning: transcript store unavailable: %v\n", err)
		} else {
			s.store = store
			defer store.Close()
		}
	}

	if cfg.Audit.Enabled {
		s.audit = audit.NewLogger(cfg.Audit.LogPath)
	}

	s.run(ctx)
}

// chatSession holds the state of one interactive chat loop.
type chatSession struct {
	console *ui.Console
	api     *client.Client
	history *session.History
	store   *transcript.Store
	audit   *audit.Logger
	project string // Project URL routing prompts; empty means server default
}

func (s *chatSession) run(ctx context.Context) {
	s.console.PrintWelcome(s.api.BaseURL(), s.project)

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nGraceful shutdown.")
			return
		default:
		}

		input, err := s.console.ReadInput()
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Println()
				return
			}
			s.console.DisplayError(err)
			return
		}

		if input == "" {
			continue
		}

		if input == "exit" || input == "quit" {
			fmt.Println("Goodbye!")
			return
		}

		if input == "-help" || input == "--help" || input == "help" {
			s.console.PrintHelp()
			continue
		}

		if strings.HasPrefix(input, "/") {
			s.handleCommand(ctx, input)
			continue
		}

		s.sendPrompt(ctx, input)
		s.console.PrintSeparator()
	}
}

// sendPrompt runs one chat exchange and records the outcome.
func (s *chatSession) sendPrompt(ctx context.Context, prompt string) {
	exchangeID := uuid.New().String()

	s.console.ShowWaiting("Waiting for response...")
	start := time.Now()
	res, err := s.api.Send(ctx, client.ChatRequest{Prompt: prompt, ProjectURL: s.project})
	elapsed := time.Since(start)
	s.console.ClearStatus()

	if err != nil {
		s.console.DisplayError(err)
		// Rejected input never left the machine, so there is nothing worth recording
		if !client.IsInvalidInput(err) {
			s.record(exchangeID, prompt, nil, err, elapsed)
		}
		return
	}

	if res.Success {
		s.console.DisplayResponse(res.ProjectID, res.Response)
		s.history.AddExchange(prompt, res.Response, res.ProjectID)
	} else {
		s.console.DisplayChatFailure(res.Error)
	}
	s.record(exchangeID, prompt, res, nil, elapsed)
}

// record persists one chat outcome to the transcript and audit logs.
func (s *chatSession) record(exchangeID, prompt string, res *client.ChatResult, callErr error, elapsed time.Duration) {
	var response, errDetail, projectID string
	success := false
	if res != nil {
		response = res.Response
		errDetail = res.Error
		projectID = res.ProjectID
		success = res.Success
	}
	if callErr != nil {
		errDetail = callErr.Error()
	}

	if s.store != nil {
		err := s.store.SaveExchange(transcript.Exchange{
			ID:         exchangeID,
			ProjectID:  projectID,
			ProjectURL: s.project,
			Prompt:     prompt,
			Response:   response,
			Success:    success,
			Error:      errDetail,
			Duration:   elapsed,
		})
		if err != nil {
			fmt.Printf("Warning: failed to save exchange: %v\n", err)
		}
	}

	if s.audit != nil {
		err := s.audit.Append(audit.Event{
			ExchangeID: exchangeID,
			Op:         "chat",
			BaseURL:    s.api.BaseURL(),
			ProjectURL: s.project,
			Success:    success,
			Error:      errDetail,
			DurationMS: elapsed.Milliseconds(),
		})
		if err != nil {
			fmt.Printf("Warning: failed to write audit event: %v\n", err)
		}
	}
}

// logOp records a non-chat API call in the audit log.
func (s *chatSession) logOp(op string, callErr error, elapsed time.Duration) {
	if s.audit == nil {
		return
	}

	ev := audit.Event{
		Op:         op,
		BaseURL:    s.api.BaseURL(),
		Success:    callErr == nil,
		DurationMS: elapsed.Milliseconds(),
	}
	if callErr != nil {
		ev.Error = callErr.Error()
	}
	if err := s.audit.Append(ev); err != nil {
		fmt.Printf("Warning: failed to write audit event: %v\n", err)
	}
}

func (s *chatSession) handleCommand(ctx context.Context, input string) {
	parts := strings.Fields(input)
	cmd, args := parts[0], parts[1:]

	switch cmd {
	case "/status":
		s.console.ShowWaiting("Checking server status...")
		start := time.Now()
		info, err := s.api.Status(ctx)
		s.console.ClearStatus()
		s.logOp("status", err, time.Since(start))
		if err != nil {
			s.console.DisplayError(err)
			return
		}
		s.console.DisplayStatus(info)

	case "/projects":
		s.console.ShowWaiting("Listing projects...")
		start := time.Now()
		projects, err := s.api.Projects(ctx)
		s.console.ClearStatus()
		s.logOp("projects", err, time.Since(start))
		if err != nil {
			s.console.DisplayError(err)
			return
		}
		s.console.DisplayProjects(projects)

	case "/reload":
		// The engine is shared; reloading interrupts every client of the server
		if !s.console.Confirm("Restart the server's browser engine?") {
			fmt.Println("Reload cancelled.")
			return
		}
		s.console.ShowWaiting("Reloading browser engine...")
		start := time.Now()
		info, err := s.api.Reload(ctx)
		s.console.ClearStatus()
		s.logOp("reload", err, time.Since(start))
		if err != nil {
			s.console.DisplayError(err)
			return
		}
		s.console.DisplayReload(info)

	case "/project":
		if len(args) == 0 {
			s.project = ""
			fmt.Println("Using the server's default project.")
			return
		}
		s.project = args[0]
		fmt.Printf("Routing prompts to %s\n", s.project)

	case "/history":
		s.console.DisplayHistory(s.history)

	case "/recent":
		if s.store == nil {
			fmt.Println("Transcript store is disabled.")
			return
		}
		limit := 10
		if len(args) > 0 {
			if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
				limit = n
			}
		}
		exchanges, err := s.store.Recent(limit)
		if err != nil {
			s.console.DisplayError(err)
			return
		}
		s.console.DisplayExchanges(exchanges)

	case "/search":
		if s.store == nil {
			fmt.Println("Transcript store is disabled.")
			return
		}
		if len(args) == 0 {
			fmt.Println("Usage: /search <term>")
			return
		}
		exchanges, err := s.store.Search(strings.Join(args, " "), 10)
		if err != nil {
			s.console.DisplayError(err)
			return
		}
		s.console.DisplayExchanges(exchanges)

	case "/clear":
		s.history.Clear()
		fmt.Println("Session history cleared.")

	default:
		fmt.Printf("Unknown command: %s (try -help)\n", cmd)
	}
}
