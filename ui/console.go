// Package ui handles terminal input and output for the chat CLI.
package ui

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fathindifa26/ai-wrapper-client/client"
	"github.com/fathindifa26/ai-wrapper-client/session"
	"github.com/fathindifa26/ai-wrapper-client/transcript"
)

// Console handles chat I/O operations
type Console struct {
	scanner *bufio.Scanner
	status  *StatusLine
}

// NewConsole creates a new console
func NewConsole() *Console {
	return &Console{
		scanner: bufio.NewScanner(os.Stdin),
		status:  NewStatusLine(),
	}
}

// ReadInput reads one line of user input from stdin. It returns io.EOF
// when the input stream ends; a blank line comes back as an empty string.
func (c *Console) ReadInput() (string, error) {
	fmt.Print("You: ")

	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", fmt.Errorf("error reading input: %w", err)
		}
		return "", io.EOF
	}

	return strings.TrimSpace(c.scanner.Text()), nil
}

// Confirm asks a yes/no question and waits for the answer. Anything but
// an explicit yes, including EOF, counts as no.
func (c *Console) Confirm(question string) bool {
	fmt.Printf("%s (y/n): ", question)

	if !c.scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(c.scanner.Text()))
	return answer == "y" || answer == "yes"
}

// ShowWaiting displays an animated waiting indicator
func (c *Console) ShowWaiting(message string) {
	c.status.ShowWithSpinner(message)
}

// ClearStatus clears the waiting indicator
func (c *Console) ClearStatus() {
	c.status.Clear()
}

// DisplayResponse displays a successful chat reply
func (c *Console) DisplayResponse(projectID, response string) {
	if projectID != "" {
		fmt.Printf("AI [%s]: ", projectID)
	} else {
		fmt.Print("AI: ")
	}
	fmt.Println(response)
}

// DisplayChatFailure displays a failed chat outcome
func (c *Console) DisplayChatFailure(detail string) {
	fmt.Printf("Chat failed: %s\n", detail)
}

// DisplayError displays an error message
func (c *Console) DisplayError(err error) {
	fmt.Printf("\nError: %v\n", err)
}

// DisplayStatus renders a server health snapshot
func (c *Console) DisplayStatus(info *client.StatusInfo) {
	fmt.Printf("API status: %s\n", info.APIStatus)

	keys := make([]string, 0, len(info.Details))
	for k := range info.Details {
		if k == "api_status" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Printf("  %-20s %s\n", k, renderValue(info.Details[k]))
	}
}

// DisplayProjects renders the project listing in server order
func (c *Console) DisplayProjects(projects client.ProjectList) {
	if len(projects) == 0 {
		fmt.Println("No active projects.")
		return
	}

	fmt.Printf("Active projects (%d):\n", len(projects))
	for _, p := range projects {
		fmt.Printf("  %-12s %s\n", p.ID, p.URL)
	}
}

// DisplayReload renders a reload outcome
func (c *Console) DisplayReload(info *client.ReloadInfo) {
	if info.Status != "" {
		fmt.Printf("Engine reload: %s\n", info.Status)
	} else {
		fmt.Println("Engine reload requested.")
	}
}

// DisplayHistory renders the in-memory conversation
func (c *Console) DisplayHistory(history *session.History) {
	msgs := history.GetMessages()
	if len(msgs) == 0 {
		fmt.Println("No conversation history.")
		return
	}

	fmt.Println(history.GetSummary())
	for _, msg := range msgs {
		speaker := "You"
		if msg.Role == session.RoleAssistant {
			speaker = "AI"
		}
		fmt.Printf("[%s] %s: %s\n", msg.Timestamp.Format("15:04:05"), speaker, msg.Content)
	}
}

// DisplayExchanges renders stored exchanges, newest first
func (c *Console) DisplayExchanges(exchanges []transcript.Exchange) {
	if len(exchanges) == 0 {
		fmt.Println("No stored exchanges.")
		return
	}

	for _, ex := range exchanges {
		outcome := "ok"
		if !ex.Success {
			outcome = "failed: " + ex.Error
		}
		fmt.Printf("[%s] (%s, %s) %s\n", ex.CreatedAt.Format("2006-01-02 15:04"), outcome,
			ex.Duration.Round(10*time.Millisecond), truncate(ex.Prompt, 60))
	}
}

// PrintSeparator prints a line separator for readability
func (c *Console) PrintSeparator() {
	fmt.Println()
}

// PrintWelcome prints the startup banner
func (c *Console) PrintWelcome(baseURL, projectURL string) {
	fmt.Println("AI Wrapper chat. Type 'exit' to quit, '-help' for commands.")
	fmt.Printf("Server: %s\n", baseURL)
	if projectURL != "" {
		fmt.Printf("Project: %s\n", projectURL)
	}
	fmt.Println()
}

// PrintHelp prints the command reference
func (c *Console) PrintHelp() {
	fmt.Println("\n=== Commands ===")
	commands := []struct{ name, desc string }{
		{"/status", "Show server health"},
		{"/projects", "List active projects"},
		{"/reload", "Restart the server's browser engine"},
		{"/project <url>", "Route following prompts to a project (no url resets)"},
		{"/history", "Show this session's conversation"},
		{"/recent [n]", "Show stored exchanges from past sessions"},
		{"/search <term>", "Search stored exchanges"},
		{"/clear", "Forget this session's conversation"},
		{"exit, quit", "Leave the chat"},
	}
	for _, cmd := range commands {
		fmt.Printf("  %-20s %s\n", cmd.name, cmd.desc)
	}
	fmt.Println()
}

// renderValue flattens a status detail for one-line display
func renderValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}

// truncate shortens s to at most max runes
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}
