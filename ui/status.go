package ui

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const (
	colorGreen = "\033[32m"
	colorReset = "\033[0m"
)

// StatusLine manages an in-place updating status line in the terminal
type StatusLine struct {
	mu            sync.Mutex
	active        bool
	message       string
	spinner       []string
	spinnerIdx    int
	done          chan struct{}
	lastLineWidth int
	isTTY         bool
}

// NewStatusLine creates a new status line manager
func NewStatusLine() *StatusLine {
	// Check if stdout is a terminal
	fileInfo, _ := os.Stdout.Stat()
	isTTY := (fileInfo.Mode() & os.ModeCharDevice) != 0

	return &StatusLine{
		spinner: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		isTTY:   isTTY,
	}
}

// ShowWithSpinner displays a status message with an animated spinner
func (s *StatusLine) ShowWithSpinner(msg string) {
	s.mu.Lock()
	s.message = msg
	s.active = true
	s.spinnerIdx = 0
	done := make(chan struct{})
	s.done = done
	s.mu.Unlock()

	if !s.isTTY {
		// For non-TTY, just show the message once
		fmt.Println(msg)
		return
	}

	go s.animate(done)
}

// Clear removes the status line and stops any animation
func (s *StatusLine) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		close(s.done)
		s.done = nil
	}
	if s.active && s.isTTY {
		s.clearLine()
	}
	s.active = false
	s.message = ""
}

// animate runs the spinner until its done channel closes
func (s *StatusLine) animate(done chan struct{}) {
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.mu.Lock()
			if !s.active {
				s.mu.Unlock()
				return
			}
			s.spinnerIdx = (s.spinnerIdx + 1) % len(s.spinner)
			s.clearLine()
			frame := fmt.Sprintf("%s%s%s %s", colorGreen, s.spinner[s.spinnerIdx], colorReset, s.message)
			// Width excludes the invisible color escapes
			s.print(frame, 2+utf8.RuneCountInString(s.message))
			s.mu.Unlock()
		}
	}
}

// print outputs text without newline, remembering its visible width
func (s *StatusLine) print(text string, width int) {
	fmt.Print(text)
	s.lastLineWidth = width
}

// clearLine erases the current line
func (s *StatusLine) clearLine() {
	if s.lastLineWidth > 0 {
		fmt.Print("\r" + strings.Repeat(" ", s.lastLineWidth) + "\r")
		s.lastLineWidth = 0
	}
}
