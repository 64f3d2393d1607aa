// Package progress shows a status line on stderr while identifiers resolve.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// IsTerminalFunc is the function used to check if a file descriptor is a terminal.
// It can be overridden for testing.
var IsTerminalFunc = term.IsTerminal

// frames defines the animation characters for the status line.
var frames = []string{"|", "/", "-", "\\"}

// interval is the time between frame updates.
const interval = 100 * time.Millisecond

// lineWidth is the width cleared when the line is redrawn.
const lineWidth = 80

// Status counts finished items out of a known total and animates a line
// such as "/ Resolving 2/5 @opam/dune@^3.0.0". Off a terminal it stays
// silent, so piped output carries results only.
type Status struct {
	mu      sync.Mutex
	output  io.Writer
	verb    string
	total   int
	done    int
	current string
	stop    chan struct{}
	stopped bool
	isTTY   bool
}

// NewStatus creates a status line for total items. If output is nil,
// os.Stderr is used.
func NewStatus(output io.Writer, verb string, total int) *Status {
	if output == nil {
		output = os.Stderr
	}
	return &Status{
		output: output,
		verb:   verb,
		total:  total,
		stop:   make(chan struct{}),
		isTTY:  ShouldShow(),
	}
}

// Start begins animating. It does nothing off a terminal.
func (s *Status) Start() {
	if !s.isTTY {
		return
	}
	go s.animate()
}

// Begin records the item now in flight.
func (s *Status) Begin(item string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = item
}

// Done marks one item finished.
func (s *Status) Done() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done < s.total {
		s.done++
	}
}

// Stop halts the animation and clears the line. It is safe to call twice.
func (s *Status) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	close(s.stop)

	if s.isTTY {
		fmt.Fprintf(s.output, "\r%s\r", strings.Repeat(" ", lineWidth))
	}
}

// Line returns the text shown for the current state, without the frame.
func (s *Status) Line() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := fmt.Sprintf("%s %d/%d", s.verb, s.done, s.total)
	if s.current != "" {
		line += " " + s.current
	}
	return line
}

func (s *Status) animate() {
	frame := 0
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			line := fmt.Sprintf("\r%s %s", frames[frame%len(frames)], s.Line())
			if len(line) < lineWidth {
				line += strings.Repeat(" ", lineWidth-len(line))
			}
			fmt.Fprint(s.output, line)
			frame++
		}
	}
}

// ShouldShow returns true if the status line should be displayed.
// It is shown when stderr is a terminal.
func ShouldShow() bool {
	return IsTerminalFunc(int(os.Stderr.Fd()))
}
