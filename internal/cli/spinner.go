package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/x/ansi"
)

// Spinner animates a one-line status such as "Packing 42 items..." while a
// pipeline stage runs. The message can change between stages; the spinner
// stops on its own when ctx is cancelled.
type Spinner struct {
	w      io.Writer
	frames spinner.Spinner
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	message string
	drawn   int // cells written by the last frame
	stopped bool
}

// startSpinner starts a spinner that draws message on w.
func startSpinner(ctx context.Context, w io.Writer, message string) *Spinner {
	ctx, cancel := context.WithCancel(ctx)
	s := &Spinner{
		w:       w,
		frames:  spinner.MiniDot,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		message: message,
	}
	go s.run()
	return s
}

// spin starts a spinner on the CLI's diagnostic output.
func (c *CLI) spin(ctx context.Context, message string) *Spinner {
	return startSpinner(ctx, c.stderr, message)
}

func (s *Spinner) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.frames.FPS)
	defer ticker.Stop()

	for i := 0; ; i++ {
		s.draw(s.frames.Frames[i%len(s.frames.Frames)])
		select {
		case <-s.ctx.Done():
			s.clear()
			return
		case <-ticker.C:
		}
	}
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.message)
	pad := max(s.drawn-ansi.StringWidth(line), 0)
	fmt.Fprintf(s.w, "\r%s%s", line, strings.Repeat(" ", pad))
	s.drawn = ansi.StringWidth(line)
}

func (s *Spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drawn > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.drawn))
		s.drawn = 0
	}
	s.stopped = true
}

// SetMessage replaces the status text, e.g. when moving from layout to
// rendering. It is shown from the next frame on.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop stops the animation and erases the status line. It is safe to call
// more than once.
func (s *Spinner) Stop() {
	s.cancel()
	<-s.done
}

// StopWithError stops the spinner and reports a failed stage.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}
