package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/artistgraph/pkg/similarity"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner draws an animated status line on a terminal writer until it is
// stopped or its context ends. The status suffix can be replaced while the
// spinner runs.
type Spinner struct {
	out     io.Writer
	message string
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	started atomic.Bool
	once    sync.Once

	mu     sync.Mutex
	status string
	width  int // widest line drawn, for clearing
}

// newSpinner creates a spinner writing to out. It stops drawing when ctx is
// done.
func newSpinner(ctx context.Context, out io.Writer, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		out:     out,
		message: message,
		ctx:     spinnerCtx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for i := 0; s.ctx.Err() == nil; i++ {
			s.draw(spinnerFrames[i%len(spinnerFrames)])
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// SetStatus replaces the text drawn after the message.
func (s *Spinner) SetStatus(status string) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// Stop ends the animation and clears the line. It is safe to call more than
// once, and before Start.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		if s.started.Load() {
			<-s.stopped
			s.clear()
		}
	})
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.message)
	if s.status != "" {
		line += " " + StyleNumber.Render(s.status)
	}
	s.width = max(s.width, lipgloss.Width(line))
	fmt.Fprintf(s.out, "\r%s", line)
}

func (s *Spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width))
}

// trackBuild returns a context whose graph builds update the spinner status
// with the number of artists and links found so far.
func (s *Spinner) trackBuild(ctx context.Context) context.Context {
	return similarity.WithProgress(ctx, func(p similarity.Progress) {
		s.SetStatus(buildStatus(p))
	})
}

func buildStatus(p similarity.Progress) string {
	status := fmt.Sprintf("%d artists · %d links · depth %d", p.Nodes, p.Edges, p.Depth)
	if p.Mode == similarity.ModeDegraded {
		status += " (degraded)"
	}
	return status
}
