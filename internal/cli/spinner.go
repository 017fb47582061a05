package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/chartkit/pkg/observability"
)

// spinnerFrames are shared by the render spinner and the play loader.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows pipeline progress on a terminal line. It is also a
// PipelineHooks, so once installed with [Spinner.Track] its message follows
// the stage being run: loading, layout, then rendering.
type Spinner struct {
	observability.NoopPipelineHooks

	w       io.Writer
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	started bool
	once    sync.Once

	mu      sync.Mutex
	message string
	width   int // widest line drawn, for clearing
}

// newSpinner creates a spinner writing to w that stops when ctx ends.
func newSpinner(ctx context.Context, w io.Writer, message string) *Spinner {
	ctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		message: message,
	}
}

// Track installs the spinner as the pipeline hooks and returns a function
// restoring the previous ones.
func (s *Spinner) Track() (restore func()) {
	prev := observability.Pipeline()
	observability.SetPipelineHooks(s)
	return func() { observability.SetPipelineHooks(prev) }
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.started = true
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

// Stop ends the animation and clears the line. It is safe to call twice.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.done)
		if s.started {
			<-s.stopped
		}
		s.cancel()
		s.clearLine()
	})
}

// Message returns the current message.
func (s *Spinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

func (s *Spinner) setMessage(format string, args ...any) {
	s.mu.Lock()
	s.message = fmt.Sprintf(format, args...)
	s.mu.Unlock()
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = max(s.width, len([]rune(s.message))+2)
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
	}
}

// OnLoadStart implements observability.PipelineHooks.
func (s *Spinner) OnLoadStart(_ context.Context, source string) {
	s.setMessage("Reading %s...", filepath.Base(source))
}

// OnLayoutStart implements observability.PipelineHooks.
func (s *Spinner) OnLayoutStart(_ context.Context, kind string, points int) {
	s.setMessage("Laying out %s chart (%d points)...", kind, points)
}

// OnRenderStart implements observability.PipelineHooks.
func (s *Spinner) OnRenderStart(_ context.Context, formats []string) {
	s.setMessage("Rendering %s...", strings.Join(formats, ", "))
}
