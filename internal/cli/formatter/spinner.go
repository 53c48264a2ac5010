package formatter

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// Spinner animates a one-line "thinking" indicator on w for line-mode
// output, reusing the frames of the full-screen chat spinner.
type Spinner struct {
	once    sync.Once
	w       io.Writer
	message string
	frames  spinner.Spinner
	stop    chan struct{}
	done    chan struct{}
}

func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:       w,
		message: message,
		frames:  spinner.Dot,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start begins the animation in its own goroutine.
func (s *Spinner) Start() {
	go s.run()
}

func (s *Spinner) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.frames.FPS)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.stop:
			fmt.Fprint(s.w, "\r\033[K")
			return
		case <-ticker.C:
			frame := s.frames.Frames[i%len(s.frames.Frames)]
			fmt.Fprintf(s.w, "\r  %s %s", StylePurple.Render(frame), Dim(s.message))
		}
	}
}

// Stop ends the animation, clears the line and waits for the goroutine.
// Calling it again is a no-op.
func (s *Spinner) Stop() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
}

// StartSpinner starts a spinner on w and returns its Stop.
func StartSpinner(w io.Writer, message string) func() {
	s := NewSpinner(w, message)
	s.Start()
	return s.Stop
}
