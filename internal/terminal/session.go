// Package terminal owns the raw-mode terminal used by the plain dashboard
// loop: a non-blocking view of pending input bytes and full-frame output.
package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ErrNotTerminal is returned by Open when stdin is not a TTY
var ErrNotTerminal = errors.New("stdin is not a terminal")

const readChunk = 256

// Session is a terminal in raw mode. A background reader copies stdin into
// an internal buffer; Drain hands the accumulated bytes to the caller
// without ever blocking. Close restores the original terminal state and is
// safe to call more than once.
type Session struct {
	out    io.Writer
	output *termenv.Output
	fd     int
	state  *term.State

	mu      sync.Mutex
	pending []byte
	readErr error

	closeOnce sync.Once
	closeErr  error
}

// Open switches in to raw mode and out to the alternate screen
func Open(in, out *os.File) (*Session, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNotTerminal
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to enter raw mode: %w", err)
	}

	s := newSession(in, out)
	s.fd = fd
	s.state = state

	s.output.AltScreen()
	s.output.HideCursor()
	s.output.ClearScreen()
	return s, nil
}

// newSession starts the reader without touching terminal modes
func newSession(in io.Reader, out io.Writer) *Session {
	s := &Session{
		out:    out,
		output: termenv.NewOutput(out),
		fd:     -1,
	}
	go s.readLoop(in)
	return s
}

// readLoop blocks on the input; it exits on the first read error, which for
// a TTY only happens when the process is shutting down.
func (s *Session) readLoop(in io.Reader) {
	buf := make([]byte, readChunk)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			s.mu.Lock()
			s.pending = append(s.pending, buf[:n]...)
			s.mu.Unlock()
		}
		if err != nil {
			s.mu.Lock()
			s.readErr = err
			s.mu.Unlock()
			return
		}
	}
}

// Drain returns every byte received since the previous call, or nil
func (s *Session) Drain() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return nil
	}
	burst := s.pending
	s.pending = nil
	return burst
}

// Err reports why the input reader stopped, if it has
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if errors.Is(s.readErr, io.EOF) {
		return nil
	}
	return s.readErr
}

// Size returns the terminal width and height
func (s *Session) Size() (int, int, error) {
	if s.fd < 0 {
		return 0, 0, ErrNotTerminal
	}
	return term.GetSize(s.fd)
}

// Render draws frame from the top-left corner. Each line is cleared to its
// end and rows below the frame are blanked up to height.
func (s *Session) Render(frame string, height int) error {
	s.output.MoveCursor(1, 1)

	lines := strings.Split(strings.TrimSuffix(frame, "\n"), "\n")
	var b strings.Builder
	for i, line := range lines {
		if height > 0 && i >= height {
			break
		}
		if i > 0 {
			// raw mode: no implicit carriage return
			b.WriteString("\r\n")
		}
		b.WriteString(line)
		b.WriteString(termenv.CSI + termenv.EraseLineRightSeq)
	}
	for i := len(lines); i < height; i++ {
		b.WriteString("\r\n")
		b.WriteString(termenv.CSI + termenv.EraseEntireLineSeq)
	}

	_, err := io.WriteString(s.out, b.String())
	return err
}

// Close leaves the alternate screen and restores the terminal mode
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.output.ShowCursor()
		s.output.ExitAltScreen()
		if s.state != nil {
			s.closeErr = term.Restore(s.fd, s.state)
		}
	})
	return s.closeErr
}
