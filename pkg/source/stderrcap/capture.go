package stderrcap

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// stderrFd is the file descriptor being captured.
const stderrFd = 2

// drainTimeout bounds the wait for the drain goroutine during teardown.
// The goroutine exits as soon as the pipe write end is closed; the timeout
// only matters if the pipe read end is wedged.
const drainTimeout = 2 * time.Second

// Capture represents one active redirection of fd 2 into a buffer.
type Capture struct {
	// orig is a duplicate of the original fd 2, used to restore it.
	orig int

	// r and w are the pipe installed in place of fd 2.
	r *os.File
	w *os.File

	// buf receives everything written to fd 2 while the capture is active.
	// mu guards it: the drain goroutine may still be appending when Stop
	// gives up waiting on a wedged pipe.
	mu  sync.Mutex
	buf bytes.Buffer

	// done is closed when the drain goroutine has finished copying.
	done chan struct{}
}

// Start redirects fd 2 into a pipe and begins draining it in the background.
// The caller must call Stop on every exit path to restore the descriptor.
func Start() (*Capture, error) {
	orig, err := unix.Dup(stderrFd)
	if err != nil {
		return nil, fmt.Errorf("failed to duplicate stderr: %w", err)
	}

	r, w, err := os.Pipe()
	if err != nil {
		unix.Close(orig)
		return nil, fmt.Errorf("failed to create capture pipe: %w", err)
	}

	if err := dup2(int(w.Fd()), stderrFd); err != nil {
		unix.Close(orig)
		r.Close()
		w.Close()
		return nil, fmt.Errorf("failed to redirect stderr: %w", err)
	}

	c := &Capture{
		orig: orig,
		r:    r,
		w:    w,
		done: make(chan struct{}),
	}
	go c.drain()

	return c, nil
}

// Stop restores the original fd 2, joins the drain goroutine with a bounded
// wait, and returns the captured bytes decoded permissively (invalid UTF-8
// sequences are replaced). Stop is safe to call exactly once.
func (c *Capture) Stop() string {
	// Restore the descriptor first so nothing written after this point is
	// lost in the capture buffer.
	_ = dup2(c.orig, stderrFd)
	unix.Close(c.orig)

	// Closing the write end delivers EOF to the drain goroutine.
	c.w.Close()

	select {
	case <-c.done:
	case <-time.After(drainTimeout):
	}

	c.mu.Lock()
	out := c.buf.String()
	c.mu.Unlock()
	return strings.ToValidUTF8(out, "�")
}

// drain copies the pipe into the buffer until the write end is closed.
func (c *Capture) drain() {
	defer close(c.done)
	chunk := make([]byte, 4096)
	for {
		n, err := c.r.Read(chunk)
		if n > 0 {
			c.mu.Lock()
			c.buf.Write(chunk[:n])
			c.mu.Unlock()
		}
		if err != nil {
			break
		}
	}
	c.r.Close()
}
