package stages

import (
	"io"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Console serializes the output of every stage sharing it, one line at a time.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole wraps w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Println writes line followed by a newline.
func (c *Console) Println(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = io.WriteString(c.w, line+"\n")
}

// Type writes prefix, then text one character at a time as limiter allows, then a newline. No other line is
// written in between.
func (c *Console) Type(prefix, text string, limiter *rate.Limiter) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, _ = io.WriteString(c.w, prefix)
	for _, r := range text {
		time.Sleep(limiter.Reserve().Delay())
		_, _ = io.WriteString(c.w, string(r))
	}
	_, _ = io.WriteString(c.w, "\n")
}
