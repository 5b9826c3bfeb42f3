package stages

import (
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/time/rate"

	"github.com/fogfactory/linepipe"
)

// Uppercase converts every letter to upper case.
func Uppercase(s string) string {
	return strings.ToUpper(s)
}

// chars splits s into UTF-8 sequences. Invalid bytes are kept as they are, one per element.
func chars(s string) []string {
	return strings.Split(s, "")
}

// Flip reverses the order of characters.
func Flip(s string) string {
	return strings.Join(lo.Reverse(chars(s)), "")
}

// Rotate moves every character one position to the right. The last character moves to the beginning.
func Rotate(s string) string {
	cs := chars(s)
	if len(cs) < 2 {
		return s
	}
	return cs[len(cs)-1] + strings.Join(cs[:len(cs)-1], "")
}

// Expand inserts a single space between characters.
func Expand(s string) string {
	return strings.Join(chars(s), " ")
}

// Log prints every line on c and forwards it unchanged.
func Log(c *Console) linepipe.Transform {
	return func(s string) string {
		c.Println("[logger] " + s)
		return s
	}
}

// Typewrite prints every line on c one character at a time, at most one character per delay, and forwards it
// unchanged. A zero delay prints at once.
func Typewrite(c *Console, delay time.Duration) linepipe.Transform {
	limiter := rate.NewLimiter(rate.Every(delay), 1)
	return func(s string) string {
		c.Type("[typewriter] ", s, limiter)
		return s
	}
}
