package helpers

import (
	mathrand "math/rand"
	"time"
)

// Jitter returns base plus a uniform random extra in [0, base] milliseconds
func Jitter(baseMs int) time.Duration {
	if baseMs <= 0 {
		return 0
	}
	return time.Duration(baseMs+mathrand.Intn(baseMs+1)) * time.Millisecond
}

// Truncate shortens s to at most n runes for log lines
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
