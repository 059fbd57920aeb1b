package nanopipe

import (
	"strings"
)

// StripScheme removes the transport scheme from addr.
func StripScheme(t Transport, addr string) (string, error) {
	s := t.Scheme() + "://"
	if !strings.HasPrefix(addr, s) {
		return addr, ErrBadTran
	}
	return addr[len(s):], nil
}

// combineHWM returns the capacity of a pipe between a side with high
// water mark a and a side with b: the smaller one, where zero means
// unbounded.
func combineHWM(a, b int) int {
	switch {
	case a <= 0:
		return max(b, 0)
	case b <= 0:
		return a
	}
	return min(a, b)
}
