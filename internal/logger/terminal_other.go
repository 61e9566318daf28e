//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package logger

// isTerminal disables color where terminal detection is not implemented.
func isTerminal(_ uintptr) bool {
	return false
}
