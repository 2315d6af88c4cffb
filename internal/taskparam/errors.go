package taskparam

import "fmt"

// UnrecognizedPrefixError is returned by Create when a message prefix has no
// registered parameter kind. It usually means the log producer emits a new
// message kind that this package does not know about yet.
type UnrecognizedPrefixError struct {
	Prefix string
}

func (e *UnrecognizedPrefixError) Error() string {
	return fmt.Sprintf("unrecognized task parameter prefix %q", e.Prefix)
}

// MalformedMessageError is returned when a message does not start with the
// prefix the caller asserted.
type MalformedMessageError struct {
	Prefix  string
	Message string
}

func (e *MalformedMessageError) Error() string {
	return fmt.Sprintf("message does not start with prefix %q: %q", e.Prefix, abbreviate(e.Message, 60))
}

// abbreviate shortens s to at most n runes for use in error messages.
func abbreviate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
