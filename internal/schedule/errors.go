package schedule

import "errors"

// Request-level failures. The transport layer maps these onto HTTP
// statuses with errors.Is; none of them are fatal to the process.
var (
	ErrMissingRange      = errors.New("missing datetime range")
	ErrInvalidDate       = errors.New("invalid datetime or duration")
	ErrNotFound          = errors.New("event not found")
	ErrInvalidScope      = errors.New("scope is only valid for recurring events")
	ErrInvalidRecurrence = errors.New("total occurrences must be a positive integer for a recurring series")
	ErrUnknownScope      = errors.New("unknown scope")
)

// Scope is the breadth of a mutation.
type Scope string

const (
	ScopeSingle Scope = "single"
	ScopeFuture Scope = "future"
	ScopeAll    Scope = "all"
)

// ParseScope maps a wire value to a Scope. Empty means single.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "":
		return ScopeSingle, nil
	case ScopeSingle, ScopeFuture, ScopeAll:
		return Scope(s), nil
	}
	return "", ErrUnknownScope
}
