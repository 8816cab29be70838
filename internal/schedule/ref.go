package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// refDelim separates the series id prefix from the timestamp suffix in a
// composite reference. The uuid itself contains dashes, so the delimiter
// must not be one.
const refDelim = ":"

// uuidLen is the textual length of a series id.
const uuidLen = 36

// Ref identifies an occurrence: either a persisted row by integer id, or
// a virtual slot by (series id, timestamp).
type Ref struct {
	ID       int64
	SeriesID uuid.UUID
	At       time.Time
}

// Virtual reports whether the reference names a (series, timestamp) slot.
func (r Ref) Virtual() bool { return r.SeriesID != uuid.Nil }

// String renders the wire form: the row id, or the composite key.
func (r Ref) String() string {
	if r.Virtual() {
		return EncodeRef(r.SeriesID, r.At)
	}
	return strconv.FormatInt(r.ID, 10)
}

// EncodeRef builds the composite key for a virtual occurrence.
// ParseRef is its exact inverse.
func EncodeRef(seriesID uuid.UUID, at time.Time) string {
	return seriesID.String() + refDelim + at.UTC().Format(time.RFC3339)
}

// ParseRef parses a wire reference: a plain integer for a persisted row,
// or "<series-uuid>:<RFC 3339 timestamp>" for a virtual slot.
func ParseRef(s string) (Ref, error) {
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Ref{ID: id}, nil
	}
	if len(s) <= uuidLen || !strings.HasPrefix(s[uuidLen:], refDelim) {
		return Ref{}, fmt.Errorf("%w: malformed reference %q", ErrNotFound, s)
	}
	seriesID, err := uuid.Parse(s[:uuidLen])
	if err != nil {
		return Ref{}, fmt.Errorf("%w: malformed series id in %q", ErrNotFound, s)
	}
	at, err := time.Parse(time.RFC3339, s[uuidLen+len(refDelim):])
	if err != nil {
		return Ref{}, fmt.Errorf("%w: bad timestamp in reference %q", ErrInvalidDate, s)
	}
	return Ref{SeriesID: seriesID, At: at}, nil
}
