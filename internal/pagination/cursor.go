// Package pagination implements opaque keyset cursors for document listing.
package pagination

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"
)

// ErrInvalidCursor is returned for cursors that fail to decode.
var ErrInvalidCursor = errors.New("invalid cursor format")

// Cursor points at the last item of the previous page. Listing resumes
// strictly after (Timestamp, LastID) in descending order.
type Cursor struct {
	LastID    string
	Timestamp time.Time
}

// EncodeCursor packs an id and timestamp into an opaque base64 token.
// An empty id yields an empty token (no next page).
func EncodeCursor(lastID string, timestamp time.Time) string {
	if lastID == "" {
		return ""
	}
	raw := lastID + "|" + timestamp.UTC().Format(time.RFC3339Nano)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor unpacks a token produced by EncodeCursor. An empty token
// decodes to a nil cursor, meaning the first page.
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}

	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	id, ts, found := strings.Cut(string(raw), "|")
	if !found {
		return nil, ErrInvalidCursor
	}

	timestamp, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	return &Cursor{LastID: id, Timestamp: timestamp}, nil
}
