package threadlog

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// Cursors are opaque to callers. Internally they carry the seq of the last
// raw entry a previous page consumed.

func EncodeCursor(seq int64) string {
	return base64.RawURLEncoding.EncodeToString([]byte("seq:" + strconv.FormatInt(seq, 10)))
}

// DecodeCursor parses a cursor produced by EncodeCursor. An empty cursor
// means "start of log" and decodes to 0.
func DecodeCursor(cursor string) (int64, error) {
	if cursor == "" {
		return 0, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("malformed cursor: %w", err)
	}
	value, ok := strings.CutPrefix(string(raw), "seq:")
	if !ok {
		return 0, fmt.Errorf("malformed cursor: missing prefix")
	}
	seq, err := strconv.ParseInt(value, 10, 64)
	if err != nil || seq < 0 {
		return 0, fmt.Errorf("malformed cursor: bad sequence %q", value)
	}
	return seq, nil
}
