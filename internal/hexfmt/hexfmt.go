// Package hexfmt parses and renders the hex byte strings used on the command
// line and in the watch view.
package hexfmt

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrEmpty is returned by Parse for input with no hex digits
var ErrEmpty = errors.New("empty input")

// Parse converts hex text to bytes. It accepts space separated or continuous
// digits and an optional 0x prefix on each byte group:
//
//	"48 65 6C 6C 6F", "48656c6c6f", "0x48 0x65"
func Parse(s string) ([]byte, error) {
	var clean strings.Builder
	for _, field := range strings.Fields(s) {
		field = strings.TrimPrefix(strings.TrimPrefix(field, "0x"), "0X")
		clean.WriteString(field)
	}
	if clean.Len() == 0 {
		return nil, ErrEmpty
	}
	if clean.Len()%2 != 0 {
		return nil, fmt.Errorf("hex string must have even number of digits (got %d)", clean.Len())
	}

	b, err := hex.DecodeString(clean.String())
	if err != nil {
		var invalid hex.InvalidByteError
		if errors.As(err, &invalid) {
			return nil, fmt.Errorf("invalid hex character '%c'", rune(invalid))
		}
		return nil, err
	}
	return b, nil
}

// Dump renders b as space separated upper-case hex
func Dump(b []byte) string {
	return fmt.Sprintf("% X", b)
}

// ASCII renders printable bytes as-is and everything else as '.'
func ASCII(b []byte) string {
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 32 && c <= 126 {
			out[i] = c
		} else {
			out[i] = '.'
		}
	}
	return string(out)
}
