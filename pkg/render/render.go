// Package render turns raw keys and values into printable text.
package render

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Format selects how bytes are shown.
type Format string

const (
	// Raw prints the bytes as text without escaping.
	Raw Format = "raw"
	// Hex prints lowercase hex.
	Hex Format = "hex"
	// Auto prints printable ASCII as text and anything else as hex.
	Auto Format = "auto"
)

// Parse validates a format name. The empty string means Raw.
func Parse(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return Raw, nil
	case Raw, Hex, Auto:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want raw, hex or auto)", s)
	}
}

// Bytes renders b in format f.
func (f Format) Bytes(b []byte) string {
	switch f {
	case Hex:
		return hex.EncodeToString(b)
	case Auto:
		if Printable(b) {
			return string(b)
		}
		return hex.EncodeToString(b)
	default:
		return string(b)
	}
}

// Printable reports whether every byte of b is printable ASCII.
func Printable(b []byte) bool {
	for _, c := range b {
		if c < 32 || c > 126 {
			return false
		}
	}
	return true
}

// ParseInput decodes a 0x-prefixed hex argument and returns anything else as is.
func ParseInput(s string) []byte {
	if strings.HasPrefix(s, "0x") {
		if decoded, err := hex.DecodeString(s[2:]); err == nil {
			return decoded
		}
	}
	return []byte(s)
}
