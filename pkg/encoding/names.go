// Package encoding provides text helpers for names stored in DNA files.
//
// DNA names are raw byte strings. Files written by current tools carry UTF-8,
// but rigs exported by older Windows tooling may carry Windows-1252 names.
package encoding

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Unnamed is shown in place of an empty name.
const Unnamed = "(unnamed)"

// ToUTF8 returns data as a UTF-8 string. Valid UTF-8 is returned unchanged;
// anything else is decoded as Windows-1252.
func ToUTF8(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	result, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		// Return as-is if decoding fails
		return string(data)
	}
	return string(result)
}

// FromUTF8 encodes s as Windows-1252 for tools that expect legacy names.
// Returns the original bytes if s has characters outside the code page.
func FromUTF8(s string) []byte {
	result, _, err := transform.Bytes(charmap.Windows1252.NewEncoder(), []byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}

// TrimNullBytes removes trailing null bytes left by fixed-width exporters.
func TrimNullBytes(data []byte) []byte {
	return bytes.TrimRight(data, "\x00")
}

// DisplayName prepares a stored name for terminal output.
func DisplayName(name string) string {
	s := ToUTF8(TrimNullBytes([]byte(name)))
	if s == "" {
		return Unnamed
	}
	return s
}
