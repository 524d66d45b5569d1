package utils

import (
	"bytes"
	"unicode/utf8"
)

// sniffLength defines the maximum number of bytes inspected when detecting binary content.
const sniffLength = 8000

// IsBinary reports whether the provided byte slice appears to contain binary data.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	sample := data
	if len(sample) > sniffLength {
		sample = sample[:sniffLength]
	}
	if bytes.IndexByte(sample, 0) >= 0 {
		return true
	}
	return !utf8.Valid(trimPartialRune(sample, len(data) > sniffLength))
}

// trimPartialRune drops a multi-byte rune cut in half by the sniff window.
func trimPartialRune(sample []byte, truncated bool) []byte {
	if !truncated {
		return sample
	}
	for trimmed := 0; trimmed < utf8.UTFMax && len(sample) > 0; trimmed++ {
		if utf8.Valid(sample) {
			return sample
		}
		sample = sample[:len(sample)-1]
	}
	return sample
}
