package utils

import (
	"net/http"
)

// sniffLen is the number of leading bytes http.DetectContentType considers.
const sniffLen = 512

// DetectMimeType returns the MIME type of the provided content.
// Empty content yields UnknownMimeType.
func DetectMimeType(data []byte) string {
	if len(data) == 0 {
		return UnknownMimeType
	}
	if len(data) > sniffLen {
		data = data[:sniffLen]
	}
	return http.DetectContentType(data)
}
