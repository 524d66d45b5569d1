package tree

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedPath marks a relative path that is empty or has an empty segment.
	ErrMalformedPath = errors.New("malformed path")
	// ErrStructuralConflict marks a path that needs a file to also be a folder, or the reverse.
	ErrStructuralConflict = errors.New("structural conflict")
	// ErrEmptyBatch is returned when a batch holds no insertable entry.
	ErrEmptyBatch = errors.New("no files")
)

const (
	errorEmptyPathFormat    = "%w: empty path"
	errorEmptySegmentFormat = "%w: %q has an empty segment at position %d"
)

// ParsePath splits a relative path on "/" into its non-empty segments.
// The last segment names the file; the preceding ones name its folder chain.
func ParsePath(relativePath string) ([]string, error) {
	if relativePath == "" {
		return nil, fmt.Errorf(errorEmptyPathFormat, ErrMalformedPath)
	}
	segments := strings.Split(relativePath, PathSeparator)
	for segmentPosition, segment := range segments {
		if segment == "" {
			return nil, fmt.Errorf(errorEmptySegmentFormat, ErrMalformedPath, relativePath, segmentPosition)
		}
	}
	return segments, nil
}

// JoinPath joins segments back into a relative path.
func JoinPath(segments []string) string {
	return strings.Join(segments, PathSeparator)
}
