// Package review assembles code for review and forwards it to an inference
// endpoint. The endpoint's answer is returned as opaque text.
package review

import (
	"encoding/json"
	"fmt"

	"github.com/temirov/uptree/internal/tree"
)

const (
	promptCodeHeader    = "Here is some code:\n\n"
	promptMessageHeader = "\n\nUser message:\n"

	payloadIndent = "  "

	errorEncodePayloadFormat = "encode project payload: %w"
)

// FilePayload is one flattened file as it appears in a project payload.
type FilePayload struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Type    string `json:"type"`
	State   string `json:"state"`
	Content string `json:"content,omitempty"`
}

// ProjectPayload serializes files, in the order given, as an indented JSON
// array. Files without text content keep their entry with an empty content.
func ProjectPayload(files []*tree.Node) (string, error) {
	payload := make([]FilePayload, 0, len(files))
	for _, fileNode := range files {
		content := fileNode.Content()
		entry := FilePayload{
			Name:  fileNode.Name,
			Path:  fileNode.Path,
			Type:  string(fileNode.Kind),
			State: string(content.State),
		}
		if content.State == tree.ContentLoaded {
			entry.Content = content.Text
		}
		payload = append(payload, entry)
	}
	encoded, err := json.MarshalIndent(payload, "", payloadIndent)
	if err != nil {
		return "", fmt.Errorf(errorEncodePayloadFormat, err)
	}
	return string(encoded), nil
}

// Prompt wraps code and an optional user message into the review prompt.
func Prompt(code, message string) string {
	return promptCodeHeader + code + promptMessageHeader + message
}
