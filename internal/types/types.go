// Package types defines the output structures shared by the renderers and the CLI.
package types

import "encoding/xml"

const (
	NodeTypeFile   = "file"
	NodeTypeFolder = "folder"
	NodeTypeBinary = "binary"

	CommandTree   = "tree"
	CommandFiles  = "files"
	CommandShow   = "show"
	CommandReview = "review"

	FormatRaw  = "raw"
	FormatJSON = "json"
	FormatXML  = "xml"
)

// FileOutput represents one flattened file.
type FileOutput struct {
	XMLName   xml.Name `json:"-" xml:"file"`
	Path      string   `json:"path" xml:"path"`
	Type      string   `json:"type" xml:"type"`
	State     string   `json:"state" xml:"state"`
	Content   string   `json:"content,omitempty" xml:"content,omitempty"`
	Encoding  string   `json:"encoding,omitempty" xml:"encoding,omitempty"`
	Size      string   `json:"size,omitempty" xml:"size,omitempty"`
	SizeBytes int64    `json:"-" xml:"-"`
	MimeType  string   `json:"mimeType,omitempty" xml:"mimeType,omitempty"`
	Tokens    int      `json:"tokens,omitempty" xml:"tokens,omitempty"`
	Model     string   `json:"model,omitempty" xml:"model,omitempty"`
	Error     string   `json:"error,omitempty" xml:"error,omitempty"`
}

// TreeOutputNode represents one node of the rebuilt tree.
type TreeOutputNode struct {
	XMLName     xml.Name          `json:"-" xml:"node"`
	Path        string            `json:"path" xml:"path"`
	Name        string            `json:"name" xml:"name"`
	Type        string            `json:"type" xml:"type"`
	State       string            `json:"state,omitempty" xml:"state,omitempty"`
	Size        string            `json:"size,omitempty" xml:"size,omitempty"`
	SizeBytes   int64             `json:"-" xml:"-"`
	MimeType    string            `json:"mimeType,omitempty" xml:"mimeType,omitempty"`
	Tokens      int               `json:"tokens,omitempty" xml:"tokens,omitempty"`
	Model       string            `json:"model,omitempty" xml:"model,omitempty"`
	Children    []*TreeOutputNode `json:"children,omitempty" xml:"children>node,omitempty"`
	TotalFiles  int               `json:"totalFiles,omitempty" xml:"totalFiles,omitempty"`
	TotalSize   string            `json:"totalSize,omitempty" xml:"totalSize,omitempty"`
	TotalTokens int               `json:"totalTokens,omitempty" xml:"totalTokens,omitempty"`
}

// OutputSummary captures aggregate information about rendered files.
type OutputSummary struct {
	TotalFiles  int    `json:"totalFiles" xml:"totalFiles"`
	TotalSize   string `json:"totalSize" xml:"totalSize"`
	TotalTokens int    `json:"totalTokens,omitempty" xml:"totalTokens,omitempty"`
	Model       string `json:"model,omitempty" xml:"model,omitempty"`
	Skipped     int    `json:"skipped,omitempty" xml:"skipped,omitempty"`
}
