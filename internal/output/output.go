// Package output renders the rebuilt tree, the flattened file list and single
// files as raw text, JSON or XML.
package output

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/temirov/uptree/internal/types"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	separatorLine = "----------------------------------------"
	xmlHeader     = xml.Header

	binaryContentOmitted = "(binary content omitted)"
	mimeTypeLabel        = "Mime Type: "
	binaryTreeFormat     = "%s[Binary] %s (%s%s)\n"
	fileTreeFormat       = "%s[File] %s%s\n"
	folderTreeFormat     = "%s%s\n"
	fileListFormat       = "%s [%s]%s\n"
	loadedFilesFormat    = "Successfully loaded %d %s"
	skippedEntriesFormat = " (%d skipped)"

	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	errorUnsupportedFormat = "unsupported format %q"
)

// treeDocument wraps a forest so XML output has a single root element.
type treeDocument struct {
	XMLName xml.Name                `json:"-" xml:"tree"`
	Project string                  `json:"project" xml:"project,attr"`
	Summary *types.OutputSummary    `json:"summary,omitempty" xml:"summary,omitempty"`
	Nodes   []*types.TreeOutputNode `json:"nodes" xml:"node"`
}

type filesDocument struct {
	XMLName xml.Name             `json:"-" xml:"files"`
	Project string               `json:"project" xml:"project,attr"`
	Summary *types.OutputSummary `json:"summary,omitempty" xml:"summary,omitempty"`
	Files   []types.FileOutput   `json:"files" xml:"file"`
}

// WriteTree renders the forest of one project in the requested format. A nil
// summary omits the summary lines.
func WriteTree(writer io.Writer, format string, projectName string, nodes []*types.TreeOutputNode, summary *types.OutputSummary) error {
	switch format {
	case types.FormatRaw, "":
		if summary != nil {
			fmt.Fprintln(writer, FormatSummaryLine(summary))
			fmt.Fprintln(writer)
		}
		for _, node := range nodes {
			WriteTreeRaw(writer, node, summary != nil)
		}
		if summary != nil {
			fmt.Fprintln(writer, FormatLoadedLine(summary))
		}
		return nil
	case types.FormatJSON:
		return writeJSON(writer, treeDocument{Project: projectName, Summary: summary, Nodes: nodes})
	case types.FormatXML:
		return writeXML(writer, treeDocument{Project: projectName, Summary: summary, Nodes: nodes})
	default:
		return fmt.Errorf(errorUnsupportedFormat, format)
	}
}

// WriteFiles renders the flattened file list. Raw output prints one path per
// line with its state and ends with the loaded-files line.
func WriteFiles(writer io.Writer, format string, projectName string, files []types.FileOutput, summary *types.OutputSummary) error {
	switch format {
	case types.FormatRaw, "":
		for _, file := range files {
			WriteFileLine(writer, file)
		}
		if summary != nil {
			fmt.Fprintln(writer, FormatLoadedLine(summary))
		}
		return nil
	case types.FormatJSON:
		return writeJSON(writer, filesDocument{Project: projectName, Summary: summary, Files: files})
	case types.FormatXML:
		return writeXML(writer, filesDocument{Project: projectName, Summary: summary, Files: files})
	default:
		return fmt.Errorf(errorUnsupportedFormat, format)
	}
}

// WriteFileLine prints one flattened file as "path [state]".
func WriteFileLine(writer io.Writer, file types.FileOutput) {
	suffix := ""
	if file.Tokens > 0 {
		suffix = fmt.Sprintf(" (%d tokens)", file.Tokens)
	}
	if file.Error != "" {
		suffix = ": " + file.Error
	}
	fmt.Fprintf(writer, fileListFormat, file.Path, file.State, suffix)
}

// WriteTreeRaw renders one tree node and its descendants with box-drawing connectors.
func WriteTreeRaw(writer io.Writer, node *types.TreeOutputNode, includeSummary bool) {
	if node == nil {
		return
	}
	renderTreeNode(writer, node, "", includeSummary, true, true)
}

func treeNodeLinePrefix(prefix string, isRoot bool, isLast bool) (string, string) {
	if isRoot {
		return "", ""
	}
	connector := treeBranchConnector
	childPrefix := prefix + treeBranchPadding
	if isLast {
		connector = treeLastConnector
		childPrefix = prefix + treeLastPadding
	}
	return prefix + connector, childPrefix
}

func renderTreeNode(writer io.Writer, node *types.TreeOutputNode, prefix string, includeSummary bool, isRoot bool, isLast bool) {
	linePrefix, childPrefix := treeNodeLinePrefix(prefix, isRoot, isLast)
	switch node.Type {
	case types.NodeTypeFile:
		fmt.Fprintf(writer, fileTreeFormat, linePrefix, node.Path, fileAnnotation(node))
		return
	case types.NodeTypeBinary:
		fmt.Fprintf(writer, binaryTreeFormat, linePrefix, node.Path, mimeTypeLabel, node.MimeType)
		return
	}
	fmt.Fprintf(writer, folderTreeFormat, linePrefix, node.Path)
	if includeSummary {
		summaryLine := FormatSummaryLine(&types.OutputSummary{
			TotalFiles:  node.TotalFiles,
			TotalSize:   node.TotalSize,
			TotalTokens: node.TotalTokens,
		})
		fmt.Fprintf(writer, "%s%s\n", childPrefix, summaryLine)
	}
	for index, child := range node.Children {
		if child == nil {
			continue
		}
		renderTreeNode(writer, child, childPrefix, includeSummary, false, index == len(node.Children)-1)
	}
}

func fileAnnotation(node *types.TreeOutputNode) string {
	switch {
	case node.Tokens > 0:
		return fmt.Sprintf(" (%d tokens)", node.Tokens)
	case node.State != "" && node.State != "loaded":
		return " (" + node.State + ")"
	default:
		return ""
	}
}

// WriteFileRaw renders a single file output to the provided writer.
func WriteFileRaw(writer io.Writer, file types.FileOutput) {
	fmt.Fprintf(writer, "File: %s\n", file.Path)
	if file.Type == types.NodeTypeBinary {
		fmt.Fprintf(writer, "%s%s\n", mimeTypeLabel, file.MimeType)
		if file.Content == "" {
			fmt.Fprintln(writer, binaryContentOmitted)
		} else {
			fmt.Fprintln(writer, file.Content)
		}
	} else {
		fmt.Fprintln(writer, file.Content)
	}
	fmt.Fprintf(writer, "End of file: %s\n", file.Path)
	fmt.Fprintln(writer, separatorLine)
}

// FormatSummaryLine formats an OutputSummary into the raw summary line.
func FormatSummaryLine(summary *types.OutputSummary) string {
	if summary == nil {
		summary = &types.OutputSummary{}
	}
	extra := ""
	if summary.TotalTokens > 0 {
		extra = fmt.Sprintf(", %d tokens", summary.TotalTokens)
	}
	modelSuffix := ""
	if summary.Model != "" {
		modelSuffix = fmt.Sprintf(" (model: %s)", summary.Model)
	}
	return fmt.Sprintf("Summary: %d %s, %s%s%s", summary.TotalFiles, fileLabel(summary.TotalFiles), summary.TotalSize, extra, modelSuffix)
}

// FormatLoadedLine reports how many files a batch produced and how many entries it skipped.
func FormatLoadedLine(summary *types.OutputSummary) string {
	line := fmt.Sprintf(loadedFilesFormat, summary.TotalFiles, fileLabel(summary.TotalFiles))
	if summary.Skipped > 0 {
		line += fmt.Sprintf(skippedEntriesFormat, summary.Skipped)
	}
	return line
}

func fileLabel(count int) string {
	if count == 1 {
		return "file"
	}
	return "files"
}

func writeJSON(writer io.Writer, document any) error {
	encoded, jsonEncodeError := json.MarshalIndent(document, indentPrefix, indentSpacer)
	if jsonEncodeError != nil {
		return jsonEncodeError
	}
	_, writeError := fmt.Fprintln(writer, string(encoded))
	return writeError
}

func writeXML(writer io.Writer, document any) error {
	encoded, xmlMarshalError := xml.MarshalIndent(document, indentPrefix, indentSpacer)
	if xmlMarshalError != nil {
		return xmlMarshalError
	}
	_, writeError := fmt.Fprintln(writer, xmlHeader+string(encoded))
	return writeError
}
