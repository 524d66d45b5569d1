package output

import (
	"github.com/temirov/uptree/internal/tree"
	"github.com/temirov/uptree/internal/types"
	"github.com/temirov/uptree/internal/utils"
)

// TreeNodes converts a forest into output nodes, keeping child order. With
// includeSummary every folder carries the totals of the files beneath it.
func TreeNodes(roots []*tree.Node, includeSummary bool) []*types.TreeOutputNode {
	var outputRoots []*types.TreeOutputNode
	var ancestors []*types.TreeOutputNode
	var folders []*types.TreeOutputNode

	_ = tree.Walk(roots, func(node *tree.Node, depth int) error {
		ancestors = ancestors[:depth]
		outputNode := treeOutputNode(node)
		if depth == 0 {
			outputRoots = append(outputRoots, outputNode)
		} else {
			parent := ancestors[depth-1]
			parent.Children = append(parent.Children, outputNode)
		}
		if node.IsFolder() {
			ancestors = append(ancestors, outputNode)
			folders = append(folders, outputNode)
			return nil
		}
		if includeSummary {
			for _, ancestor := range ancestors {
				ancestor.TotalFiles++
				ancestor.SizeBytes += outputNode.SizeBytes
				ancestor.TotalTokens += outputNode.Tokens
			}
		}
		return nil
	})

	if includeSummary {
		for _, folder := range folders {
			folder.TotalSize = utils.FormatFileSize(folder.SizeBytes)
		}
	}
	return outputRoots
}

func treeOutputNode(node *tree.Node) *types.TreeOutputNode {
	if node.IsFolder() {
		return &types.TreeOutputNode{Path: node.Path, Name: node.Name, Type: types.NodeTypeFolder}
	}
	content := node.Content()
	return &types.TreeOutputNode{
		Path:      node.Path,
		Name:      node.Name,
		Type:      fileType(content),
		State:     string(content.State),
		Size:      utils.FormatFileSize(node.SizeBytes),
		SizeBytes: node.SizeBytes,
		MimeType:  content.MimeType,
		Tokens:    content.Tokens,
		Model:     content.Model,
	}
}

// FileOutputs converts flattened file nodes, in order. Content is copied only
// when includeContent is set.
func FileOutputs(files []*tree.Node, includeContent bool) []types.FileOutput {
	outputs := make([]types.FileOutput, 0, len(files))
	for _, fileNode := range files {
		outputs = append(outputs, FileOutput(fileNode, includeContent))
	}
	return outputs
}

// FileOutput converts one file node.
func FileOutput(fileNode *tree.Node, includeContent bool) types.FileOutput {
	content := fileNode.Content()
	fileOutput := types.FileOutput{
		Path:      fileNode.Path,
		Type:      fileType(content),
		State:     string(content.State),
		Size:      utils.FormatFileSize(fileNode.SizeBytes),
		SizeBytes: fileNode.SizeBytes,
		MimeType:  content.MimeType,
		Tokens:    content.Tokens,
		Model:     content.Model,
	}
	if includeContent {
		fileOutput.Content = content.Text
		fileOutput.Encoding = content.Encoding
	}
	if content.Err != nil {
		fileOutput.Error = content.Err.Error()
	}
	return fileOutput
}

// Summary aggregates file outputs into totals.
func Summary(files []types.FileOutput, skipped int) *types.OutputSummary {
	var totalBytes int64
	summary := &types.OutputSummary{TotalFiles: len(files), Skipped: skipped}
	for _, file := range files {
		totalBytes += file.SizeBytes
		summary.TotalTokens += file.Tokens
		if summary.Model == "" && file.Model != "" {
			summary.Model = file.Model
		}
	}
	summary.TotalSize = utils.FormatFileSize(totalBytes)
	return summary
}

func fileType(content tree.Content) string {
	if content.State == tree.ContentBinary {
		return types.NodeTypeBinary
	}
	return types.NodeTypeFile
}
