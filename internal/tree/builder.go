package tree

import (
	"errors"
	"fmt"
)

const (
	errorFileAsFolderFormat = "%w: %s needs %s to be a folder but it is a file"
	errorFolderAsFileFormat = "%w: %s is already a folder"
)

// Forest is the top-level ordered sequence of nodes built from one batch.
type Forest struct {
	root *Node
}

// NewForest returns an empty forest.
func NewForest() *Forest {
	return &Forest{root: newFolder("", "")}
}

// Roots returns the top-level nodes in first-insertion order.
func (forest *Forest) Roots() []*Node {
	return forest.root.Children
}

// Files returns every file leaf in flatten order.
func (forest *Forest) Files() []*Node {
	return Flatten(forest.Roots())
}

// Insert folds one parsed path into the forest. Missing folders are appended
// at the end of their level, existing folders are descended into unchanged, and
// an existing file at the final segment is replaced in its original position.
// The returned flag reports whether a file was replaced.
func (forest *Forest) Insert(segments []string, handle Handle) (*Node, bool, error) {
	if len(segments) == 0 {
		return nil, false, fmt.Errorf(errorEmptyPathFormat, ErrMalformedPath)
	}
	fullPath := JoinPath(segments)
	for segmentPosition, segment := range segments {
		if segment == "" {
			return nil, false, fmt.Errorf(errorEmptySegmentFormat, ErrMalformedPath, fullPath, segmentPosition)
		}
	}

	lastPosition := len(segments) - 1
	currentFolder := forest.root
	for segmentPosition, segment := range segments[:lastPosition] {
		child := currentFolder.Child(segment)
		if child == nil {
			child = newFolder(segment, JoinPath(segments[:segmentPosition+1]))
			currentFolder.appendChild(child)
		} else if child.Kind == KindFile {
			return nil, false, fmt.Errorf(errorFileAsFolderFormat, ErrStructuralConflict, fullPath, child.Path)
		}
		currentFolder = child
	}

	fileNode := newFile(segments[lastPosition], fullPath, handle)
	existing := currentFolder.Child(fileNode.Name)
	if existing == nil {
		currentFolder.appendChild(fileNode)
		return fileNode, false, nil
	}
	if existing.Kind == KindFolder {
		return nil, false, fmt.Errorf(errorFolderAsFileFormat, ErrStructuralConflict, fullPath)
	}
	currentFolder.replaceChild(fileNode)
	return fileNode, true, nil
}

// Lookup resolves a relative path to the node it names.
func (forest *Forest) Lookup(relativePath string) (*Node, bool) {
	segments, parseError := ParsePath(relativePath)
	if parseError != nil {
		return nil, false
	}
	currentNode := forest.root
	for _, segment := range segments {
		currentNode = currentNode.Child(segment)
		if currentNode == nil {
			return nil, false
		}
	}
	return currentNode, true
}

// SkippedEntry records an entry Build left out of the forest.
type SkippedEntry struct {
	RelativePath string
	Err          error
}

// Report summarizes how a batch was folded into a forest.
type Report struct {
	Received    int
	Accepted    int
	Overwritten int
	Malformed   int
	Conflicts   int
	Skipped     []SkippedEntry
	// FirstAccepted is the relative path of the first entry that made it into the forest.
	FirstAccepted string
}

// Files returns the number of distinct file paths in the forest.
func (report Report) Files() int {
	return report.Accepted - report.Overwritten
}

// Build parses and inserts every entry in order. Malformed and conflicting
// entries are skipped and reported; the batch continues. A batch without a
// single accepted entry yields ErrEmptyBatch and no forest.
func Build(entries []Entry) (*Forest, Report, error) {
	forest := NewForest()
	report := Report{Received: len(entries)}
	for _, entry := range entries {
		segments, parseError := ParsePath(entry.RelativePath)
		if parseError != nil {
			report.Malformed++
			report.Skipped = append(report.Skipped, SkippedEntry{RelativePath: entry.RelativePath, Err: parseError})
			continue
		}
		_, replaced, insertError := forest.Insert(segments, entry.Handle)
		if insertError != nil {
			if errors.Is(insertError, ErrStructuralConflict) {
				report.Conflicts++
			} else {
				report.Malformed++
			}
			report.Skipped = append(report.Skipped, SkippedEntry{RelativePath: entry.RelativePath, Err: insertError})
			continue
		}
		if report.Accepted == 0 {
			report.FirstAccepted = entry.RelativePath
		}
		report.Accepted++
		if replaced {
			report.Overwritten++
		}
	}
	if report.Accepted == 0 {
		return nil, report, ErrEmptyBatch
	}
	return forest, report, nil
}
