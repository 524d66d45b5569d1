// Package tree rebuilds the folder hierarchy implied by a flat batch of
// slash-delimited relative paths.
package tree

import (
	"context"
	"io"
	"sync/atomic"
)

// Kind tags the two shapes a Node can take.
type Kind string

const (
	KindFolder Kind = "folder"
	KindFile   Kind = "file"
)

// ContentState describes how far the content of a file node has been resolved.
type ContentState string

const (
	ContentPending  ContentState = "pending"
	ContentLoaded   ContentState = "loaded"
	ContentBinary   ContentState = "binary"
	ContentTooLarge ContentState = "too_large"
	ContentFailed   ContentState = "failed"
)

// PathSeparator delimits segments of a relative path.
const PathSeparator = "/"

// Handle gives access to the bytes behind one selected file.
type Handle interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Size() int64
}

// Entry is one (relative path, content handle) pair supplied by a source.
type Entry struct {
	RelativePath string
	Handle       Handle
}

// Content is the resolved payload of a file node.
type Content struct {
	State    ContentState
	Text     string
	Encoding string
	MimeType string
	Tokens   int
	Model    string
	Err      error
}

// Node is either a folder with ordered children or a file leaf.
// A folder owns its children exclusively; nodes keep no parent pointer.
type Node struct {
	Kind      Kind
	Name      string
	Path      string
	Children  []*Node
	Handle    Handle
	SizeBytes int64

	childIndex map[string]int
	content    atomic.Pointer[Content]
}

func newFolder(name, path string) *Node {
	return &Node{
		Kind:       KindFolder,
		Name:       name,
		Path:       path,
		childIndex: make(map[string]int),
	}
}

func newFile(name, path string, handle Handle) *Node {
	node := &Node{
		Kind:   KindFile,
		Name:   name,
		Path:   path,
		Handle: handle,
	}
	if handle != nil {
		node.SizeBytes = handle.Size()
	}
	return node
}

// IsFolder reports whether the node is a folder.
func (node *Node) IsFolder() bool {
	return node != nil && node.Kind == KindFolder
}

// IsFile reports whether the node is a file leaf.
func (node *Node) IsFile() bool {
	return node != nil && node.Kind == KindFile
}

// Content returns the current content snapshot. Files whose load has not
// completed report ContentPending.
func (node *Node) Content() Content {
	if node == nil {
		return Content{State: ContentPending}
	}
	stored := node.content.Load()
	if stored == nil {
		return Content{State: ContentPending}
	}
	return *stored
}

// AttachContent stores the resolved content. A node accepts exactly one
// attachment; later calls return false and leave the first value in place.
func (node *Node) AttachContent(content Content) bool {
	if !node.IsFile() {
		return false
	}
	return node.content.CompareAndSwap(nil, &content)
}

// Child returns the direct child with the provided name.
func (node *Node) Child(name string) *Node {
	if node == nil || node.childIndex == nil {
		return nil
	}
	childPosition, exists := node.childIndex[name]
	if !exists {
		return nil
	}
	return node.Children[childPosition]
}

func (node *Node) appendChild(child *Node) {
	node.childIndex[child.Name] = len(node.Children)
	node.Children = append(node.Children, child)
}

func (node *Node) replaceChild(child *Node) {
	node.Children[node.childIndex[child.Name]] = child
}
