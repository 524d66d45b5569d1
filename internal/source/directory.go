// Package source produces the flat (relative path, content handle) batches the
// tree is rebuilt from.
package source

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/temirov/uptree/internal/config"
	"github.com/temirov/uptree/internal/tree"
	"github.com/temirov/uptree/internal/utils"
)

const (
	errorAbsolutePathFormat  = "getting absolute path for %s: %w"
	errorNotADirectoryFormat = "%s is not a directory"
	errorStatRootFormat      = "stat %s: %w"
	errorLoadIgnoreFormat    = "loading ignore rules for %s: %w"
	errorWalkFormat          = "walking %s: %w"
)

// Listing is one collected batch. BinaryContentPatterns are expressed against
// the entries' relative paths.
type Listing struct {
	Entries               []tree.Entry
	BinaryContentPatterns []string
}

// DirectoryOptions selects the ignore rules of a directory walk.
type DirectoryOptions struct {
	Ignore config.IgnoreOptions
}

// Directory lists the files under root the way a directory picker reports
// them: every relative path starts with the base name of root. Ignored paths
// and ignored directories are left out. Entries are reported in lexical walk
// order.
func Directory(root string, options DirectoryOptions) (Listing, error) {
	absoluteRoot, absolutePathError := filepath.Abs(root)
	if absolutePathError != nil {
		return Listing{}, fmt.Errorf(errorAbsolutePathFormat, root, absolutePathError)
	}
	rootInfo, statError := os.Stat(absoluteRoot)
	if statError != nil {
		return Listing{}, fmt.Errorf(errorStatRootFormat, root, statError)
	}
	if !rootInfo.IsDir() {
		return Listing{}, fmt.Errorf(errorNotADirectoryFormat, root)
	}

	rules, rulesError := config.LoadIgnoreRules(absoluteRoot, options.Ignore)
	if rulesError != nil {
		return Listing{}, fmt.Errorf(errorLoadIgnoreFormat, root, rulesError)
	}

	rootName := filepath.Base(absoluteRoot)
	listing := Listing{BinaryContentPatterns: prefixPatterns(rootName, rules.BinaryContent)}

	walkError := filepath.WalkDir(absoluteRoot, func(currentPath string, directoryEntry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return walkError
		}
		if currentPath == absoluteRoot {
			return nil
		}
		relativePath := utils.RelativePathOrSelf(currentPath, absoluteRoot)
		if utils.ShouldIgnoreByPath(relativePath, rules.Ignore) {
			if directoryEntry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !directoryEntry.Type().IsRegular() {
			return nil
		}
		entryInfo, infoError := directoryEntry.Info()
		if infoError != nil {
			return infoError
		}
		listing.Entries = append(listing.Entries, tree.Entry{
			RelativePath: rootName + tree.PathSeparator + relativePath,
			Handle:       fileHandle{path: currentPath, size: entryInfo.Size()},
		})
		return nil
	})
	if walkError != nil {
		return Listing{}, fmt.Errorf(errorWalkFormat, root, walkError)
	}
	return listing, nil
}

func prefixPatterns(prefix string, patterns []string) []string {
	prefixed := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		prefixed = append(prefixed, prefix+tree.PathSeparator+pattern)
	}
	return prefixed
}

type fileHandle struct {
	path string
	size int64
}

// #nosec G304
func (handle fileHandle) Open(ctx context.Context) (io.ReadCloser, error) {
	if contextError := ctx.Err(); contextError != nil {
		return nil, contextError
	}
	return os.Open(handle.path)
}

func (handle fileHandle) Size() int64 {
	return handle.size
}
