// Package project holds the loaded project: the forest built from the latest
// batch, its content loads and the accessors consumers read from.
package project

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/temirov/uptree/internal/loader"
	"github.com/temirov/uptree/internal/tree"
)

// UntitledProjectName names a project whose first entry has no usable segment.
const UntitledProjectName = "Untitled Project"

const (
	errorNotFoundFormat           = "%w: %s"
	errorNotAFileFormat           = "%w: %s is a folder"
	errorContentUnavailableFormat = "%w: %s is %s"
	errorContentFailedFormat      = "%w: %s failed to load: %w"
	errorNoProjectMessage         = "no project loaded"

	warningSkippedEntryMessage = "skipped entry"
)

var (
	// ErrNotFound reports a path that names no node in the current project.
	ErrNotFound = errors.New("path not found")
	// ErrNotAFile reports a selection that names a folder.
	ErrNotAFile = errors.New("not a file")
	// ErrContentUnavailable reports a file whose text cannot be returned.
	ErrContentUnavailable = errors.New("content unavailable")
	// ErrNoProject reports an accessor call before any batch was loaded.
	ErrNoProject = errors.New(errorNoProjectMessage)
)

// Project is one loaded batch: its forest, build report and content loads.
type Project struct {
	Name       string
	Generation uint64
	Forest     *tree.Forest
	Report     tree.Report

	files []*tree.Node
	run   *loader.Run
}

// Files returns the flattened file leaves in flatten order.
func (project *Project) Files() []*tree.Node {
	return project.files
}

// Wait blocks until every content load of the project finished.
func (project *Project) Wait() (loader.Stats, error) {
	return project.run.Wait()
}

// Done is closed once every content load of the project finished.
func (project *Project) Done() <-chan struct{} {
	return project.run.Done()
}

// Select returns the text of one file. Folders, unknown paths and files
// without text content yield errors wrapping the matching sentinel.
func (project *Project) Select(relativePath string) (string, error) {
	node, found := project.Forest.Lookup(relativePath)
	if !found {
		return "", fmt.Errorf(errorNotFoundFormat, ErrNotFound, relativePath)
	}
	if !node.IsFile() {
		return "", fmt.Errorf(errorNotAFileFormat, ErrNotAFile, relativePath)
	}
	content := node.Content()
	switch content.State {
	case tree.ContentLoaded:
		return content.Text, nil
	case tree.ContentFailed:
		return "", fmt.Errorf(errorContentFailedFormat, ErrContentUnavailable, relativePath, content.Err)
	default:
		return "", fmt.Errorf(errorContentUnavailableFormat, ErrContentUnavailable, relativePath, content.State)
	}
}

// Workspace owns the current project. Loading a new batch supersedes the
// previous one and any of its content loads still in flight.
type Workspace struct {
	loader     *loader.Loader
	logger     *zap.Logger
	loadMutex  sync.Mutex
	generation atomic.Uint64
	current    atomic.Pointer[Project]
}

// NewWorkspace returns a workspace loading content with contentLoader.
func NewWorkspace(contentLoader *loader.Loader, logger *zap.Logger) *Workspace {
	if contentLoader == nil {
		contentLoader = loader.New(loader.Options{Logger: logger})
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workspace{loader: contentLoader, logger: logger}
}

// Current reports whether generation is still the active batch.
func (workspace *Workspace) Current(generation uint64) bool {
	return workspace.generation.Load() == generation
}

// Project returns the active project or nil before the first load.
func (workspace *Workspace) Project() *Project {
	return workspace.current.Load()
}

// Load builds the forest for entries synchronously, makes it the active
// project and starts its content loads. An empty batch returns
// tree.ErrEmptyBatch and leaves the active project untouched.
func (workspace *Workspace) Load(ctx context.Context, entries []tree.Entry) (*Project, error) {
	forest, report, buildError := tree.Build(entries)
	for _, skipped := range report.Skipped {
		workspace.logger.Warn(warningSkippedEntryMessage,
			zap.String("path", skipped.RelativePath),
			zap.Error(skipped.Err))
	}
	if buildError != nil {
		return nil, buildError
	}

	workspace.loadMutex.Lock()
	defer workspace.loadMutex.Unlock()
	generation := workspace.generation.Add(1)
	project := &Project{
		Name:       projectName(report.FirstAccepted),
		Generation: generation,
		Forest:     forest,
		Report:     report,
		files:      forest.Files(),
	}
	project.run = workspace.loader.Load(ctx, generation, project.files, workspace)
	workspace.current.Store(project)
	workspace.logger.Debug("project loaded",
		zap.String("name", project.Name),
		zap.Uint64("generation", generation),
		zap.Int("files", len(project.files)),
		zap.Int("skipped", len(report.Skipped)))
	return project, nil
}

// Select returns the text of one file of the active project.
func (workspace *Workspace) Select(relativePath string) (string, error) {
	project := workspace.Project()
	if project == nil {
		return "", ErrNoProject
	}
	return project.Select(relativePath)
}

func projectName(firstPath string) string {
	segments, parseError := tree.ParsePath(firstPath)
	if parseError != nil || len(segments) == 0 {
		return UntitledProjectName
	}
	return segments[0]
}
