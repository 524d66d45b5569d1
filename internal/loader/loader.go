// Package loader resolves the content of file nodes concurrently and attaches
// each result to its node once the tree has been built.
package loader

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/uptree/internal/tokenizer"
	"github.com/temirov/uptree/internal/tree"
	"github.com/temirov/uptree/internal/utils"
)

const (
	// DefaultMaxPreviewBytes is the size above which a file is marked too large to preview.
	DefaultMaxPreviewBytes int64 = 1 << 20
	// DefaultConcurrency caps the number of files read at the same time.
	DefaultConcurrency = 16

	encodingUTF8   = "utf-8"
	encodingBase64 = "base64"

	errorNoHandleFormat = "no content handle for %s"
	errorOpenFormat     = "open %s: %w"
	errorReadFormat     = "read %s: %w"
)

var errNoHandle = errors.New("missing content handle")

// Guard decides whether a write issued under a batch generation may still land.
type Guard interface {
	Current(generation uint64) bool
}

// Options configures a Loader.
type Options struct {
	MaxPreviewBytes int64
	Concurrency     int
	// BinaryContentPatterns lists node paths whose binary content is kept base64-encoded.
	// BinaryPreview keeps the content of every binary file.
	BinaryContentPatterns []string
	BinaryPreview         bool
	TokenCounter          tokenizer.Counter
	TokenModel            string
	Logger                *zap.Logger
}

// Stats counts the outcome of every task in a Run.
type Stats struct {
	Loaded   int
	Binary   int
	TooLarge int
	Failed   int
	Dropped  int
}

// Total returns the number of tasks whose outcome was recorded.
func (stats Stats) Total() int {
	return stats.Loaded + stats.Binary + stats.TooLarge + stats.Failed + stats.Dropped
}

// Loader reads file content with a bounded number of concurrent tasks.
type Loader struct {
	options Options
	logger  *zap.Logger
}

// New returns a Loader with defaults applied to zero options.
func New(options Options) *Loader {
	normalized := options
	if normalized.MaxPreviewBytes <= 0 {
		normalized.MaxPreviewBytes = DefaultMaxPreviewBytes
	}
	if normalized.Concurrency <= 0 {
		normalized.Concurrency = DefaultConcurrency
	}
	logger := normalized.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{options: normalized, logger: logger}
}

// Run tracks the tasks started by one Load call.
type Run struct {
	done     chan struct{}
	err      error
	loaded   atomic.Int64
	binary   atomic.Int64
	tooLarge atomic.Int64
	failed   atomic.Int64
	dropped  atomic.Int64
}

// Done is closed once every task finished.
func (run *Run) Done() <-chan struct{} {
	return run.done
}

// Wait blocks until every task finished. The error is non-nil only when the
// context passed to Load was canceled before all tasks ran.
func (run *Run) Wait() (Stats, error) {
	<-run.done
	return run.Stats(), run.err
}

// Stats returns the outcomes recorded so far.
func (run *Run) Stats() Stats {
	return Stats{
		Loaded:   int(run.loaded.Load()),
		Binary:   int(run.binary.Load()),
		TooLarge: int(run.tooLarge.Load()),
		Failed:   int(run.failed.Load()),
		Dropped:  int(run.dropped.Load()),
	}
}

// Load starts one task per file node and returns without waiting for them.
// Each task captures generation; when guard reports it is no longer current
// the task drops its result instead of writing it. A nil guard accepts every
// write.
func (loader *Loader) Load(ctx context.Context, generation uint64, files []*tree.Node, guard Guard) *Run {
	if ctx == nil {
		ctx = context.Background()
	}
	run := &Run{done: make(chan struct{})}
	go func() {
		defer close(run.done)
		var group errgroup.Group
		group.SetLimit(loader.options.Concurrency)
		for _, fileNode := range files {
			if ctx.Err() != nil {
				break
			}
			group.Go(func() error {
				loader.loadNode(ctx, generation, fileNode, guard, run)
				return nil
			})
		}
		_ = group.Wait()
		run.err = ctx.Err()
	}()
	return run
}

func (loader *Loader) loadNode(ctx context.Context, generation uint64, fileNode *tree.Node, guard Guard, run *Run) {
	if ctx.Err() != nil || !fileNode.IsFile() {
		return
	}
	content, completed := loader.resolve(ctx, fileNode)
	if !completed {
		return
	}
	if guard != nil && !guard.Current(generation) {
		run.dropped.Add(1)
		loader.logger.Debug("dropped stale content",
			zap.String("path", fileNode.Path),
			zap.Uint64("generation", generation))
		return
	}
	if !fileNode.AttachContent(content) {
		run.dropped.Add(1)
		return
	}
	switch content.State {
	case tree.ContentLoaded:
		run.loaded.Add(1)
	case tree.ContentBinary:
		run.binary.Add(1)
	case tree.ContentTooLarge:
		run.tooLarge.Add(1)
	case tree.ContentFailed:
		run.failed.Add(1)
		loader.logger.Warn("content load failed",
			zap.String("path", fileNode.Path),
			zap.Error(content.Err))
	}
}

// resolve reads one node. The boolean is false when the context was canceled
// mid-read; the node then stays pending.
func (loader *Loader) resolve(ctx context.Context, fileNode *tree.Node) (tree.Content, bool) {
	maxBytes := loader.options.MaxPreviewBytes
	if fileNode.Handle == nil {
		return failedContent(fmt.Errorf(errorNoHandleFormat+": %w", fileNode.Path, errNoHandle)), true
	}
	if fileNode.SizeBytes > maxBytes {
		return tree.Content{State: tree.ContentTooLarge}, true
	}

	reader, openError := fileNode.Handle.Open(ctx)
	if openError != nil {
		if ctx.Err() != nil {
			return tree.Content{}, false
		}
		return failedContent(fmt.Errorf(errorOpenFormat, fileNode.Path, openError)), true
	}
	defer reader.Close()

	data, readError := io.ReadAll(io.LimitReader(reader, maxBytes+1))
	if ctx.Err() != nil {
		return tree.Content{}, false
	}
	if readError != nil {
		return failedContent(fmt.Errorf(errorReadFormat, fileNode.Path, readError)), true
	}
	if int64(len(data)) > maxBytes {
		return tree.Content{State: tree.ContentTooLarge}, true
	}

	content := tree.Content{MimeType: utils.DetectMimeType(data)}
	if utils.IsBinary(data) {
		content.State = tree.ContentBinary
		if loader.options.BinaryPreview || utils.ShouldDisplayBinaryContentByPath(fileNode.Path, loader.options.BinaryContentPatterns) {
			content.Text = base64.StdEncoding.EncodeToString(data)
			content.Encoding = encodingBase64
		}
		return content, true
	}
	content.State = tree.ContentLoaded
	content.Text = string(data)
	content.Encoding = encodingUTF8
	if loader.options.TokenCounter != nil {
		countResult, countError := tokenizer.CountBytes(loader.options.TokenCounter, data)
		if countError != nil {
			loader.logger.Warn("token count failed", zap.String("path", fileNode.Path), zap.Error(countError))
		} else if countResult.Counted {
			content.Tokens = countResult.Tokens
			if content.Tokens > 0 {
				content.Model = loader.options.TokenModel
			}
		}
	}
	return content, true
}

func failedContent(err error) tree.Content {
	return tree.Content{State: tree.ContentFailed, Err: err}
}
