package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/uptree/internal/config"
	"github.com/temirov/uptree/internal/loader"
	"github.com/temirov/uptree/internal/project"
	"github.com/temirov/uptree/internal/source"
	"github.com/temirov/uptree/internal/tokenizer"
	"github.com/temirov/uptree/internal/tree"
	"github.com/temirov/uptree/internal/types"
)

const (
	exclusionFlagName       = "e"
	noGitignoreFlagName     = "no-gitignore"
	noIgnoreFlagName        = "no-ignore"
	includeGitFlagName      = "git"
	tokensFlagName          = "tokens"
	modelFlagName           = "model"
	s3FlagName              = "s3"
	maxPreviewBytesFlagName = "max-preview-bytes"
	concurrencyFlagName     = "concurrency"
	binaryPreviewFlagName   = "binary-preview"
	formatFlagName          = "format"
	defaultPath             = "."

	exclusionFlagDescription       = "exclude path pattern"
	noGitignoreFlagDescription     = "do not use .gitignore"
	noIgnoreFlagDescription        = "do not use .ignore"
	includeGitFlagDescription      = "include git directory"
	tokensFlagDescription          = "include token counts"
	modelFlagDescription           = "tokenizer model to use for token counting"
	s3FlagDescription              = "load objects under an s3://bucket/prefix location instead of local paths"
	maxPreviewBytesFlagDescription = "files larger than this are listed without content"
	concurrencyFlagDescription     = "number of files read at the same time"
	binaryPreviewFlagDescription   = "keep base64 content of every binary file"
	formatFlagDescription          = "output format (raw, json or xml)"

	noFilesMessage             = "no files to load"
	errorInvalidFormat         = "invalid format value %q"
	errorS3ClientFormat        = "create s3 client: %w"
	errorTokenizerFormat       = "initialize tokenizer: %w"
	errorLoadContentFormat     = "load content: %w"
	warningSkippingPathMessage = "skipping path"
	warningSkippingPathFormat  = "Warning: skipping %s: %v\n"
)

// loadFlags are the flags shared by every command that builds a project.
type loadFlags struct {
	exclusionPatterns []string
	disableGitignore  bool
	disableIgnoreFile bool
	includeGit        bool
	tokens            bool
	model             string
	s3Location        string
	maxPreviewBytes   int64
	concurrency       int
	binaryPreview     bool
}

func (flags *loadFlags) register(command *cobra.Command) {
	flagSet := command.Flags()
	flagSet.StringArrayVarP(&flags.exclusionPatterns, exclusionFlagName, exclusionFlagName, nil, exclusionFlagDescription)
	registerBooleanFlag(flagSet, &flags.disableGitignore, noGitignoreFlagName, false, noGitignoreFlagDescription)
	registerBooleanFlag(flagSet, &flags.disableIgnoreFile, noIgnoreFlagName, false, noIgnoreFlagDescription)
	registerBooleanFlag(flagSet, &flags.includeGit, includeGitFlagName, false, includeGitFlagDescription)
	registerBooleanFlag(flagSet, &flags.tokens, tokensFlagName, false, tokensFlagDescription)
	flagSet.StringVar(&flags.model, modelFlagName, "", modelFlagDescription)
	flagSet.StringVar(&flags.s3Location, s3FlagName, "", s3FlagDescription)
	flagSet.Int64Var(&flags.maxPreviewBytes, maxPreviewBytesFlagName, loader.DefaultMaxPreviewBytes, maxPreviewBytesFlagDescription)
	flagSet.IntVar(&flags.concurrency, concurrencyFlagName, loader.DefaultConcurrency, concurrencyFlagDescription)
	registerBooleanFlag(flagSet, &flags.binaryPreview, binaryPreviewFlagName, false, binaryPreviewFlagDescription)
}

// resolve fills every flag the user did not set from the configuration.
func (flags *loadFlags) resolve(command *cobra.Command, configuration config.LoadConfiguration) {
	changed := command.Flags().Changed
	paths := configuration.Paths
	if !changed(noGitignoreFlagName) {
		flags.disableGitignore = !config.BoolValue(paths.UseGitignore, true)
	}
	if !changed(noIgnoreFlagName) {
		flags.disableIgnoreFile = !config.BoolValue(paths.UseIgnoreFile, true)
	}
	if !changed(includeGitFlagName) {
		flags.includeGit = config.BoolValue(paths.IncludeGit, false)
	}
	if !changed(tokensFlagName) {
		flags.tokens = config.BoolValue(configuration.Tokens.Enabled, false)
	}
	if !changed(modelFlagName) && configuration.Tokens.Model != "" {
		flags.model = configuration.Tokens.Model
	}
	if !changed(maxPreviewBytesFlagName) && configuration.MaxPreviewBytes != nil {
		flags.maxPreviewBytes = *configuration.MaxPreviewBytes
	}
	if !changed(concurrencyFlagName) {
		flags.concurrency = config.IntValue(configuration.Concurrency, flags.concurrency)
	}
	if !changed(binaryPreviewFlagName) {
		flags.binaryPreview = config.BoolValue(configuration.BinaryPreview, false)
	}
	flags.exclusionPatterns = append(append([]string(nil), paths.Exclude...), flags.exclusionPatterns...)
}

func (flags *loadFlags) ignoreOptions() config.IgnoreOptions {
	return config.IgnoreOptions{
		ExclusionPatterns: flags.exclusionPatterns,
		UseGitignore:      !flags.disableGitignore,
		UseIgnoreFile:     !flags.disableIgnoreFile,
		IncludeGit:        flags.includeGit,
	}
}

func validateFormat(format string) error {
	switch format {
	case types.FormatRaw, types.FormatJSON, types.FormatXML:
		return nil
	default:
		return fmt.Errorf(errorInvalidFormat, format)
	}
}

// collectEntries gathers one batch from the S3 location or from every path.
// Local paths that cannot be listed are reported and skipped.
func (app *application) collectEntries(ctx context.Context, flags *loadFlags, paths []string, warnings io.Writer) (source.Listing, error) {
	if flags.s3Location != "" {
		location, parseError := source.ParseS3Location(flags.s3Location)
		if parseError != nil {
			return source.Listing{}, parseError
		}
		s3Configuration := app.configuration.S3
		client, clientError := app.newS3Client(ctx, source.S3ClientOptions{
			Region:          s3Configuration.Region,
			Endpoint:        s3Configuration.Endpoint,
			UsePathStyle:    config.BoolValue(s3Configuration.UsePathStyle, false),
			AccessKeyID:     s3Configuration.AccessKeyID,
			SecretAccessKey: s3Configuration.SecretAccessKey,
		})
		if clientError != nil {
			return source.Listing{}, fmt.Errorf(errorS3ClientFormat, clientError)
		}
		return source.S3(ctx, client, location)
	}

	if len(paths) == 0 {
		paths = []string{defaultPath}
	}
	var combined source.Listing
	for _, path := range paths {
		listing, listingError := source.Directory(path, source.DirectoryOptions{Ignore: flags.ignoreOptions()})
		if listingError != nil {
			app.logger.Warn(warningSkippingPathMessage, zap.String("path", path), zap.Error(listingError))
			fmt.Fprintf(warnings, warningSkippingPathFormat, path, listingError)
			continue
		}
		combined.Entries = append(combined.Entries, listing.Entries...)
		combined.BinaryContentPatterns = append(combined.BinaryContentPatterns, listing.BinaryContentPatterns...)
	}
	return combined, nil
}

// loadProject collects a batch, builds its project and waits for every
// content load to finish.
func (app *application) loadProject(command *cobra.Command, flags *loadFlags, paths []string) (*project.Project, error) {
	ctx := command.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	flags.resolve(command, app.configuration.Load)

	listing, collectError := app.collectEntries(ctx, flags, paths, command.ErrOrStderr())
	if collectError != nil {
		return nil, collectError
	}

	loaderOptions := loader.Options{
		MaxPreviewBytes:       flags.maxPreviewBytes,
		Concurrency:           flags.concurrency,
		BinaryContentPatterns: listing.BinaryContentPatterns,
		BinaryPreview:         flags.binaryPreview,
		Logger:                app.logger,
	}
	if flags.tokens {
		counter, model, counterError := tokenizer.NewCounter(tokenizer.Config{Model: flags.model})
		if counterError != nil {
			return nil, fmt.Errorf(errorTokenizerFormat, counterError)
		}
		loaderOptions.TokenCounter = counter
		loaderOptions.TokenModel = model
	}

	workspace := project.NewWorkspace(loader.New(loaderOptions), app.logger)
	loadedProject, loadError := workspace.Load(ctx, listing.Entries)
	if errors.Is(loadError, tree.ErrEmptyBatch) {
		return nil, errors.New(noFilesMessage)
	}
	if loadError != nil {
		return nil, loadError
	}
	stats, waitError := loadedProject.Wait()
	if waitError != nil {
		return nil, fmt.Errorf(errorLoadContentFormat, waitError)
	}
	app.logger.Debug("content loaded",
		zap.String("project", loadedProject.Name),
		zap.Int("loaded", stats.Loaded),
		zap.Int("binary", stats.Binary),
		zap.Int("too_large", stats.TooLarge),
		zap.Int("failed", stats.Failed))
	return loadedProject, nil
}

