// Package cli provides the command line interface.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/uptree/internal/config"
	"github.com/temirov/uptree/internal/services/clipboard"
	"github.com/temirov/uptree/internal/source"
	"github.com/temirov/uptree/internal/utils"
)

const (
	configFlagName        = "config"
	configFlagDescription = "configuration file to load instead of ./" + utils.ConfigFileName
	versionTemplate       = utils.ApplicationName + " version: {{.Version}}\n"
	rootUse               = utils.ApplicationName
	rootShortDescription  = "rebuild and inspect the file tree of a batch of files"
	rootLongDescription   = `uptree collects a flat batch of files from local directories or an S3 prefix,
rebuilds the folder tree their relative paths imply and loads every file's content.
Use tree to render the hierarchy, files for the flattened list, show for a single
file and review to forward the project or a selection to an inference endpoint.`
)

// dependencies are the collaborators commands reach outside the process through.
type dependencies struct {
	logger      *zap.Logger
	clipboard   clipboard.Copier
	newS3Client func(ctx context.Context, options source.S3ClientOptions) (source.S3API, error)
}

func defaultDependencies(logger *zap.Logger) dependencies {
	return dependencies{
		logger:    logger,
		clipboard: clipboard.NewService(),
		newS3Client: func(ctx context.Context, options source.S3ClientOptions) (source.S3API, error) {
			return source.NewS3Client(ctx, options)
		},
	}
}

// application carries the loaded configuration to every subcommand.
type application struct {
	dependencies
	configurationPath string
	configuration     config.ApplicationConfiguration
}

// Execute runs the uptree application.
func Execute(ctx context.Context, logger *zap.Logger) error {
	rootCommand := createRootCommand(defaultDependencies(logger))
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.ExecuteContext(ctx)
}

// createRootCommand builds the root Cobra command.
func createRootCommand(deps dependencies) *cobra.Command {
	if deps.logger == nil {
		deps.logger = zap.NewNop()
	}
	app := &application{dependencies: deps}

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Version:      utils.GetApplicationVersion(),
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if command.Name() == initUse {
				return nil
			}
			configuration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{ExplicitFilePath: app.configurationPath})
			if loadError != nil {
				return loadError
			}
			app.configuration = configuration
			return nil
		},
	}
	rootCommand.SetVersionTemplate(versionTemplate)
	rootCommand.PersistentFlags().StringVar(&app.configurationPath, configFlagName, "", configFlagDescription)
	rootCommand.AddCommand(
		createTreeCommand(app),
		createFilesCommand(app),
		createShowCommand(app),
		createReviewCommand(app),
		createInitCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}
