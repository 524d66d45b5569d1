package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/uptree/internal/config"
	"github.com/temirov/uptree/internal/output"
	"github.com/temirov/uptree/internal/project"
	"github.com/temirov/uptree/internal/tree"
	"github.com/temirov/uptree/internal/types"
)

const (
	treeUse               = "tree [paths...]"
	filesUse              = "files [paths...]"
	showUse               = "show <file>"
	treeAlias             = "t"
	filesAlias            = "f"
	treeShortDescription  = "display the rebuilt file tree (" + treeAlias + ")"
	filesShortDescription = "list the loaded files in tree order (" + filesAlias + ")"
	showShortDescription  = "print the content of one loaded file"

	treeLongDescription = `Collect every file under the given paths, rebuild the folder tree their
relative paths imply and render it. Several paths form one batch with one root each.
Use --format to select raw, json, or xml output.`
	treeUsageExample = `  # Render the tree with folder totals
  uptree tree --summary ./src

  # Render objects under an S3 prefix as JSON
  uptree tree --s3 s3://bucket/project --format json`

	filesLongDescription = `List every loaded file in depth-first tree order with its load state.
Use --content to include file content and --format to select raw, json, or xml output.`
	filesUsageExample = `  # List files with token counts
  uptree files --tokens .

  # Dump content of every file as XML
  uptree files --content --format xml ./docs`

	showLongDescription = `Load a batch and print one file of it. The file path is relative to the batch
and may omit the project name, which is the first segment of the batch.`
	showUsageExample = `  # Print one file of the current directory
  uptree show cmd/uptree/main.go`

	summaryFlagName        = "summary"
	summaryFlagDescription = "include folder totals and the loaded files line"
	contentFlagName        = "content"
	contentFlagDescription = "include file content"
	rootFlagName           = "root"
	rootFlagDescription    = "directory to load the batch from"

	warningContentUnavailableFormat = "Warning: %v\n"
)

func createTreeCommand(app *application) *cobra.Command {
	var flags loadFlags
	var format string
	var includeSummary bool

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Example: treeUsageExample,
		RunE: func(command *cobra.Command, arguments []string) error {
			treeConfiguration := app.configuration.Tree
			if !command.Flags().Changed(formatFlagName) && treeConfiguration.Format != "" {
				format = treeConfiguration.Format
			}
			if !command.Flags().Changed(summaryFlagName) {
				includeSummary = config.BoolValue(treeConfiguration.Summary, includeSummary)
			}
			if formatError := validateFormat(format); formatError != nil {
				return formatError
			}
			loadedProject, loadError := app.loadProject(command, &flags, arguments)
			if loadError != nil {
				return loadError
			}
			var summary *types.OutputSummary
			if includeSummary {
				summary = output.Summary(output.FileOutputs(loadedProject.Files(), false), len(loadedProject.Report.Skipped))
			}
			nodes := output.TreeNodes(loadedProject.Forest.Roots(), includeSummary)
			return output.WriteTree(command.OutOrStdout(), format, loadedProject.Name, nodes, summary)
		},
	}
	flags.register(treeCommand)
	treeCommand.Flags().StringVar(&format, formatFlagName, types.FormatRaw, formatFlagDescription)
	registerBooleanFlag(treeCommand.Flags(), &includeSummary, summaryFlagName, true, summaryFlagDescription)
	return treeCommand
}

func createFilesCommand(app *application) *cobra.Command {
	var flags loadFlags
	var format string
	var includeContent bool

	filesCommand := &cobra.Command{
		Use:     filesUse,
		Aliases: []string{filesAlias},
		Short:   filesShortDescription,
		Long:    filesLongDescription,
		Example: filesUsageExample,
		RunE: func(command *cobra.Command, arguments []string) error {
			if !command.Flags().Changed(formatFlagName) && app.configuration.Files.Format != "" {
				format = app.configuration.Files.Format
			}
			if formatError := validateFormat(format); formatError != nil {
				return formatError
			}
			loadedProject, loadError := app.loadProject(command, &flags, arguments)
			if loadError != nil {
				return loadError
			}
			files := output.FileOutputs(loadedProject.Files(), includeContent)
			summary := output.Summary(files, len(loadedProject.Report.Skipped))
			writer := command.OutOrStdout()
			if format == types.FormatRaw && includeContent {
				for _, file := range files {
					output.WriteFileRaw(writer, file)
				}
				fmt.Fprintln(writer, output.FormatLoadedLine(summary))
				return nil
			}
			return output.WriteFiles(writer, format, loadedProject.Name, files, summary)
		},
	}
	flags.register(filesCommand)
	filesCommand.Flags().StringVar(&format, formatFlagName, types.FormatRaw, formatFlagDescription)
	registerBooleanFlag(filesCommand.Flags(), &includeContent, contentFlagName, false, contentFlagDescription)
	return filesCommand
}

func createShowCommand(app *application) *cobra.Command {
	var flags loadFlags
	var format string
	var rootPath string

	showCommand := &cobra.Command{
		Use:     showUse,
		Short:   showShortDescription,
		Long:    showLongDescription,
		Example: showUsageExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			if formatError := validateFormat(format); formatError != nil {
				return formatError
			}
			loadedProject, loadError := app.loadProject(command, &flags, []string{rootPath})
			if loadError != nil {
				return loadError
			}
			fileNode, resolveError := resolveFile(loadedProject, arguments[0])
			if resolveError != nil {
				return resolveError
			}
			if _, selectError := loadedProject.Select(fileNode.Path); selectError != nil {
				if !errors.Is(selectError, project.ErrContentUnavailable) {
					return selectError
				}
				fmt.Fprintf(command.ErrOrStderr(), warningContentUnavailableFormat, selectError)
			}
			file := output.FileOutput(fileNode, true)
			writer := command.OutOrStdout()
			if format == types.FormatRaw {
				output.WriteFileRaw(writer, file)
				return nil
			}
			return output.WriteFiles(writer, format, loadedProject.Name, []types.FileOutput{file}, nil)
		},
	}
	flags.register(showCommand)
	showCommand.Flags().StringVar(&format, formatFlagName, types.FormatRaw, formatFlagDescription)
	showCommand.Flags().StringVar(&rootPath, rootFlagName, defaultPath, rootFlagDescription)
	return showCommand
}

// resolveFile finds relativePath in the project, retrying with the project
// name prepended. Folders are rejected.
func resolveFile(loadedProject *project.Project, relativePath string) (*tree.Node, error) {
	node, found := loadedProject.Forest.Lookup(relativePath)
	if !found {
		node, found = loadedProject.Forest.Lookup(loadedProject.Name + tree.PathSeparator + relativePath)
	}
	if !found {
		_, selectError := loadedProject.Select(relativePath)
		return nil, selectError
	}
	if !node.IsFile() {
		_, selectError := loadedProject.Select(node.Path)
		return nil, selectError
	}
	return node, nil
}
