package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/uptree/internal/config"
	"github.com/temirov/uptree/internal/review"
)

const (
	reviewUse              = "review [paths...]"
	reviewAlias            = "r"
	reviewShortDescription = "ask an inference endpoint about the loaded code (" + reviewAlias + ")"
	reviewLongDescription  = `Load a batch and send it to an inference endpoint together with a message.
Without --file the whole project is sent as a JSON document of its files.
Every --file is reviewed on its own and the answers are printed in flag order.`
	reviewUsageExample = `  # Ask about the whole project
  uptree review -m "what does this project do?" .

  # Review two files and copy the answers to the clipboard
  uptree review --file src/app.ts --file src/utils/helper.ts -m "find bugs" --copy ./src`

	fileFlagName             = "file"
	fileFlagDescription      = "file of the batch to review on its own (repeatable)"
	messageFlagName          = "message"
	messageFlagShorthand     = "m"
	messageFlagDescription   = "question sent along with the code"
	copyFlagName             = "copy"
	copyFlagDescription      = "copy the answers to the system clipboard"
	maxTokensFlagName        = "max-tokens"
	maxTokensFlagDescription = "upper bound on the generated answer"
	endpointFlagName         = "endpoint"
	endpointFlagDescription  = "inference endpoint receiving the prompt"
	reviewModelFlagName      = "review-model"
	reviewModelDescription   = "model name forwarded to the endpoint"

	defaultReviewMessage    = "Review this code."
	reviewHeaderFormat      = "Review of %s:\n"
	errorReviewFileFormat   = "review %s: %w"
	errorCopyReviewFormat   = "copy review: %w"
	warningClipboardMessage = "clipboard copy failed"
)

type reviewFlags struct {
	load      loadFlags
	files     []string
	message   string
	copy      bool
	maxTokens int
	endpoint  string
	model     string
}

type reviewResult struct {
	subject string
	answer  string
}

func createReviewCommand(app *application) *cobra.Command {
	var flags reviewFlags

	reviewCommand := &cobra.Command{
		Use:     reviewUse,
		Aliases: []string{reviewAlias},
		Short:   reviewShortDescription,
		Long:    reviewLongDescription,
		Example: reviewUsageExample,
		RunE: func(command *cobra.Command, arguments []string) error {
			return app.runReview(command, &flags, arguments)
		},
	}
	flags.load.register(reviewCommand)
	flagSet := reviewCommand.Flags()
	flagSet.StringArrayVar(&flags.files, fileFlagName, nil, fileFlagDescription)
	flagSet.StringVarP(&flags.message, messageFlagName, messageFlagShorthand, defaultReviewMessage, messageFlagDescription)
	registerBooleanFlag(flagSet, &flags.copy, copyFlagName, false, copyFlagDescription)
	flagSet.IntVar(&flags.maxTokens, maxTokensFlagName, review.DefaultMaxTokens, maxTokensFlagDescription)
	flagSet.StringVar(&flags.endpoint, endpointFlagName, review.DefaultEndpoint, endpointFlagDescription)
	flagSet.StringVar(&flags.model, reviewModelFlagName, "", reviewModelDescription)
	return reviewCommand
}

func (app *application) reviewClient(command *cobra.Command, flags *reviewFlags) *review.Client {
	reviewConfiguration := app.configuration.Review
	changed := command.Flags().Changed
	if !changed(endpointFlagName) && reviewConfiguration.Endpoint != "" {
		flags.endpoint = reviewConfiguration.Endpoint
	}
	if !changed(maxTokensFlagName) {
		flags.maxTokens = config.IntValue(reviewConfiguration.MaxTokens, flags.maxTokens)
	}
	if !changed(copyFlagName) {
		flags.copy = config.BoolValue(reviewConfiguration.Clipboard, false)
	}
	var timeout time.Duration
	if reviewConfiguration.Timeout != nil {
		timeout = *reviewConfiguration.Timeout
	}
	return review.NewClient(review.Config{
		Endpoint:  flags.endpoint,
		MaxTokens: flags.maxTokens,
		Timeout:   timeout,
		Logger:    app.logger,
	})
}

func (app *application) runReview(command *cobra.Command, flags *reviewFlags, arguments []string) error {
	client := app.reviewClient(command, flags)
	loadedProject, loadError := app.loadProject(command, &flags.load, arguments)
	if loadError != nil {
		return loadError
	}

	var subjects, codes []string
	if len(flags.files) == 0 {
		payload, payloadError := review.ProjectPayload(loadedProject.Files())
		if payloadError != nil {
			return payloadError
		}
		subjects = append(subjects, loadedProject.Name)
		codes = append(codes, payload)
	}
	for _, requestedPath := range flags.files {
		fileNode, resolveError := resolveFile(loadedProject, requestedPath)
		if resolveError != nil {
			return resolveError
		}
		text, selectError := loadedProject.Select(fileNode.Path)
		if selectError != nil {
			return selectError
		}
		subjects = append(subjects, fileNode.Path)
		codes = append(codes, text)
	}

	results := make([]reviewResult, len(codes))
	group, groupContext := errgroup.WithContext(command.Context())
	for index := range codes {
		group.Go(func() error {
			answer, reviewError := client.Review(groupContext, review.Request{
				Code:    codes[index],
				Message: flags.message,
				Model:   flags.model,
			})
			if reviewError != nil {
				return fmt.Errorf(errorReviewFileFormat, subjects[index], reviewError)
			}
			results[index] = reviewResult{subject: subjects[index], answer: answer}
			return nil
		})
	}
	if waitError := group.Wait(); waitError != nil {
		return waitError
	}

	var rendered strings.Builder
	for _, result := range results {
		fmt.Fprintf(&rendered, reviewHeaderFormat, result.subject)
		rendered.WriteString(strings.TrimRight(result.answer, "\n"))
		rendered.WriteString("\n")
	}
	fmt.Fprint(command.OutOrStdout(), rendered.String())

	if flags.copy {
		if copyError := app.clipboard.Copy(rendered.String()); copyError != nil {
			app.logger.Warn(warningClipboardMessage, zap.Error(copyError))
			return fmt.Errorf(errorCopyReviewFormat, copyError)
		}
	}
	return nil
}
