package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/uptree/internal/config"
)

const (
	initUse               = "init"
	initShortDescription  = "write a default configuration file"
	initLongDescription   = `Write the default configuration to ./config.yaml, or to ~/.uptree/config.yaml with --global.`
	globalFlagName        = "global"
	globalFlagDescription = "write the configuration under the home directory"
	forceFlagName         = "force"
	forceFlagDescription  = "overwrite an existing configuration file"
	initWrittenFormat     = "Configuration written to %s\n"
)

func createInitCommand() *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{Target: target, Force: force})
			if initError != nil {
				return initError
			}
			fmt.Fprintf(command.OutOrStdout(), initWrittenFormat, writtenPath)
			return nil
		},
	}
	registerBooleanFlag(initCommand.Flags(), &global, globalFlagName, false, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return initCommand
}
