package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/temirov/uptree/internal/cli"
	"github.com/temirov/uptree/internal/utils"
)

const debugEnvironmentVariable = "UPTREE_DEBUG"

// main is the entry point for the uptree command.
func main() {
	debug, _ := strconv.ParseBool(os.Getenv(debugEnvironmentVariable))
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger(debug)
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if applicationExecutionError := cli.Execute(ctx, loggerInstance); applicationExecutionError != nil {
		loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage + ": " + applicationExecutionError.Error())
	}
}
