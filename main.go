package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/temirov/repomerge/cmd/cli"
)

const (
	failureExitCodeConstant       = 1
	failureReportTemplateConstant = "repo-merge: %v\n"
)

func main() {
	os.Exit(run())
}

// run executes one merge session; an interrupt or SIGTERM cancels it.
func run() int {
	signalContext, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	if executionError := cli.Execute(signalContext); executionError != nil {
		fmt.Fprintf(os.Stderr, failureReportTemplateConstant, executionError)
		return failureExitCodeConstant
	}
	return 0
}
