package main

import (
	"fmt"
	"os"

	"github.com/temirov/procshell/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the procshell command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(cli.ExitCode(executionError))
	}
}
