package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vk/buildmerge/internal/app"
	"github.com/vk/buildmerge/internal/cli"
	"github.com/vk/buildmerge/internal/hcl"
)

// main is the entrypoint for the buildmerge binary. Logs go to stderr, the
// analysis report to stdout.
func main() {
	if err := run(os.Stderr, os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling.
func run(logW, reportW io.Writer, args []string) (err error) {
	cfg, shouldExit, err := cli.Parse(args, logW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical startup errors; turn that into a clean
	// error for the user.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("a critical startup error occurred: %v", r)
		}
	}()

	loader := hcl.NewLoader()
	mergeApp := app.NewApp(logW, cfg, loader)
	return mergeApp.Run(context.Background(), reportW)
}
