package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/taskcatalog/internal/app"
	"github.com/vk/taskcatalog/internal/cli"
)

// main is the entrypoint for the taskcatalog binary.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical startup errors (a malformed task
	// document, a cyclic baseTask chain), so we recover here to give the
	// user a clean exit message instead of a raw stack trace.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(outW, "a critical startup error occurred: %v\n", r)
			os.Exit(1)
		}
	}()

	taskApp := app.NewApp(outW, appConfig)
	required := taskApp.Catalog().TemplatesRequired()
	fmt.Fprintf(outW, "catalog resolved; %d match-template assets required\n", len(required))

	return nil
}
