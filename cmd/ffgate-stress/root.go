package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/obinnaokechukwu/ffgate/registry"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	goroutines int
	iterations int
)

var rootCmd = &cobra.Command{
	Use:   "ffgate-stress",
	Short: "Exercise the ffgate allocation registry under load",
	Long: `ffgate-stress hammers an allocation registry from many goroutines and
checks the guarantees foreign callers rely on: an address is released at most
once, it is only accepted as the type it was created with, and anything never
released is reported as a leak.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every registry event to stderr")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().IntVarP(&goroutines, "goroutines", "g", 16, "Concurrent workers")
	rootCmd.PersistentFlags().IntVarP(&iterations, "iterations", "n", 1000, "Iterations per command")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// newRegistry returns a registry for one command run. Leak warnings are
// reported by the commands themselves.
func newRegistry() *registry.Registry {
	opts := []registry.Option{registry.WithLeakWriter(nil)}
	if verbose {
		opts = append(opts, registry.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	}
	return registry.New(opts...)
}

func checkPositive(name string, v int) error {
	if v <= 0 {
		return fmt.Errorf("--%s must be positive, got %d", name, v)
	}
	return nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// report prints v as JSON or through the text formatter.
func report(v interface{}, text func()) error {
	if jsonOut {
		return printJSON(v)
	}
	text()
	return nil
}
