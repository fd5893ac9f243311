package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/obinnaokechukwu/ffgate/registry"
)

var (
	leakRelease int
	leakDrain   bool
)

func init() {
	cmd := newLeaksCmd()
	cmd.Flags().IntVar(&leakRelease, "release", 0, "How many of the registered values to release")
	cmd.Flags().BoolVar(&leakDrain, "drain", false, "Run the cleanup of leaked values at shutdown")
	rootCmd.AddCommand(cmd)
}

func newLeaksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaks",
		Short: "Check leak accounting at shutdown",
		Long: `The leaks command registers --iterations values, releases --release of
them, and shuts the registry down. The leak report must count exactly the
values that were never released.

Example:
  ffgate-stress leaks -n 50 --release 17
  ffgate-stress leaks -n 50 --release 17 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLeaks()
		},
	}
	return cmd
}

// LeaksResult summarizes a leaks run.
type LeaksResult struct {
	Registered int               `json:"registered"`
	Released   int               `json:"released"`
	Leaked     int               `json:"leaked"`
	Drained    int               `json:"drained"`
	Groups     []LeakGroupResult `json:"groups"`
}

// LeakGroupResult is one line of the leak report.
type LeakGroupResult struct {
	Type     string `json:"type"`
	Strategy string `json:"strategy"`
	Count    int    `json:"count"`
}

func runLeaks() error {
	if err := checkPositive("iterations", iterations); err != nil {
		return err
	}
	if leakRelease < 0 || leakRelease > iterations {
		return fmt.Errorf("--release must be between 0 and %d, got %d", iterations, leakRelease)
	}

	opts := []registry.Option{registry.WithLeakWriter(nil), registry.WithDrainOnShutdown(leakDrain)}
	r := registry.New(opts...)

	destroyed := 0
	addrs := make([]uintptr, iterations)
	for i := range addrs {
		id := uuid.New()
		// Alternate strategies so the report has more than one group.
		if i%2 == 0 {
			addrs[i] = registry.RegisterBox(r, &id, func(*uuid.UUID) { destroyed++ })
		} else {
			addrs[i] = registry.RegisterShared(r, registry.NewShared(&id, func(*uuid.UUID) { destroyed++ }))
		}
	}
	for _, addr := range addrs[:leakRelease] {
		if err := r.Release(addr); err != nil {
			return err
		}
	}

	leaks := r.Shutdown()
	res := LeaksResult{
		Registered: iterations,
		Released:   leakRelease,
		Leaked:     leaks.Count,
		Drained:    destroyed - leakRelease,
	}
	for _, g := range leaks.Groups {
		res.Groups = append(res.Groups, LeakGroupResult{Type: g.Tag.String(), Strategy: g.Strategy.String(), Count: g.Count})
	}

	if err := report(res, func() {
		printInfo("Registered:  %d\n", res.Registered)
		printInfo("Released:    %d\n", res.Released)
		printInfo("Leaked:      %d\n", res.Leaked)
		if leakDrain {
			printInfo("Drained:     %d\n", res.Drained)
		}
		for _, g := range res.Groups {
			printInfo("  - %d %s (%s)\n", g.Count, g.Type, g.Strategy)
		}
	}); err != nil {
		return err
	}

	if want := iterations - leakRelease; leaks.Count != want {
		return fmt.Errorf("leak report counted %d, want %d", leaks.Count, want)
	}
	return nil
}
