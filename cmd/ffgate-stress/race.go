package main

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/obinnaokechukwu/ffgate/registry"
)

func init() {
	rootCmd.AddCommand(newRaceCmd())
}

func newRaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "race",
		Short: "Release the same address from many goroutines at once",
		Long: `The race command registers one value per round and lets every worker
release it at the same moment. Exactly one release per round must succeed and
the value's destructor must run exactly once; every other release must be
rejected as an untracked pointer.

Example:
  ffgate-stress race -g 64 -n 500
  ffgate-stress race --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRace()
		},
	}
	return cmd
}

// RaceResult summarizes a race run.
type RaceResult struct {
	Rounds     int    `json:"rounds"`
	Goroutines int    `json:"goroutines"`
	Released   int64  `json:"released"`
	Rejected   int64  `json:"rejected"`
	Violations int    `json:"violations"`
	Elapsed    string `json:"elapsed"`
}

type racePayload struct {
	round int
}

func runRace() error {
	if err := checkPositive("goroutines", goroutines); err != nil {
		return err
	}
	if err := checkPositive("iterations", iterations); err != nil {
		return err
	}

	r := newRegistry()
	res := RaceResult{Rounds: iterations, Goroutines: goroutines}
	start := time.Now()

	for round := 0; round < iterations; round++ {
		var destroyed atomic.Int32
		addr := registry.RegisterBox(r, &racePayload{round: round}, func(*racePayload) { destroyed.Add(1) })

		var released, rejected atomic.Int64
		gate := make(chan struct{})
		var g errgroup.Group
		for i := 0; i < goroutines; i++ {
			g.Go(func() error {
				<-gate
				err := r.Release(addr)
				switch {
				case err == nil:
					released.Add(1)
				case registry.IsUntracked(err):
					rejected.Add(1)
				default:
					return fmt.Errorf("round %d: unexpected release error: %w", round, err)
				}
				return nil
			})
		}
		close(gate)
		if err := g.Wait(); err != nil {
			return err
		}

		if released.Load() != 1 || destroyed.Load() != 1 {
			res.Violations++
		}
		res.Released += released.Load()
		res.Rejected += rejected.Load()
	}
	res.Elapsed = time.Since(start).Round(time.Millisecond).String()

	if err := report(res, func() {
		printInfo("Rounds:      %d x %d goroutines\n", res.Rounds, res.Goroutines)
		printInfo("Released:    %d\n", res.Released)
		printInfo("Rejected:    %d\n", res.Rejected)
		printInfo("Violations:  %d\n", res.Violations)
		printInfo("Elapsed:     %s\n", res.Elapsed)
	}); err != nil {
		return err
	}

	if res.Violations > 0 {
		return fmt.Errorf("%d round(s) did not release exactly once", res.Violations)
	}
	if r.Len() != 0 {
		return errors.New("registry not empty after race")
	}
	return nil
}
