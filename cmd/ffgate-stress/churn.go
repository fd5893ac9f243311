package main

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/obinnaokechukwu/ffgate/registry"
)

func init() {
	rootCmd.AddCommand(newChurnCmd())
}

func newChurnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "churn",
		Short: "Register, validate and release values from concurrent workers",
		Long: `The churn command runs workers that each register UUID payloads in
every ownership strategy, read them back, try to read them as a type with the
same layout ([16]byte), and release them. Type confusion must always be
rejected and the registry must be empty at the end.

Example:
  ffgate-stress churn -g 32 -n 10000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChurn()
		},
	}
	return cmd
}

// ChurnResult summarizes a churn run.
type ChurnResult struct {
	Workers      int     `json:"workers"`
	Operations   int64   `json:"operations"`
	Confusions   int64   `json:"confusions_rejected"`
	Leaked       int     `json:"leaked"`
	Elapsed      string  `json:"elapsed"`
	OpsPerSecond float64 `json:"ops_per_second"`
}

type churnStats struct {
	ops        atomic.Int64
	confusions atomic.Int64
}

func runChurn() error {
	if err := checkPositive("goroutines", goroutines); err != nil {
		return err
	}
	if err := checkPositive("iterations", iterations); err != nil {
		return err
	}

	r := newRegistry()
	var stats churnStats
	start := time.Now()

	var g errgroup.Group
	for w := 0; w < goroutines; w++ {
		g.Go(func() error {
			for i := 0; i < iterations; i++ {
				if err := churnOnce(r, &stats, i); err != nil {
					return fmt.Errorf("worker %d: %w", w, err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	elapsed := time.Since(start)
	leaks := r.Shutdown()
	res := ChurnResult{
		Workers:      goroutines,
		Operations:   stats.ops.Load(),
		Confusions:   stats.confusions.Load(),
		Leaked:       leaks.Count,
		Elapsed:      elapsed.Round(time.Millisecond).String(),
		OpsPerSecond: float64(stats.ops.Load()) / elapsed.Seconds(),
	}

	if err := report(res, func() {
		printInfo("Workers:     %d\n", res.Workers)
		printInfo("Operations:  %d (%.0f/s)\n", res.Operations, res.OpsPerSecond)
		printInfo("Rejected:    %d type confusions\n", res.Confusions)
		printInfo("Leaked:      %d\n", res.Leaked)
		printInfo("Elapsed:     %s\n", res.Elapsed)
	}); err != nil {
		return err
	}

	if leaks.HasLeaks() {
		return fmt.Errorf("%s", leaks.String())
	}
	return nil
}

// churnOnce runs one register/validate/release cycle for each strategy.
func churnOnce(r *registry.Registry, stats *churnStats, i int) error {
	id := uuid.New()

	var addr uintptr
	switch i % 3 {
	case 0:
		addr = registry.RegisterBox(r, &id, nil)
	case 1:
		addr = registry.RegisterShared(r, registry.NewShared(&id, nil))
	default:
		addr = registry.RegisterMutex(r, registry.NewSharedMutex(id, nil))
	}
	if addr == 0 {
		return fmt.Errorf("register failed: registry poisoned")
	}
	stats.ops.Add(1)

	var got uuid.UUID
	read := func(u *uuid.UUID) error {
		got = *u
		return nil
	}
	var err error
	if i%3 == 2 {
		err = registry.Lock(r, addr, read)
	} else {
		err = registry.Borrow(r, addr, read)
	}
	if err != nil {
		return err
	}
	if got != id {
		return fmt.Errorf("address 0x%x returned %s, want %s", addr, got, id)
	}
	stats.ops.Add(1)

	if _, err := registry.Get[[16]byte](r, addr); !registry.IsWrongType(err) {
		return fmt.Errorf("address 0x%x accepted as [16]byte: %v", addr, err)
	}
	stats.confusions.Add(1)
	stats.ops.Add(1)

	if err := r.Release(addr); err != nil {
		return err
	}
	if err := r.Release(addr); !registry.IsUntracked(err) {
		return fmt.Errorf("second release of 0x%x: got %v", addr, err)
	}
	stats.ops.Add(2)
	return nil
}
