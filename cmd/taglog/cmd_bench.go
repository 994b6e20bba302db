package main

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"go.jacobcolvin.com/taglog/log"
	"go.jacobcolvin.com/taglog/profile"
	"go.jacobcolvin.com/taglog/tag"
)

// countingWriter counts the lines and bytes it discards.
type countingWriter struct {
	lines atomic.Uint64
	bytes atomic.Uint64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.lines.Add(1)
	w.bytes.Add(uint64(len(p)))

	return len(p), nil
}

func (a *app) benchCmd() *cobra.Command {
	var (
		workers int
		lines   int
	)

	profCfg := profile.NewConfig()

	cmd := &cobra.Command{
		Use:   "bench [flags]",
		Short: "Measure dispatch throughput from concurrent emitters",
		Long: `bench emits lines from several goroutines at once through the configured
sinks plus an internal counting sink, then reports the throughput. Use
--profile=mutex,cpu to capture contention on the dispatcher.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if workers < 1 || lines < 1 {
				return fmt.Errorf("%w: --workers and --lines must be positive", log.ErrInvalidArgument)
			}

			session, err := profCfg.NewSession()
			if err != nil {
				return err
			}

			var counter countingWriter

			return a.withSinks(cmd, false, func() error {
				err := session.Start()
				if err != nil {
					return err
				}

				elapsed := runBench(a.d, workers, lines)

				paths, err := session.Stop()
				for _, p := range paths {
					a.diag.Info("profile written", slog.String("path", p))
				}

				if err != nil {
					return err
				}

				n := counter.lines.Load()
				_, err = fmt.Fprintf(cmd.OutOrStdout(),
					"lines: %d\nbytes: %d\nelapsed: %s\nrate: %.0f lines/s\n",
					n, counter.bytes.Load(), elapsed.Round(time.Microsecond), float64(n)/elapsed.Seconds())
				if err != nil {
					return fmt.Errorf("write report: %w", err)
				}

				return nil
			}, log.Sink{W: &counter, Mask: tag.All})
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "number of concurrent emitters")
	cmd.Flags().IntVarP(&lines, "lines", "n", 10000, "lines emitted by each worker")
	profCfg.RegisterFlags(cmd.Flags())

	err := profCfg.RegisterCompletions(cmd)
	if err != nil {
		a.diag.Warn("register completions", slog.Any("err", err))
	}

	return cmd
}

// runBench emits lines from each of workers goroutines and returns the wall
// time taken.
func runBench(d *log.Dispatcher, workers, lines int) time.Duration {
	var wg sync.WaitGroup

	start := time.Now()

	for id := range workers {
		wg.Go(func() {
			benchWorker(d, id, lines)
		})
	}

	wg.Wait()

	return time.Since(start)
}

func benchWorker(d *log.Dispatcher, id, lines int) {
	for i := range lines {
		d.Infof("worker %d line %d", id, i)
	}
}
