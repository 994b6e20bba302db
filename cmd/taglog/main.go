// Command taglog writes tagged log lines to a configurable set of sinks.
//
// # Usage
//
//	taglog [flags] emit [-t tag] [-l label] <message>...
//	taglog [flags] pipe [-t tag] [-l label] [--parse-tag] < input
//	taglog [flags] demo
//	taglog [flags] watch <file>
//	taglog [flags] bench [-w workers] [-n lines] [--profile kinds]
//	taglog schema
//	taglog version
//
// Sinks are given with the repeatable --sink flag as path=tags, where path is
// a file, "-"/"stderr" or "stdout", and tags is a mask expression such as
// "all", "error+" or "debug,info". Without any sink, lines go to stderr.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"go.jacobcolvin.com/taglog/diag"
	"go.jacobcolvin.com/taglog/log"
	"go.jacobcolvin.com/taglog/tag"
)

func main() {
	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	a.installDiag = true

	err := a.rootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// app holds state shared by all subcommands.
type app struct {
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
	logCfg      *log.Config
	diagCfg     *diag.Config
	diag        *slog.Logger
	d           *log.Dispatcher
	files       []*os.File
	installDiag bool
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
		logCfg:  log.NewConfig(),
		diagCfg: diag.NewConfig(),
		diag:    slog.New(slog.DiscardHandler),
	}
}

func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "taglog",
		Short: "Write tagged log lines to filtered sinks",
		Long: `taglog renders timestamped, tagged log lines and fans them out to a bounded
set of sinks. Each sink receives only the tags in its mask.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			h, err := a.diagCfg.NewHandler(a.stderr)
			if err != nil {
				return err
			}

			a.diag = slog.New(h)
			if a.installDiag {
				slog.SetDefault(a.diag)
			}

			return nil
		},
	}

	rootCmd.SetIn(a.stdin)
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	a.logCfg.RegisterFlags(rootCmd.PersistentFlags())
	a.diagCfg.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		a.emitCmd(),
		a.pipeCmd(),
		a.demoCmd(),
		a.watchCmd(),
		a.benchCmd(),
		schemaCmd(),
		versionCmd(),
	)

	for _, register := range []func(*cobra.Command) error{
		a.logCfg.RegisterCompletions,
		a.diagCfg.RegisterCompletions,
	} {
		err := register(rootCmd)
		if err != nil {
			fmt.Fprintf(a.stderr, "register completions: %v\n", err)
		}
	}

	return rootCmd
}

// setup builds the dispatcher and registers the configured sinks. When no
// sink is configured and useDefault is set, stderr receives every tag.
func (a *app) setup(cmd *cobra.Command, useDefault bool, extra ...log.Sink) error {
	err := a.logCfg.Load(cmd.Flags())
	if err != nil {
		return err
	}

	d, err := a.logCfg.NewDispatcher(log.WithErrorHandler(func(s log.Sink, err error) {
		a.diag.Warn("sink write failed", slog.Any("err", err), slog.String("mask", s.Mask.String()))
	}))
	if err != nil {
		return err
	}

	a.d = d

	for _, s := range extra {
		err = a.register(s.W, s.Mask, "internal")
		if err != nil {
			return err
		}
	}

	specs, err := a.logCfg.SinkSpecs()
	if err != nil {
		return err
	}

	if len(specs) == 0 && useDefault {
		specs = []log.SinkSpec{{Path: "-"}}
	}

	for _, spec := range specs {
		w, err := a.open(spec)
		if err != nil {
			return err
		}

		m, err := spec.Mask()
		if err != nil {
			return err
		}

		err = a.register(w, m, spec.Path)
		if err != nil {
			return err
		}
	}

	return nil
}

func (a *app) register(w io.Writer, m tag.Mask, name string) error {
	if !a.d.Register(w, m) {
		return fmt.Errorf("%w: cannot add %s (capacity %d)", log.ErrRegistryFull, name, a.d.Cap())
	}

	a.diag.Debug("sink registered", slog.String("sink", name), slog.String("tags", m.String()))

	return nil
}

// open resolves a sink destination. Files are opened for append and closed
// by [app.teardown].
func (a *app) open(spec log.SinkSpec) (io.Writer, error) {
	switch {
	case spec.IsStderr():
		return a.stderr, nil
	case spec.IsStdout():
		return a.stdout, nil
	}

	f, err := os.OpenFile(spec.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec // Sink path from CLI flag is expected.
	if err != nil {
		return nil, fmt.Errorf("open sink: %w", err)
	}

	a.files = append(a.files, f)

	return f, nil
}

// teardown forgets all sinks before closing the files it opened.
func (a *app) teardown() error {
	if a.d != nil {
		a.d.Clear()
	}

	var errs []error

	for _, f := range a.files {
		err := f.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("close sink: %w", err))
		}
	}

	a.files = nil

	return errors.Join(errs...)
}

// withSinks runs fn between [app.setup] and [app.teardown].
func (a *app) withSinks(cmd *cobra.Command, useDefault bool, fn func() error, extra ...log.Sink) (err error) {
	defer func() {
		err = errors.Join(err, a.teardown())
	}()

	err = a.setup(cmd, useDefault, extra...)
	if err != nil {
		return err
	}

	return fn()
}
