package main

import (
	"github.com/spf13/cobra"

	"go.jacobcolvin.com/taglog/log"
)

func (a *app) demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Log one line of every tag",
		Long: `demo logs one line of each tag from two functions, which is handy for
checking how sinks, masks and fields are configured. Try:

  taglog demo --sink=- --sink=error.log=error+ --sink=debug.log=info-`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSinks(cmd, true, func() error {
				runDemo(a.d)

				return nil
			})
		},
	}
}

func runDemo(d *log.Dispatcher) {
	d.Infof("Testing formats: %d", 123)
	reachPoint(d)
	d.Warnf("Got negative value")
	d.Errorf("Unexpected value: %v", nil)
	d.Fatalf("Failed to allocate enough memory")
}

func reachPoint(d *log.Dispatcher) {
	d.Debugf("Reached the desired point...")
}
