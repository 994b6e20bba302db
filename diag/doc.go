// Package diag builds the [log/slog] handler that a program uses for its own
// diagnostics, as opposed to the tagged application lines written by
// [go.jacobcolvin.com/taglog/log].
//
// Three formats are supported: [FormatText] (styled by charm log),
// [FormatJSON] and [FormatLogfmt]. [Config] wires the level and format to CLI
// flags:
//
//	cfg := diag.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//	cfg.RegisterCompletions(rootCmd)
//
//	handler, err := cfg.NewHandler(os.Stderr)
//	slog.SetDefault(slog.New(handler))
package diag
