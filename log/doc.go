// Package log writes tagged, timestamped lines to a bounded set of sinks.
//
// A [Dispatcher] owns a [Registry] of up to [DefaultCapacity] sinks. Each
// sink is an [io.Writer] paired with a [tag.Mask]; a line reaches every sink
// whose mask contains the line's tag, in registration order. The dispatcher
// only borrows writers: opening and closing them is the caller's job, and
// [Dispatcher.Clear] never closes anything.
//
//	errFile, _ := os.Create("error.log")
//	defer errFile.Close()
//
//	d := log.New(log.WithColor(log.ColorAuto))
//	d.Register(os.Stderr, tag.All)
//	d.Register(errFile, tag.AtOrAbove(tag.Error))
//	defer d.Clear()
//
//	d.Infof("Testing formats: %d", 123)
//
// which writes a line such as
//
//	2024-05-01 14:32:07 INFO  main: Testing formats: 123
//
// to stderr only. The date, time, tag and function fields can each be
// disabled with [Fields]. The function field is the name of the function that
// called [Dispatcher.Infof] and friends; use [Dispatcher.Emit] to supply a
// label explicitly.
//
// Logging never fails from the caller's point of view. A sink whose write
// fails is skipped and the remaining sinks still receive the line; writers
// with a Flush method are flushed after every line.
//
// [Config] binds the dispatcher settings to CLI flags via
// [github.com/spf13/pflag], with shell completion via
// [github.com/spf13/cobra], and can merge a YAML [FileConfig].
//
// A [Publisher] is an in-memory sink that fans entries out to channel
// subscribers, and [Dispatcher.Handler] adapts a dispatcher to [log/slog].
package log
