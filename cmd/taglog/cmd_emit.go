package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"go.jacobcolvin.com/taglog/tag"
)

// lineFlags are shared by commands that log caller-supplied text.
type lineFlags struct {
	tag   string
	label string
}

func (f *lineFlags) register(cmd *cobra.Command, defaultLabel string) {
	cmd.Flags().StringVarP(&f.tag, "tag", "t", "info",
		fmt.Sprintf("tag for each line, one of: %s", tag.GetAllTagStrings()))
	cmd.Flags().StringVarP(&f.label, "label", "l", defaultLabel, "context label printed before the message")

	//nolint:errcheck // The flag was registered above.
	cmd.RegisterFlagCompletionFunc("tag",
		cobra.FixedCompletions(tag.GetAllTagStrings(), cobra.ShellCompDirectiveNoFileComp))
}

func (f *lineFlags) parseTag() (tag.Tag, error) {
	t, err := tag.Parse(f.tag)
	if err != nil {
		return 0, fmt.Errorf("--tag: %w", err)
	}

	return t, nil
}

func (a *app) emitCmd() *cobra.Command {
	var lf lineFlags

	cmd := &cobra.Command{
		Use:   "emit [flags] <message>...",
		Short: "Log one line built from the arguments",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := lf.parseTag()
			if err != nil {
				return err
			}

			return a.withSinks(cmd, true, func() error {
				a.d.Emit(t, lf.label, "%s", strings.Join(args, " "))

				return nil
			})
		},
	}

	lf.register(cmd, "taglog")

	return cmd
}

func (a *app) pipeCmd() *cobra.Command {
	var (
		lf       lineFlags
		parseTag bool
	)

	cmd := &cobra.Command{
		Use:   "pipe [flags]",
		Short: "Log each line read from stdin",
		Long: `pipe logs every line read from stdin. With --parse-tag, a leading "LEVEL:" or
"[LEVEL]" selects the tag for that line and is removed from the message.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := lf.parseTag()
			if err != nil {
				return err
			}

			return a.withSinks(cmd, true, func() error {
				scanner := bufio.NewScanner(a.stdin)
				for scanner.Scan() {
					lt, msg := t, scanner.Text()
					if parseTag {
						lt, msg = splitTagPrefix(msg, t)
					}

					a.d.Emit(lt, lf.label, "%s", msg)
				}

				err := scanner.Err()
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}

				return nil
			})
		},
	}

	lf.register(cmd, "stdin")
	cmd.Flags().BoolVar(&parseTag, "parse-tag", false, `detect a leading "LEVEL:" or "[LEVEL]" tag on each line`)

	return cmd
}

// splitTagPrefix detects a leading "LEVEL:" or "[LEVEL]" word. It returns
// fallback and the unchanged line when no known tag is found.
func splitTagPrefix(line string, fallback tag.Tag) (tag.Tag, string) {
	s := strings.TrimLeft(line, " \t")

	var word, rest string

	if strings.HasPrefix(s, "[") {
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return fallback, line
		}

		word, rest = s[1:end], s[end+1:]
	} else {
		end := strings.IndexByte(s, ':')
		if end < 0 {
			return fallback, line
		}

		word, rest = s[:end], s[end+1:]
	}

	t, err := tag.Parse(word)
	if err != nil {
		return fallback, line
	}

	return t, strings.TrimLeft(rest, " \t")
}
