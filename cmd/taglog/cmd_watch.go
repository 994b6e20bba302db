package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	tea "charm.land/bubbletea/v2"

	"go.jacobcolvin.com/taglog/log"
	"go.jacobcolvin.com/taglog/tag"
)

const defaultWatchKeep = 500

func (a *app) watchCmd() *cobra.Command {
	var (
		lf       lineFlags
		parseTag bool
		keep     int
	)

	cmd := &cobra.Command{
		Use:   "watch [flags] <file>",
		Short: "Replay a log file through the sinks and browse it interactively",
		Long: `watch emits every line of file through the configured sinks while an
interactive viewer shows the dispatched entries. Press d, i, w, e or f to
toggle a tag and q to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := lf.parseTag()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer f.Close() //nolint:errcheck // Read-only.

			pub := log.NewPublisher(log.WithBufferSize(keep))
			sub := pub.Subscribe()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			return a.withSinks(cmd, false, func() error {
				done := a.startFeed(ctx, f, t, lf.label, parseTag, pub)
				defer func() {
					cancel()
					<-done
				}()

				p := tea.NewProgram(newWatchModel(sub, args[0], keep),
					tea.WithContext(ctx),
					tea.WithInput(a.stdin),
					tea.WithOutput(a.stdout),
				)

				_, err := p.Run()
				if err != nil {
					return fmt.Errorf("run viewer: %w", err)
				}

				return nil
			}, log.Sink{W: pub, Mask: tag.All})
		},
	}

	lf.register(cmd, "watch")
	cmd.Flags().BoolVar(&parseTag, "parse-tag", true, `detect a leading "LEVEL:" or "[LEVEL]" tag on each line`)
	cmd.Flags().IntVar(&keep, "keep", defaultWatchKeep, "number of entries kept in the viewer")

	return cmd
}

// startFeed runs [app.feed] in the background and closes pub when it
// returns. The returned channel is closed once the goroutine has exited.
func (a *app) startFeed(
	ctx context.Context, r io.Reader, t tag.Tag, label string, parseTag bool, pub *log.Publisher,
) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer pub.Close() //nolint:errcheck // Never fails.

		err := a.feed(ctx, r, t, label, parseTag)
		if err != nil && ctx.Err() == nil {
			a.diag.Warn("read input", "err", err)
		}
	}()

	return done
}

// feed emits each line of r until EOF or ctx is done.
func (a *app) feed(ctx context.Context, r io.Reader, t tag.Tag, label string, parseTag bool) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		lt, msg := t, scanner.Text()
		if parseTag {
			lt, msg = splitTagPrefix(msg, t)
		}

		a.d.Emit(lt, label, "%s", msg)
	}

	return scanner.Err()
}

type (
	entryMsg    log.Entry
	feedDoneMsg struct{}
)

var (
	watchTitleStyle = lipgloss.NewStyle().Bold(true)
	watchOffStyle   = lipgloss.NewStyle().Faint(true)
	watchHelpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// watchModel is the bubbletea model for the watch viewer.
type watchModel struct {
	sub     *log.Subscription
	name    string
	entries []log.Entry
	keep    int
	height  int
	visible tag.Mask
	done    bool
}

func newWatchModel(sub *log.Subscription, name string, keep int) *watchModel {
	return &watchModel{
		sub:     sub,
		name:    name,
		keep:    max(keep, 1),
		visible: tag.All,
	}
}

// next waits for the next entry on the subscription.
func (m *watchModel) next() tea.Msg {
	e, ok := <-m.sub.C()
	if !ok {
		return feedDoneMsg{}
	}

	return entryMsg(e)
}

// Init starts waiting for entries.
func (m *watchModel) Init() tea.Cmd {
	return m.next
}

// Update handles entries, tag toggles, resize, and quit messages.
func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.sub.Close()

			return m, tea.Quit

		case "d":
			m.toggle(tag.Debug)
		case "i":
			m.toggle(tag.Info)
		case "w":
			m.toggle(tag.Warn)
		case "e":
			m.toggle(tag.Error)
		case "f":
			m.toggle(tag.Fatal)
		}

	case tea.WindowSizeMsg:
		m.height = msg.Height

	case entryMsg:
		m.entries = append(m.entries, log.Entry(msg))
		if over := len(m.entries) - m.keep; over > 0 {
			m.entries = append(m.entries[:0], m.entries[over:]...)
		}

		return m, m.next

	case feedDoneMsg:
		m.done = true
	}

	return m, nil
}

func (m *watchModel) toggle(t tag.Tag) {
	m.visible ^= t.Mask()
}

// lines returns the visible entries, oldest first.
func (m *watchModel) lines() []string {
	var out []string

	for _, e := range m.entries {
		if m.visible.Has(e.Tag) {
			out = append(out, strings.TrimRight(string(e.Text), "\n"))
		}
	}

	return out
}

func (m *watchModel) header() string {
	var b strings.Builder

	b.WriteString(watchTitleStyle.Render(m.name))

	for _, t := range tag.Tags() {
		b.WriteByte(' ')

		name := strings.TrimSpace(t.Label())
		if m.visible.Has(t) {
			b.WriteString(name)
		} else {
			b.WriteString(watchOffStyle.Render(strings.ToLower(name)))
		}
	}

	fmt.Fprintf(&b, "  %d entries", len(m.entries))

	if n := m.sub.Dropped(); n > 0 {
		fmt.Fprintf(&b, ", %d dropped", n)
	}

	if m.done {
		b.WriteString(", end of input")
	}

	return b.String()
}

// render draws the header, the newest visible entries that fit, and help.
func (m *watchModel) render() string {
	lines := m.lines()
	if m.height > 2 && len(lines) > m.height-2 {
		lines = lines[len(lines)-(m.height-2):]
	}

	var b strings.Builder

	b.WriteString(m.header())
	b.WriteByte('\n')

	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}

	b.WriteString(watchHelpStyle.Render("d/i/w/e/f toggle tags, q quit"))

	return b.String()
}

// View renders the viewer on the alternate screen.
func (m *watchModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true

	return v
}
