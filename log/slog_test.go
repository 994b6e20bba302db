package log_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/taglog/log"
	"go.jacobcolvin.com/taglog/stringtest"
	"go.jacobcolvin.com/taglog/tag"
)

func TestTagForLevel(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		level slog.Level
		want  tag.Tag
	}{
		"below debug":  {level: slog.LevelDebug - 4, want: tag.Debug},
		"debug":        {level: slog.LevelDebug, want: tag.Debug},
		"info":         {level: slog.LevelInfo, want: tag.Info},
		"between":      {level: slog.LevelInfo + 2, want: tag.Info},
		"warn":         {level: slog.LevelWarn, want: tag.Warn},
		"error":        {level: slog.LevelError, want: tag.Error},
		"error plus 4": {level: slog.LevelError + 4, want: tag.Fatal},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, log.TagForLevel(tc.level))
		})
	}
}

func logViaSlog(logger *slog.Logger) {
	logger.Warn("disk low", slog.Int("free", 3))
}

func TestHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	d := log.New(log.WithFields(log.Fields{Tag: true, Func: true}))
	require.True(t, d.Register(&buf, tag.AtOrAbove(tag.Info)))

	logger := slog.New(d.Handler())

	logger.Debug("filtered")
	logViaSlog(logger)
	logger.With("svc", "api").WithGroup("req").Error("failed",
		slog.String("path", "/v1/items"),
		slog.String("reason", "not found"),
		slog.Group("user", slog.Int("id", 7)),
	)

	lines := stringtest.Lines(buf.String())
	require.Len(t, lines, 2)
	assert.Equal(t, "WARN  logViaSlog: disk low free=3", lines[0])
	assert.Equal(t,
		`ERROR TestHandler: failed svc=api req.path=/v1/items req.reason="not found" req.user.id=7`,
		lines[1])
}

func TestHandlerEnabled(t *testing.T) {
	t.Parallel()

	d := log.New()
	d.Register(&bytes.Buffer{}, tag.AtOrAbove(tag.Warn))

	h := d.Handler()
	assert.False(t, h.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, h.Enabled(t.Context(), slog.LevelWarn))
	assert.True(t, h.Enabled(t.Context(), slog.LevelError+4))
}
