package version_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/taglog/version"
)

func TestFprint(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, version.Fprint(&buf))

	out := buf.String()
	assert.Contains(t, out, "taglog "+version.Version)
	assert.Contains(t, out, "revision: "+version.Revision)
	assert.Contains(t, out, version.GoVersion)
}
