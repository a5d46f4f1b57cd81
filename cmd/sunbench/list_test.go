package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCmd_Default(t *testing.T) {
	out, err := executeCommand(t, "list")
	require.NoError(t, err)

	assert.Contains(t, out, "3d")
	assert.Contains(t, out, "  3bit-bits-in-byte\n")
	assert.Contains(t, out, "  validate-input\n")
	assert.True(t, strings.HasSuffix(out, "26 tests in 9 categories\n"))

	// Categories are listed in suite order.
	assert.Less(t, strings.Index(out, "controlflow"), strings.Index(out, "crypto"))
	assert.Less(t, strings.Index(out, "regexp"), strings.Index(out, "string"))
}

func TestListCmd_Configured(t *testing.T) {
	t.Setenv("SUNBENCH_TESTS", "b-one a-two b-three")
	out, err := executeCommand(t, "list")
	require.NoError(t, err)

	assert.Less(t, strings.Index(out, "b"), strings.Index(out, "a"))
	assert.Contains(t, out, "  one\n  three\n")
	assert.True(t, strings.HasSuffix(out, "3 tests in 2 categories\n"))
}
