package mcp

import (
	"context"
	"testing"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIList(t *testing.T) {
	r := testutil.NewFakeRunner("claude").Respond("claude mcp list", "notes: ok\n", 0)
	cli := &CLI{Runner: r, Command: []string{"claude", "mcp"}}

	out, err := cli.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "notes: ok\n", out)
	assert.Equal(t, []string{"claude mcp list"}, r.CommandLines())
}

func TestCLIGetAndRaw(t *testing.T) {
	r := testutil.NewFakeRunner("claude")
	cli := &CLI{Runner: r, Command: []string{"claude", "mcp"}}

	_, err := cli.Get(context.Background(), "notes")
	require.NoError(t, err)
	_, err = cli.Run(context.Background(), "add", "x", "--", "npx", "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"claude mcp get notes", "claude mcp add x -- npx x"}, r.CommandLines())
}

func TestCLIMissingBinary(t *testing.T) {
	cli := &CLI{Runner: testutil.NewFakeRunner(), Command: []string{"claude", "mcp"}}
	assert.False(t, cli.Available())

	_, err := cli.List(context.Background())
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestCLIEmptyCommand(t *testing.T) {
	cli := &CLI{Runner: testutil.NewFakeRunner()}
	_, err := cli.List(context.Background())
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
}

func TestCLIFailureKeepsOutput(t *testing.T) {
	r := testutil.NewFakeRunner("claude").Respond("claude mcp get", "no such server\n", 1)
	cli := &CLI{Runner: r, Command: []string{"claude", "mcp"}}

	out, err := cli.Get(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, "no such server\n", out)
}
