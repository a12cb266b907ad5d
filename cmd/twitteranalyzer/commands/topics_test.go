package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pabello/TwitterAnalyzer/internal/topics"
)

func TestTopicsCommand_AddThenList(t *testing.T) {
	ws := newWorkspace(t, "")

	out, err := runCommand(t, NewTopicsCommand(ws.globals()), "add", "Cats", "dogs")
	require.NoError(t, err)

	assert.Contains(t, out, "cats: added")
	assert.Contains(t, out, "dogs: added")

	out, err = runCommand(t, NewTopicsCommand(ws.globals()), "list")
	require.NoError(t, err)

	assert.Contains(t, out, "cats")
	assert.Contains(t, out, "dogs")
	assert.Contains(t, out, "2 TOPICS")
}

func TestTopicsCommand_AddDuplicate(t *testing.T) {
	ws := newWorkspace(t, "")

	_, err := runCommand(t, NewTopicsCommand(ws.globals()), "add", "cats")
	require.NoError(t, err)

	out, err := runCommand(t, NewTopicsCommand(ws.globals()), "add", "cats")
	require.NoError(t, err)

	assert.Contains(t, out, "cats: already registered")
}

func TestTopicsCommand_Remove(t *testing.T) {
	ws := newWorkspace(t, "")

	_, err := runCommand(t, NewTopicsCommand(ws.globals()), "add", "cats")
	require.NoError(t, err)

	out, err := runCommand(t, NewTopicsCommand(ws.globals()), "remove", "cats")
	require.NoError(t, err)
	assert.Contains(t, out, "cats: removed")

	out, err = runCommand(t, NewTopicsCommand(ws.globals()), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no topics registered")
}

func TestTopicsCommand_RemoveUnknown(t *testing.T) {
	ws := newWorkspace(t, "")

	_, err := runCommand(t, NewTopicsCommand(ws.globals()), "remove", "ghosts")
	require.Error(t, err)
	assert.ErrorIs(t, err, topics.ErrUnknownTopic)
}

func TestTopicsCommand_ListShowsLogAndAnalysisState(t *testing.T) {
	ws := newWorkspace(t, "")
	seedCatsLog(t, ws)
	ws.registerTopic(t, "cats")

	_, err := runCommand(t, NewAnalyzeCommand(ws.globals()), "cats")
	require.NoError(t, err)

	out, err := runCommand(t, NewTopicsCommand(ws.globals()), "list")
	require.NoError(t, err)

	assert.Contains(t, out, "cats")
	assert.Contains(t, out, "en")
	assert.Contains(t, out, "3")
	assert.Contains(t, out, " B")
	assert.Contains(t, out, "1 TOPICS")
}
