package commands

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlotCommand_RendersDashboard(t *testing.T) {
	ws := newWorkspace(t, "")
	seedCatsLog(t, ws)

	_, err := runCommand(t, NewAnalyzeCommand(ws.globals()), "cats")
	require.NoError(t, err)

	out, err := runCommand(t, NewPlotCommand(ws.globals()), "cats")
	require.NoError(t, err)

	assert.Contains(t, out, "cats (en): wrote")

	page, err := os.ReadFile(ws.plots + "/cats_en.html")
	require.NoError(t, err)
	assert.Contains(t, string(page), "echarts")
}

func TestPlotCommand_MissingDocument(t *testing.T) {
	ws := newWorkspace(t, "")

	_, err := runCommand(t, NewPlotCommand(ws.globals()), "cats")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoDocument)
}
