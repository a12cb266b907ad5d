package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/pabello/TwitterAnalyzer/internal/record"
	"github.com/pabello/TwitterAnalyzer/internal/tweetlog"
)

// workspace is a throwaway data layout with a config file pointing at it.
// Command tests run the real commands against it.
type workspace struct {
	root       string
	configPath string
	outputs    string
	analyses   string
	plots      string
	archives   string
	topicsFile string
}

// newWorkspace creates the workspace under t.TempDir. extraYAML is appended
// to the generated config for per-test feed or watch sections.
func newWorkspace(t *testing.T, extraYAML string) workspace {
	t.Helper()

	root := t.TempDir()

	ws := workspace{
		root:       root,
		configPath: filepath.Join(root, ".twitteranalyzer.yaml"),
		outputs:    filepath.Join(root, "outputs"),
		analyses:   filepath.Join(root, "analyses"),
		plots:      filepath.Join(root, "plots"),
		archives:   filepath.Join(root, "archives"),
		topicsFile: filepath.Join(root, "topics.txt"),
	}

	stopWordsFile := filepath.Join(root, "word_blacklist.txt")
	require.NoError(t, os.WriteFile(stopWordsFile, []byte("the and for with\n"), 0o600))

	cfg := fmt.Sprintf(`data:
  outputs_dir: %s
  analyses_dir: %s
  plots_dir: %s
  archives_dir: %s
  topics_file: %s
  stop_words_file: %s
%s`, ws.outputs, ws.analyses, ws.plots, ws.archives, ws.topicsFile, stopWordsFile, extraYAML)

	require.NoError(t, os.WriteFile(ws.configPath, []byte(cfg), 0o600))

	return ws
}

func (ws workspace) globals() *GlobalOptions {
	return &GlobalOptions{ConfigPath: ws.configPath}
}

// registerTopic appends a topic line to the workspace's topic list.
func (ws workspace) registerTopic(t *testing.T, topic string) {
	t.Helper()

	f, err := os.OpenFile(ws.topicsFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	require.NoError(t, err)

	_, err = fmt.Fprintln(f, topic)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

// seedLog writes records to the topic's main log, newest first.
func (ws workspace) seedLog(t *testing.T, topic string, records ...record.Record) {
	t.Helper()

	store := tweetlog.NewStore(ws.outputs)

	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = record.Encode(r)
	}

	require.NoError(t, store.Append(topic, lines))
}

func testRecord(id int64, text string) record.Record {
	return record.Record{
		ID:            id,
		Date:          time.Date(2019, 10, 3, 12, 0, 0, 0, time.UTC),
		ScreenName:    "ada",
		UserLocation:  "Lisbon",
		UserFollowers: 42,
		RetweetCount:  3,
		FavoriteCount: 5,
		Language:      "en",
		FullText:      text,
	}
}

// runCommand executes a built command with args and returns its combined
// output.
func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}
