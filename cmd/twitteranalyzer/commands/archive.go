package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pierrec/lz4/v4"
	"github.com/spf13/cobra"

	pkgobs "github.com/pabello/TwitterAnalyzer/pkg/observability"
	"github.com/pabello/TwitterAnalyzer/pkg/safeconv"
)

const (
	archiveDirPerm  = 0o750
	archiveFilePerm = 0o600
)

// ArchiveCommand holds configuration for the archive command.
type ArchiveCommand struct {
	globals *GlobalOptions
}

// NewArchiveCommand creates the archive command.
func NewArchiveCommand(globals *GlobalOptions) *cobra.Command {
	arc := &ArchiveCommand{globals: globals}

	cmd := &cobra.Command{
		Use:   "archive [topics...]",
		Short: "Write compressed snapshots of topic logs",
		Long: `Archive writes an lz4-compressed snapshot of each topic's log into the
archives directory, named <topic>-<date>.txt.lz4. The live log is left
untouched.`,
		RunE: arc.run,
	}

	return cmd
}

func (arc *ArchiveCommand) run(cmd *cobra.Command, args []string) error {
	app, err := newApp(arc.globals, pkgobs.ModeCLI)
	if err != nil {
		return err
	}
	defer app.close()

	list, err := app.topicList(args)
	if err != nil {
		return err
	}

	dir := app.cfg.Data.ArchivesDir

	err = os.MkdirAll(dir, archiveDirPerm)
	if err != nil {
		return fmt.Errorf("create archives dir: %w", err)
	}

	date := time.Now().Format(time.DateOnly)
	out := cmd.OutOrStdout()

	for _, topic := range list {
		exists, existsErr := app.logs.Exists(topic)
		if existsErr != nil {
			return existsErr
		}

		if !exists {
			fmt.Fprintf(out, "%s: no log to archive\n", topic)

			continue
		}

		dst := filepath.Join(dir, fmt.Sprintf("%s-%s.txt.lz4", topic, date))

		logSize, archiveSize, archiveErr := compressFile(app.logs.MainPath(topic), dst)
		if archiveErr != nil {
			return fmt.Errorf("archive %s: %w", topic, archiveErr)
		}

		fmt.Fprintf(out, "%s: %s -> %s (%s)\n",
			topic, humanize.Bytes(safeconv.MustInt64ToUint64(logSize)), dst,
			humanize.Bytes(safeconv.MustInt64ToUint64(archiveSize)))
	}

	return nil
}

// compressFile streams src through an lz4 writer into dst, returning the
// source and compressed sizes.
func compressFile(src, dst string) (srcSize, dstSize int64, err error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, 0, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, archiveFilePerm)
	if err != nil {
		return 0, 0, err
	}

	zw := lz4.NewWriter(out)

	srcSize, err = io.Copy(zw, in)
	if err == nil {
		err = zw.Close()
	}

	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}

	if err != nil {
		return 0, 0, err
	}

	info, err := os.Stat(dst)
	if err != nil {
		return 0, 0, err
	}

	return srcSize, info.Size(), nil
}
