// Package tweetlog implements the per-topic append-only log files and the
// head-file staging protocol.
//
// Each topic owns one main log file, ordered strictly by decreasing record id
// from top to bottom, and at most one transient head file holding records
// newer than everything in the main file. While an incremental fetch pass is
// active only the head file is written, so a concurrent reader of the main
// file always sees a stable view. A completed pass folds the head file into
// the main file with Merge.
package tweetlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pabello/TwitterAnalyzer/internal/record"
)

// ErrNoRecords indicates a log file that exists but holds no lines.
var ErrNoRecords = errors.New("log has no records")

const (
	dirPerm  = 0o750
	filePerm = 0o600

	// maxLineSize bounds a single log line during scans. Records are a few
	// kilobytes at most; anything beyond this is a corrupt file.
	maxLineSize = 1 << 20
)

// Store manages the log files for all topics under one outputs directory.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir. The directory is created lazily on
// first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// MainPath returns the path of the topic's main log file.
func (s *Store) MainPath(topic string) string {
	return filepath.Join(s.dir, topic+".txt")
}

// HeadPath returns the path of the topic's head staging file.
func (s *Store) HeadPath(topic string) string {
	return filepath.Join(s.dir, topic+"_head.txt")
}

// Exists reports whether the topic has a main log file.
func (s *Store) Exists(topic string) (bool, error) {
	return fileExists(s.MainPath(topic))
}

// HasHead reports whether a head file is pending for the topic, which means
// a prior incremental pass was interrupted before its merge completed.
func (s *Store) HasHead(topic string) (bool, error) {
	return fileExists(s.HeadPath(topic))
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}

		return false, fmt.Errorf("stat %s: %w", path, err)
	}

	return true, nil
}

// NewestID returns the id of the newest record in the main log, which is the
// first line of the file. A missing file surfaces as os.ErrNotExist, an empty
// file as ErrNoRecords and an undecodable first line as record.ErrFormat.
func (s *Store) NewestID(topic string) (int64, error) {
	return firstLineID(s.MainPath(topic))
}

func firstLineID(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	if !sc.Scan() {
		if scanErr := sc.Err(); scanErr != nil {
			return 0, fmt.Errorf("read log: %w", scanErr)
		}

		return 0, ErrNoRecords
	}

	return record.DecodeID(sc.Text())
}

// OldestHeadID returns the id of the oldest record in the head file, which is
// its last non-empty line. Cursor bounds for resuming an interrupted pass are
// derived from it.
func (s *Store) OldestHeadID(topic string) (int64, error) {
	f, err := os.Open(s.HeadPath(topic))
	if err != nil {
		return 0, fmt.Errorf("open head: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	last := ""

	for sc.Scan() {
		if sc.Text() != "" {
			last = sc.Text()
		}
	}

	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("read head: %w", err)
	}

	if last == "" {
		return 0, ErrNoRecords
	}

	return record.DecodeID(last)
}

// Append writes encoded lines to the end of the topic's main log.
func (s *Store) Append(topic string, lines []string) error {
	return s.appendLines(s.MainPath(topic), lines)
}

// AppendHead writes encoded lines to the end of the topic's head file,
// creating it if needed.
func (s *Store) AppendHead(topic string, lines []string) error {
	return s.appendLines(s.HeadPath(topic), lines)
}

func (s *Store) appendLines(path string, lines []string) error {
	if len(lines) == 0 {
		return nil
	}

	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return fmt.Errorf("create outputs dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	w := bufio.NewWriter(f)

	for _, line := range lines {
		if _, writeErr := w.WriteString(line); writeErr != nil {
			f.Close()

			return fmt.Errorf("append to %s: %w", path, writeErr)
		}

		if writeErr := w.WriteByte('\n'); writeErr != nil {
			f.Close()

			return fmt.Errorf("append to %s: %w", path, writeErr)
		}
	}

	if err := w.Flush(); err != nil {
		f.Close()

		return fmt.Errorf("flush %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	return nil
}

// DiscardHead removes the topic's head file if one exists. Removing a
// non-existent head is a no-op.
func (s *Store) DiscardHead(topic string) error {
	err := os.Remove(s.HeadPath(topic))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove head: %w", err)
	}

	return nil
}

// Merge folds a completed head file into the main log: the main file's
// contents are appended to the end of the head file (head records are newer
// and already precede them, preserving the global decreasing-id order), then
// the head file is atomically renamed over the main file.
//
// A crash before the rename leaves the original main file untouched and the
// head file discoverable, so the next pass resumes filling it instead of
// starting over. A missing main file degrades to promoting the head file.
func (s *Store) Merge(topic string) error {
	headPath := s.HeadPath(topic)
	mainPath := s.MainPath(topic)

	main, err := os.Open(mainPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("open main log: %w", err)
	}

	if err == nil {
		copyErr := appendFileTo(headPath, main)

		if closeErr := main.Close(); closeErr != nil && copyErr == nil {
			copyErr = fmt.Errorf("close main log: %w", closeErr)
		}

		if copyErr != nil {
			return copyErr
		}
	}

	if err := os.Rename(headPath, mainPath); err != nil {
		return fmt.Errorf("replace main log: %w", err)
	}

	return nil
}

func appendFileTo(path string, src io.Reader) error {
	dst, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("open head: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()

		return fmt.Errorf("append main onto head: %w", err)
	}

	if err := dst.Sync(); err != nil {
		dst.Close()

		return fmt.Errorf("sync head: %w", err)
	}

	if err := dst.Close(); err != nil {
		return fmt.Errorf("close head: %w", err)
	}

	return nil
}

// Stats describes one topic's main log.
type Stats struct {
	Size    int64
	Records int64
}

// Stats returns size and record count for the topic's main log. A missing
// log yields zero stats, not an error.
func (s *Store) Stats(topic string) (Stats, error) {
	info, err := os.Stat(s.MainPath(topic))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Stats{}, nil
		}

		return Stats{}, fmt.Errorf("stat log: %w", err)
	}

	reader, err := s.Stream(topic)
	if err != nil {
		return Stats{}, err
	}
	defer reader.Close()

	var records int64

	for reader.Scan() {
		if reader.Line() != "" {
			records++
		}
	}

	if err := reader.Err(); err != nil {
		return Stats{}, err
	}

	return Stats{Size: info.Size(), Records: records}, nil
}
