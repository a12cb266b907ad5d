package tweetlog

import (
	"bufio"
	"fmt"
	"os"
)

// Reader streams a main log file top to bottom, newest record first. Lines
// are surfaced raw so callers decide how to treat undecodable ones.
type Reader struct {
	f  *os.File
	sc *bufio.Scanner
}

// Stream opens the topic's main log for a top-to-bottom scan. A missing log
// surfaces as os.ErrNotExist.
func (s *Store) Stream(topic string) (*Reader, error) {
	f, err := os.Open(s.MainPath(topic))
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	return &Reader{f: f, sc: sc}, nil
}

// Scan advances to the next line. It returns false at end of file or on a
// read error, which Err reports.
func (r *Reader) Scan() bool {
	return r.sc.Scan()
}

// Line returns the current line without its trailing newline.
func (r *Reader) Line() string {
	return r.sc.Text()
}

// Err returns the first error encountered while scanning, if any.
func (r *Reader) Err() error {
	if err := r.sc.Err(); err != nil {
		return fmt.Errorf("read log: %w", err)
	}

	return nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}
