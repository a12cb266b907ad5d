// Package topics manages the topic registry, a plain text file listing one
// lowercased topic per line. Fetch and analysis runs without explicit topics
// walk this registry.
package topics

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Registry mutation failures.
var (
	ErrEmptyTopic     = errors.New("empty topic")
	ErrDuplicateTopic = errors.New("topic already registered")
	ErrUnknownTopic   = errors.New("topic not registered")
)

const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// Registry reads and rewrites the topic list file.
type Registry struct {
	path string
}

// NewRegistry creates a registry backed by the file at path. The file is
// created on the first Add.
func NewRegistry(path string) *Registry {
	return &Registry{path: path}
}

// Path returns the registry file location.
func (r *Registry) Path() string {
	return r.path
}

// Normalize maps a raw topic to its registry form: trimmed and lowercased.
func Normalize(topic string) string {
	return strings.ToLower(strings.TrimSpace(topic))
}

// List returns the registered topics in file order, normalized, blank lines
// dropped. A missing registry file means no topics, not an error.
func (r *Registry) List() ([]string, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("read topic registry %s: %w", r.path, err)
	}

	var list []string

	for _, line := range strings.Split(string(data), "\n") {
		topic := Normalize(line)
		if topic == "" {
			continue
		}

		list = append(list, topic)
	}

	return list, nil
}

// Add registers a topic at the end of the list. The topic is normalized
// first; registering an empty or already known topic fails.
func (r *Registry) Add(topic string) error {
	topic = Normalize(topic)
	if topic == "" {
		return ErrEmptyTopic
	}

	list, err := r.List()
	if err != nil {
		return err
	}

	for _, known := range list {
		if known == topic {
			return fmt.Errorf("%w: %s", ErrDuplicateTopic, topic)
		}
	}

	return r.write(append(list, topic))
}

// Remove drops a topic from the list. Removing an unknown topic fails.
func (r *Registry) Remove(topic string) error {
	topic = Normalize(topic)

	list, err := r.List()
	if err != nil {
		return err
	}

	kept := make([]string, 0, len(list))
	found := false

	for _, known := range list {
		if known == topic {
			found = true

			continue
		}

		kept = append(kept, known)
	}

	if !found {
		return fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
	}

	return r.write(kept)
}

func (r *Registry) write(list []string) error {
	err := os.MkdirAll(filepath.Dir(r.path), dirPerm)
	if err != nil {
		return fmt.Errorf("create topic registry dir: %w", err)
	}

	var sb strings.Builder
	for _, topic := range list {
		sb.WriteString(topic)
		sb.WriteByte('\n')
	}

	err = os.WriteFile(r.path, []byte(sb.String()), filePerm)
	if err != nil {
		return fmt.Errorf("write topic registry %s: %w", r.path, err)
	}

	return nil
}
