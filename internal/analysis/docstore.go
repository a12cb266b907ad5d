package analysis

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/pabello/TwitterAnalyzer/pkg/persist"
)

const docDirPerm = 0o750

// DocStore persists analysis documents, one JSON file per topic and
// language, named "<topic>_<language>.json".
type DocStore struct {
	dir   string
	codec persist.Codec
}

// NewDocStore creates a store rooted at dir. The directory is created on
// first save.
func NewDocStore(dir string) *DocStore {
	return &DocStore{dir: dir, codec: persist.NewJSONCodec()}
}

// Dir returns the store's root directory.
func (s *DocStore) Dir() string {
	return s.dir
}

// persister binds the store codec to one topic and language.
func (s *DocStore) persister(topic, language string) *persist.Persister[Document] {
	return persist.NewPersister[Document](basename(topic, language), s.codec)
}

// Path returns the document path for a topic and language.
func (s *DocStore) Path(topic, language string) string {
	return s.persister(topic, language).Path(s.dir)
}

// Load reads the persisted document for a topic and language. A missing
// document surfaces as an error satisfying errors.Is(err, fs.ErrNotExist).
func (s *DocStore) Load(topic, language string) (*Document, error) {
	var doc *Document

	err := s.persister(topic, language).Load(s.dir, func(loaded *Document) { doc = loaded })
	if err != nil {
		return nil, fmt.Errorf("load analysis for %s/%s: %w", topic, language, err)
	}

	return doc, nil
}

// Save writes the document for a topic and language, creating the store
// directory when needed.
func (s *DocStore) Save(topic, language string, doc *Document) error {
	err := os.MkdirAll(s.dir, docDirPerm)
	if err != nil {
		return fmt.Errorf("create analysis dir: %w", err)
	}

	err = s.persister(topic, language).Save(s.dir, func() *Document { return doc })
	if err != nil {
		return fmt.Errorf("save analysis for %s/%s: %w", topic, language, err)
	}

	return nil
}

// Languages lists the languages the topic has documents for, in directory
// order. A missing store directory means no documents.
func (s *DocStore) Languages(topic string) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("read analysis dir: %w", err)
	}

	prefix := topic + "_"
	ext := s.codec.Extension()

	var languages []string

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}

		language := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ext)
		if language == "" || strings.Contains(language, "_") {
			continue
		}

		languages = append(languages, language)
	}

	return languages, nil
}

func basename(topic, language string) string {
	return topic + "_" + language
}
