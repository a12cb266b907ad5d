package analysis

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// LoadStopWords reads a whitespace-separated stop-word file. A missing file
// means no filtering and is not an error.
func LoadStopWords(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("read stop words %s: %w", path, err)
	}

	return strings.Fields(string(data)), nil
}
