package analysis

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// schemaFS contains the embedded analysis document schema.
//
//go:embed schema/analysis.schema.json
var schemaFS embed.FS

const schemaFile = "schema/analysis.schema.json"

// SchemaJSON returns the embedded document schema.
func SchemaJSON() []byte {
	data, err := schemaFS.ReadFile(schemaFile)
	if err != nil {
		// The schema is compiled into the binary; a read failure is a
		// build defect, not a runtime condition.
		panic(fmt.Sprintf("embedded schema: %v", err))
	}

	return data
}

// ValidateDocument checks raw document JSON against the embedded schema and
// returns one message per violation, nil when the document conforms.
func ValidateDocument(data []byte) ([]string, error) {
	var doc any

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	err := dec.Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(SchemaJSON()),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("validate document: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		issues = append(issues, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
	}

	return issues, nil
}
