package document

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON []byte

var (
	ErrSchema    = errors.New("snapshot does not match schema")
	ErrMalformed = errors.New("malformed snapshot")
)

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
})

// Encode serializes a snapshot.
func Encode(d Document) ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// Decode parses a persisted snapshot, validating it against the snapshot
// schema and the structural invariants.
func Decode(data []byte) (Document, error) {
	schema, err := compiledSchema()
	if err != nil {
		return Document{}, fmt.Errorf("compile snapshot schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return Document{}, fmt.Errorf("%w: %s", ErrSchema, strings.Join(msgs, "; "))
	}

	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if err := d.Validate(); err != nil {
		return Document{}, err
	}
	return d, nil
}

// IsCorrupt reports whether err comes from unusable snapshot data rather than
// from reading it.
func IsCorrupt(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.Is(err, ErrMalformed) ||
		errors.Is(err, ErrSchema) ||
		errors.Is(err, ErrInvalidDocument) ||
		errors.Is(err, ErrUnknownElementType) ||
		errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr)
}

// Load decodes a snapshot, falling back to a fresh default document when the
// data is missing or unusable.
func Load(data []byte, logger *slog.Logger) Document {
	if len(data) == 0 {
		return NewDefault()
	}
	d, err := Decode(data)
	if err != nil {
		if logger != nil {
			logger.Warn("discarding unusable snapshot", "error", err)
		}
		return NewDefault()
	}
	return d
}
