package source

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/capitol"
)

// DefaultJSONPath selects the items of a top level array.
const DefaultJSONPath = "$"

// DecodeJSON decodes a JSON document and returns the objects selected by the
// jsonpath expression path ("$[*]", "$.data" ...).
//
// The selection may be a list or a single object, items that are not objects
// are ignored.
func DecodeJSON(r io.Reader, path string) ([]capitol.RawRecord, error) {
	if path == "" {
		path = DefaultJSONPath
	}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("cannot decode json: %w", err)
	}
	jval, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("cannot select %q: %w", path, err)
	}
	// jsonpath returns either a list of answers or a single one.
	items, ok := jval.([]any)
	if !ok {
		items = []any{jval}
	}
	records := make([]capitol.RawRecord, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			records = append(records, capitol.RawRecord(obj))
		}
	}
	return records, nil
}
