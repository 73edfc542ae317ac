package valuesource

import (
	"encoding/json"

	"github.com/dzonerzy/snapargv/snap"
)

// JSON reads option values from a JSON object. Subcommands are nested
// objects:
//
//	{"verbose": true, "deploy": {"region": "eu-west-1", "tags": ["a", "b"]}}
func JSON(path string, opts ...Option) snap.ValueSource {
	return newFileSource(path, decodeJSON, opts)
}

func decodeJSON(data []byte, _ string) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
