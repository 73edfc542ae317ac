package valuesource

import (
	"gopkg.in/yaml.v3"

	"github.com/dzonerzy/snapargv/snap"
)

// YAML reads option values from a YAML mapping. Subcommands are nested
// mappings and sequences give one invocation per item.
func YAML(path string, opts ...Option) snap.ValueSource {
	return newFileSource(path, decodeYAML, opts)
}

func decodeYAML(data []byte, _ string) (map[string]any, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
