package validator

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// DecodeYAML parses a YAML document into a JSONDocument. The document is
// round-tripped through JSON so that numbers, maps and slices have the exact
// types the schema validator expects.
func DecodeYAML(data []byte) (JSONDocument, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		// An empty file is an empty mapping.
		raw = map[string]interface{}{}
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("document cannot be represented as JSON: %w", err)
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(b))
}

// CompileSchema parses a JSON Schema source and compiles it under id.
func CompileSchema(c Compiler, id, source string) (Validator, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(source)))
	if err != nil {
		return nil, fmt.Errorf("schema %s is not valid JSON: %w", id, err)
	}
	if err := c.AddSchema(id, doc); err != nil {
		return nil, err
	}
	return c.Compile(id)
}
