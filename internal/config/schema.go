package config

// SchemaID identifies the configuration schema inside the compiler.
const SchemaID = "https://github.com/andyballingall/rustfmt-quote/config.schema.json"

// Schema is the JSON Schema every configuration file must satisfy.
const Schema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "$id": "https://github.com/andyballingall/rustfmt-quote/config.schema.json",
  "title": "rustfmt-quote configuration",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "formatter": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "command": {"type": "string", "minLength": 1},
        "args": {"type": "array", "items": {"type": "string"}},
        "timeout": {
          "type": "string",
          "pattern": "^(0|([0-9]+(\\.[0-9]+)?(ns|us|µs|ms|s|m|h))+)$"
        }
      }
    },
    "indentWidth": {"type": "integer", "minimum": 1, "maximum": 16},
    "extensions": {
      "type": "array",
      "minItems": 1,
      "items": {"type": "string", "pattern": "^\\.[A-Za-z0-9_.-]+$"}
    },
    "excludeDirs": {
      "type": "array",
      "items": {"type": "string", "minLength": 1}
    },
    "reservedMarkers": {
      "type": "array",
      "items": {"type": "string", "pattern": "^[_a-zA-Z][_a-zA-Z0-9]*$"}
    },
    "jobs": {"type": "integer", "minimum": 0}
  }
}`
