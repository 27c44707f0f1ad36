package rules

import (
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

const currentSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "requirement rule (current dialect)",
  "oneOf": [
    {
      "type": "object",
      "properties": {
        "type": {"const": "COURSE_SET"},
        "courses": {
          "type": "array",
          "minItems": 1,
          "uniqueItems": true,
          "items": {"type": "string", "pattern": "^\\d{2}:\\d{3}:\\d{3}$"}
        }
      },
      "required": ["type", "courses"],
      "additionalProperties": false
    },
    {
      "type": "object",
      "properties": {
        "type": {"const": "ALL_OF"},
        "children": {"type": "array", "minItems": 1, "items": {"$ref": "#"}}
      },
      "required": ["type", "children"],
      "additionalProperties": false
    },
    {
      "type": "object",
      "properties": {
        "type": {"const": "N_OF"},
        "n": {"type": "integer", "minimum": 1},
        "children": {"type": "array", "minItems": 1, "items": {"$ref": "#"}}
      },
      "required": ["type", "n", "children"],
      "additionalProperties": false
    },
    {
      "type": "object",
      "properties": {
        "type": {"const": "COUNT_MIN"},
        "min_count": {"type": "integer", "minimum": 1},
        "children": {"type": "array", "minItems": 1, "items": {"$ref": "#"}}
      },
      "required": ["type", "min_count", "children"],
      "additionalProperties": false
    }
  ]
}`

const legacySchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "requirement rule (legacy dialect)",
  "oneOf": [
    {
      "type": "object",
      "properties": {
        "course": {"type": "string", "pattern": "^\\d{2}:\\d{3}:\\d{3}$"}
      },
      "required": ["course"],
      "additionalProperties": false
    },
    {
      "type": "object",
      "properties": {
        "all": {"type": "array", "minItems": 1, "items": {"$ref": "#"}}
      },
      "required": ["all"],
      "additionalProperties": false
    },
    {
      "type": "object",
      "properties": {
        "any": {"type": "array", "minItems": 1, "items": {"$ref": "#"}}
      },
      "required": ["any"],
      "additionalProperties": false
    },
    {
      "type": "object",
      "properties": {
        "countAtLeast": {
          "type": "object",
          "properties": {
            "count": {"type": "integer", "minimum": 1},
            "of": {"type": "array", "minItems": 1, "items": {"$ref": "#"}}
          },
          "required": ["count", "of"],
          "additionalProperties": false
        }
      },
      "required": ["countAtLeast"],
      "additionalProperties": false
    }
  ]
}`

var (
	currentSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
		return gojsonschema.NewSchema(gojsonschema.NewStringLoader(currentSchemaJSON))
	})
	legacySchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
		return gojsonschema.NewSchema(gojsonschema.NewStringLoader(legacySchemaJSON))
	})
)
