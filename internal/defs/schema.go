package defs

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// SchemaBaseURL prefixes the $id of every bundled schema.
const SchemaBaseURL = "https://vira-wilds.dev/schemas/"

type schemaSet struct {
	trait    *jsonschema.Schema
	behavior *jsonschema.Schema
	actor    *jsonschema.Schema
}

var loadSchemas = sync.OnceValues(compileSchemas)

func compileSchemas() (*schemaSet, error) {
	compiler := jsonschema.NewCompiler()
	entries, err := fs.ReadDir(schemaFS, "schemas")
	if err != nil {
		return nil, fmt.Errorf("defs: read schemas: %w", err)
	}
	for _, entry := range entries {
		data, err := schemaFS.ReadFile(path.Join("schemas", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("defs: read schema %q: %w", entry.Name(), err)
		}
		if err := compiler.AddResource(SchemaBaseURL+entry.Name(), bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("defs: add schema %q: %w", entry.Name(), err)
		}
	}

	set := &schemaSet{}
	for name, dst := range map[string]**jsonschema.Schema{
		"trait.schema.json":    &set.trait,
		"behavior.schema.json": &set.behavior,
		"actor.schema.json":    &set.actor,
	} {
		schema, err := compiler.Compile(SchemaBaseURL + name)
		if err != nil {
			return nil, fmt.Errorf("defs: compile schema %q: %w", name, err)
		}
		*dst = schema
	}
	return set, nil
}

// jsonValue converts a decoded YAML document into the JSON value model the
// validator expects.
func jsonValue(doc any) (any, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var out any
	if err := decoder.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
