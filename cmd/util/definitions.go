package util

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/dGrid/lib/compact"
	"github.com/goccy/go-yaml"
	"os"
	"os/signal"
)

// ParseSchemaDefinitions parses yaml (or json) holding one schema definition
// or a list of them
//
//	typeName: employee
//	fields:
//	  - name: age
//	    kind: INT32
//	  - name: name
//	    kind: STRING
func ParseSchemaDefinitions(data []byte) ([]*compact.Schema, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid schema definition: %w", err)
	}

	var defs []compact.SchemaDefinition
	if _, isList := raw.([]any); isList {
		if err := yaml.Unmarshal(data, &defs); err != nil {
			return nil, fmt.Errorf("invalid schema definition: %w", err)
		}
	} else {
		var def compact.SchemaDefinition
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("invalid schema definition: %w", err)
		}
		defs = []compact.SchemaDefinition{def}
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("no schema definition found")
	}

	schemas := make([]*compact.Schema, len(defs))
	for i, def := range defs {
		if def.TypeName == "" {
			return nil, fmt.Errorf("schema definition %d has no typeName", i)
		}
		schema, err := def.Schema()
		if err != nil {
			return nil, err
		}
		schemas[i] = schema
	}
	return schemas, nil
}

// LoadSchemaDefinitions reads the schema definitions of a file
func LoadSchemaDefinitions(path string) ([]*compact.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSchemaDefinitions(data)
}

// FormatSchema renders the definition of a schema as yaml
func FormatSchema(schema *compact.Schema) (string, error) {
	out, err := yaml.Marshal(schema.Definition())
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// CommandContext returns a context that is canceled on interrupt
func CommandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
