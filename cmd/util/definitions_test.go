package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ValentinKolb/dGrid/lib/compact"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSingleDefinition(t *testing.T) {
	schemas, err := ParseSchemaDefinitions([]byte(`
typeName: employee
fields:
  - name: age
    kind: INT32
  - name: name
    kind: STRING
`))
	require.NoError(t, err)
	require.Len(t, schemas, 1)

	expected, err := compact.NewSchema("employee", []compact.FieldDescriptor{
		compact.NewField("age", compact.KindInt32),
		compact.NewField("name", compact.KindString),
	})
	require.NoError(t, err)
	assert.True(t, schemas[0].Equal(expected))
}

func TestParseDefinitionList(t *testing.T) {
	schemas, err := ParseSchemaDefinitions([]byte(`
- typeName: a
  fields:
    - {name: x, kind: INT64}
- typeName: b
  fields:
    - {name: y, kind: ARRAY_OF_NULLABLE_INT32}
`))
	require.NoError(t, err)
	require.Len(t, schemas, 2)
	assert.Equal(t, "a", schemas[0].TypeName())
	assert.Equal(t, "b", schemas[1].TypeName())
}

func TestParseJSONDefinition(t *testing.T) {
	schemas, err := ParseSchemaDefinitions([]byte(`{"typeName": "point", "fields": [{"name": "x", "kind": "FLOAT64"}]}`))
	require.NoError(t, err)
	require.Len(t, schemas, 1)
	assert.Equal(t, "point", schemas[0].TypeName())
}

func TestParseInvalidDefinitions(t *testing.T) {
	_, err := ParseSchemaDefinitions([]byte(`typeName: a
fields:
  - {name: x, kind: NOT_A_KIND}
`))
	assert.Error(t, err)

	_, err = ParseSchemaDefinitions([]byte(`fields: []`))
	assert.Error(t, err)

	_, err = ParseSchemaDefinitions([]byte(`[]`))
	assert.Error(t, err)
}

func TestFormatSchemaRoundTrip(t *testing.T) {
	schema, err := compact.NewSchema("point", []compact.FieldDescriptor{
		compact.NewField("x", compact.KindInt32),
		compact.NewField("tags", compact.KindArrayOfString),
	})
	require.NoError(t, err)

	out, err := FormatSchema(schema)
	require.NoError(t, err)

	// the formatted definition carries the id and parses back to the same schema
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(out), 0o600))
	schemas, err := LoadSchemaDefinitions(path)
	require.NoError(t, err)
	require.Len(t, schemas, 1)
	assert.True(t, schemas[0].Equal(schema))
}

func TestWrapString(t *testing.T) {
	wrapped := WrapString("one two three four five six seven eight nine ten eleven twelve")
	for _, line := range splitLines(wrapped) {
		assert.LessOrEqual(t, len(line), Wrap)
	}
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := range s {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return append(lines, s[start:])
}
