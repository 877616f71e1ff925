package record

import (
	"testing"

	"github.com/ValentinKolb/dGrid/lib/compact"
	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSchema(t *testing.T, fields ...compact.FieldDescriptor) *compact.Schema {
	t.Helper()
	schema, err := compact.NewSchema("employee", fields)
	require.NoError(t, err)
	return schema
}

func decodeValues(t *testing.T, src string) map[string]any {
	t.Helper()
	var values map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(src), &values))
	return values
}

func TestNewRecordScalars(t *testing.T) {
	schema := newSchema(t,
		compact.NewField("active", compact.KindBoolean),
		compact.NewField("age", compact.KindInt32),
		compact.NewField("small", compact.KindInt8),
		compact.NewField("score", compact.KindFloat64),
		compact.NewField("name", compact.KindString),
		compact.NewField("bonus", compact.KindNullableInt64),
		compact.NewField("salary", compact.KindDecimal),
		compact.NewField("birthday", compact.KindDate),
	)

	rec, err := NewRecord(schema, decodeValues(t, `
active: true
age: 31
small: -5
score: 1.5
name: jane
bonus: null
salary: "1234.50"
birthday: "1990-04-12"
`))
	require.NoError(t, err)

	active, err := rec.GetBoolean("active")
	require.NoError(t, err)
	assert.True(t, active)

	age, err := rec.GetInt32("age")
	require.NoError(t, err)
	assert.Equal(t, int32(31), age)

	small, err := rec.GetInt8("small")
	require.NoError(t, err)
	assert.Equal(t, int8(-5), small)

	score, err := rec.GetFloat64("score")
	require.NoError(t, err)
	assert.Equal(t, 1.5, score)

	name, err := rec.GetString("name")
	require.NoError(t, err)
	require.NotNil(t, name)
	assert.Equal(t, "jane", *name)

	bonus, err := rec.GetNullableInt64("bonus")
	require.NoError(t, err)
	assert.Nil(t, bonus)

	salary, err := rec.GetDecimal("salary")
	require.NoError(t, err)
	require.NotNil(t, salary)
	assert.Equal(t, "1234.50", salary.String())

	birthday, err := rec.GetDate("birthday")
	require.NoError(t, err)
	require.NotNil(t, birthday)
	assert.Equal(t, compact.LocalDate{Year: 1990, Month: 4, Day: 12}, *birthday)
}

func TestNewRecordArrays(t *testing.T) {
	schema := newSchema(t,
		compact.NewField("ids", compact.KindArrayOfInt64),
		compact.NewField("maybe", compact.KindArrayOfNullableInt32),
		compact.NewField("tags", compact.KindArrayOfString),
	)

	rec, err := NewRecord(schema, decodeValues(t, `{ids: [1, 2, 3], maybe: [1, null], tags: [a, null, c]}`))
	require.NoError(t, err)

	ids, err := rec.GetArrayOfInt64("ids")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)

	maybe, err := rec.GetArrayOfNullableInt32("maybe")
	require.NoError(t, err)
	require.Len(t, maybe, 2)
	require.NotNil(t, maybe[0])
	assert.Equal(t, int32(1), *maybe[0])
	assert.Nil(t, maybe[1])

	tags, err := rec.GetArrayOfString("tags")
	require.NoError(t, err)
	require.Len(t, tags, 3)
	assert.Equal(t, "a", *tags[0])
	assert.Nil(t, tags[1])
}

func TestNewRecordErrors(t *testing.T) {
	schema := newSchema(t,
		compact.NewField("age", compact.KindInt8),
		compact.NewField("name", compact.KindString),
	)

	_, err := NewRecord(schema, decodeValues(t, `{age: 300}`))
	assert.Error(t, err, "out of range")

	_, err = NewRecord(schema, decodeValues(t, `{age: 1.5}`))
	assert.Error(t, err, "not an integer")

	_, err = NewRecord(schema, decodeValues(t, `{age: 1, name: 5}`))
	assert.Error(t, err, "wrong type")

	_, err = NewRecord(schema, decodeValues(t, `{age: 1, unknown: 5}`))
	assert.Error(t, err, "unknown field")

	_, err = NewRecord(schema, decodeValues(t, `{name: jane}`))
	assert.Error(t, err, "missing fixed size field")
}

func TestSelectSchema(t *testing.T) {
	a, err := compact.NewSchema("a", nil)
	require.NoError(t, err)
	b, err := compact.NewSchema("b", nil)
	require.NoError(t, err)

	s, err := selectSchema([]*compact.Schema{a}, "")
	require.NoError(t, err)
	assert.Equal(t, a, s)

	_, err = selectSchema([]*compact.Schema{a, b}, "")
	assert.Error(t, err)

	s, err = selectSchema([]*compact.Schema{a, b}, "b")
	require.NoError(t, err)
	assert.Equal(t, b, s)

	_, err = selectSchema([]*compact.Schema{a, b}, "c")
	assert.Error(t, err)
}
