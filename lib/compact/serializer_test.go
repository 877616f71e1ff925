package compact

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	X, Y int32
}

type pointSerializer struct{}

func (pointSerializer) TypeName() string { return "point" }

func (pointSerializer) Read(r CompactReader) (point, error) {
	return point{X: r.ReadInt32("x"), Y: r.ReadInt32("y")}, r.Err()
}

func (pointSerializer) Write(w CompactWriter, p point) error {
	w.WriteInt32("x", p.X)
	w.WriteInt32("y", p.Y)
	return nil
}

type polygon struct {
	Name   *string
	Origin *point
	Points []point
}

type polygonSerializer struct{}

func (polygonSerializer) TypeName() string { return "polygon" }

func (polygonSerializer) Read(r CompactReader) (*polygon, error) {
	p := &polygon{Name: r.ReadString("name")}
	if o, ok := r.ReadCompact("origin").(point); ok {
		p.Origin = &o
	}
	for _, item := range r.ReadArrayOfCompact("points") {
		p.Points = append(p.Points, item.(point))
	}
	return p, r.Err()
}

func (polygonSerializer) Write(w CompactWriter, p *polygon) error {
	w.WriteString("name", p.Name)
	if p.Origin != nil {
		w.WriteCompact("origin", *p.Origin)
	} else {
		w.WriteCompact("origin", nil)
	}
	items := make([]any, len(p.Points))
	for i, pt := range p.Points {
		items[i] = pt
	}
	w.WriteArrayOfCompact("points", items)
	return nil
}

func newPointSerializer(t *testing.T, svc SchemaService) *StreamSerializer {
	t.Helper()
	s := NewStreamSerializer(svc)
	require.NoError(t, Register[point](s, pointSerializer{}))
	require.NoError(t, Register[*polygon](s, polygonSerializer{}))
	return s
}

func TestStreamSerializerTypedRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	s := newPointSerializer(t, svc)

	b, err := s.ToBytes(ctx, point{X: 1, Y: -2})
	require.NoError(t, err)

	schema, err := s.SchemaOf(point{})
	require.NoError(t, err)
	assert.Equal(t, 1, svc.puts[schema.ID()])

	got, err := Decode[point](ctx, s, b)
	require.NoError(t, err)
	assert.Equal(t, point{X: 1, Y: -2}, got)

	// already replicated, no second put
	_, err = Encode(ctx, s, point{X: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, svc.puts[schema.ID()])
}

func TestStreamSerializerNestedReplication(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	s := newPointSerializer(t, svc)

	in := &polygon{
		Name:   ptr("triangle"),
		Origin: &point{X: 9, Y: 9},
		Points: []point{{0, 0}, {1, 0}, {0, 1}},
	}
	b, err := s.ToBytes(ctx, in)
	require.NoError(t, err)
	// outer and nested schema were both replicated
	assert.Len(t, svc.puts, 2)

	out, err := Decode[*polygon](ctx, s, b)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	b, err = s.ToBytes(ctx, &polygon{})
	require.NoError(t, err)
	out, err = Decode[*polygon](ctx, s, b)
	require.NoError(t, err)
	assert.Nil(t, out.Name)
	assert.Nil(t, out.Origin)
	assert.Nil(t, out.Points)
}

func TestStreamSerializerUnregisteredTypeReadsGenericRecord(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	writer := newPointSerializer(t, svc)
	b, err := writer.ToBytes(ctx, point{X: 4, Y: 5})
	require.NoError(t, err)

	reader := NewStreamSerializer(svc)
	v, err := reader.FromBytes(ctx, b)
	require.NoError(t, err)
	rec, ok := v.(*GenericRecord)
	require.True(t, ok)
	assert.Equal(t, "point", rec.TypeName())
	y, err := rec.GetInt32("y")
	require.NoError(t, err)
	assert.Equal(t, int32(5), y)
	assert.JSONEq(t, `{"point":{"x":4,"y":5}}`, rec.String())

	// a generic record with the same shape encodes to the same bytes
	again, err := reader.ToBytes(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, b, again)
}

func TestStreamSerializerFetchesUnknownSchema(t *testing.T) {
	ctx := context.Background()
	writerSvc := newTestService()
	b, err := newPointSerializer(t, writerSvc).ToBytes(ctx, point{X: 1})
	require.NoError(t, err)

	readerSvc := newTestService()
	s := newPointSerializer(t, readerSvc)
	_, err = s.FromBytes(ctx, b)
	assert.True(t, errors.Is(err, ErrSchemaNotFound))

	for id, schema := range writerSvc.schemas {
		readerSvc.remote[id] = schema
	}
	got, err := Decode[point](ctx, s, b)
	require.NoError(t, err)
	assert.Equal(t, point{X: 1}, got)
}

func TestStreamSerializerNeverReplicated(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	svc.refusePut = true
	s := newPointSerializer(t, svc)

	out := NewObjectDataOutput(0)
	err := s.Write(ctx, out, point{X: 1})
	var notReplicated *SchemaNotReplicatedError
	require.True(t, errors.As(err, &notReplicated))
	assert.Equal(t, "point", notReplicated.Schema.TypeName())
	assert.True(t, errors.Is(err, ErrSchemaNotReplicated))
	assert.Equal(t, 0, out.Position(), "nothing written before replication")

	b, err := s.ToBytes(ctx, point{X: 1})
	assert.Error(t, err)
	assert.Nil(t, b)
	assert.Equal(t, 1, svc.puts[notReplicated.Schema.ID()])
}

func TestStreamSerializerErrors(t *testing.T) {
	ctx := context.Background()
	s := newPointSerializer(t, newTestService())

	assert.Error(t, Register[point](s, pointSerializer{}), "duplicate registration")

	_, err := s.ToBytes(ctx, struct{}{})
	assert.True(t, errors.Is(err, ErrSerializerNotFound))

	_, err = s.ToBytes(ctx, nil)
	assert.True(t, errors.Is(err, ErrInvalidValue))

	_, err = s.ToBytes(ctx, &polygon{Points: []point{{1, 1}}, Origin: nil})
	require.NoError(t, err)

	b, err := s.ToBytes(ctx, point{})
	require.NoError(t, err)
	_, err = s.FromBytes(ctx, append(b, 0))
	assert.True(t, errors.Is(err, ErrMalformed))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.ToBytes(canceled, point{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenericRecordHeterogeneousArrayThroughSerializer(t *testing.T) {
	ctx := context.Background()
	s := newPointSerializer(t, newTestService())
	gen, err := NewRecordBuilder("point").SetInt32("x", 1).SetInt32("y", 1).Build()
	require.NoError(t, err)

	holder, err := NewRecordBuilder("holder").
		Set("items", KindArrayOfCompact, []any{gen, point{X: 1}}).
		Build()
	require.Error(t, err, "typed objects are not valid generic record values")
	assert.Nil(t, holder)

	other, err := NewRecordBuilder("other").SetInt32("x", 1).Build()
	require.NoError(t, err)
	holder, err = NewRecordBuilder("holder").
		SetArrayOfGenericRecord("items", []*GenericRecord{gen, other}).
		Build()
	require.NoError(t, err)
	_, err = s.ToBytes(ctx, holder)
	assert.True(t, errors.Is(err, ErrHeterogeneousArray))
}
