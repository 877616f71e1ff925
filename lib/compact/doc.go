/*
Package compact implements the compact record format: a schema-described
binary encoding of objects where every record is prefixed with the id of its
schema and the schema itself is distributed separately.

A Schema lists the fields of a type by name and FieldKind. Its id is a Rabin
fingerprint of type name, field names and kinds, so the same type shape has
the same id in every process. From the fields the schema derives the record
layout: fixed-size fields live at precomputed offsets in a fixed region,
booleans share bytes bit by bit, and variable-size fields are located through
an offset table appended to the record.

Applications register a Serializer[T] per type on a StreamSerializer.
Records of types without serializer are read as *GenericRecord, which can
also be built by hand (see RecordBuilder) and written like any other value.

Writing requires every schema involved to be replicated to the cluster; the
StreamSerializer asks its SchemaService for that (see SchemaNotReplicatedError
and StreamSerializer.ToBytes).
*/
package compact
