package compact

import "reflect"

// isNilCompact reports whether a nested compact value is null. Typed nil
// pointers stored in an interface count as null.
func isNilCompact(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// checkCompactArray verifies that all non-null items of an array of compact
// values share one type: the same Go type, and for generic records the same
// schema.
func checkCompactArray(name string, items []any) error {
	var (
		first     reflect.Type
		firstID   int64
		haveFirst bool
	)
	for i, item := range items {
		if isNilCompact(item) {
			continue
		}
		t := reflect.TypeOf(item)
		var id int64
		if r, ok := item.(*GenericRecord); ok {
			id = r.schema.id
		}
		if !haveFirst {
			first, firstID, haveFirst = t, id, true
			continue
		}
		if t != first {
			return newErrorf(ErrCHeterogeneousArray, "array field %q mixes %s and %s at index %d", name, first, t, i)
		}
		if id != firstID {
			return newErrorf(ErrCHeterogeneousArray, "array field %q mixes generic records of schemas %d and %d at index %d",
				name, firstID, id, i)
		}
	}
	return nil
}
