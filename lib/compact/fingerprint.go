package compact

// Rabin fingerprint over GF(2) with the polynomial used by every client that
// speaks the protocol. The values must stay bit-for-bit identical.
const fingerprintInit uint64 = 0xc15d213aa4d7a795

var fingerprintTable = func() (t [256]uint64) {
	for i := range t {
		fp := uint64(i)
		for j := 0; j < 8; j++ {
			fp = (fp >> 1) ^ (fingerprintInit & -(fp & 1))
		}
		t[i] = fp
	}
	return t
}()

func fingerprintByte(fp uint64, b byte) uint64 {
	return (fp >> 8) ^ fingerprintTable[(fp^uint64(b))&0xff]
}

// fingerprintInt folds v in little-endian byte order.
func fingerprintInt(fp uint64, v int32) uint64 {
	u := uint32(v)
	fp = fingerprintByte(fp, byte(u))
	fp = fingerprintByte(fp, byte(u>>8))
	fp = fingerprintByte(fp, byte(u>>16))
	fp = fingerprintByte(fp, byte(u>>24))
	return fp
}

// fingerprintString folds the UTF-8 length followed by the UTF-8 bytes.
func fingerprintString(fp uint64, s string) uint64 {
	fp = fingerprintInt(fp, int32(len(s)))
	for i := 0; i < len(s); i++ {
		fp = fingerprintByte(fp, s[i])
	}
	return fp
}

// fingerprintSchema computes the schema id from the type name, the field
// count and every (name, kind id) pair in schema order.
func fingerprintSchema(s *Schema) int64 {
	fp := fingerprintString(fingerprintInit, s.typeName)
	fp = fingerprintInt(fp, int32(len(s.fields)))
	for _, fd := range s.fields {
		fp = fingerprintString(fp, fd.Name)
		fp = fingerprintInt(fp, int32(fd.Kind))
	}
	return int64(fp)
}
