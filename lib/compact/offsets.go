package compact

import "math"

const (
	// nullOffset marks a null variable-size field or array item.
	nullOffset int32 = -1

	// Offset tables use 1-byte entries while the variable data is shorter
	// than byteOffsetRange, 2-byte entries while it is shorter than
	// shortOffsetRange and 4-byte entries otherwise.
	byteOffsetRange  = math.MaxInt8 - math.MinInt8   // 255
	shortOffsetRange = math.MaxInt16 - math.MinInt16 // 65535
)

// offsetReader reads entry index of an offset table starting at start.
type offsetReader func(in *ObjectDataInput, start, index int) int32

// writeOffsets appends the offset table for variable data of the given length.
func writeOffsets(out *ObjectDataOutput, dataLength int, offsets []int32) {
	switch {
	case dataLength < byteOffsetRange:
		for _, o := range offsets {
			out.WriteInt8(int8(o))
		}
	case dataLength < shortOffsetRange:
		for _, o := range offsets {
			out.WriteInt16(int16(o))
		}
	default:
		for _, o := range offsets {
			out.WriteInt32(o)
		}
	}
}

// offsetReaderFor returns the reader and entry width matching writeOffsets.
func offsetReaderFor(dataLength int) (offsetReader, int) {
	switch {
	case dataLength < byteOffsetRange:
		return readByteOffset, 1
	case dataLength < shortOffsetRange:
		return readShortOffset, 2
	default:
		return readIntOffset, 4
	}
}

func readByteOffset(in *ObjectDataInput, start, index int) int32 {
	v := in.ReadInt8At(start + index)
	if v == int8(nullOffset) {
		return nullOffset
	}
	return int32(uint8(v))
}

func readShortOffset(in *ObjectDataInput, start, index int) int32 {
	v := in.ReadInt16At(start + index*2)
	if v == int16(nullOffset) {
		return nullOffset
	}
	return int32(uint16(v))
}

func readIntOffset(in *ObjectDataInput, start, index int) int32 {
	return in.ReadInt32At(start + index*4)
}
