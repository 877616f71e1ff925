package compact

import (
	"math/big"
	"strings"
)

// Decimal is an immutable arbitrary-precision decimal number represented as
// an unscaled integer and a scale: value = unscaled * 10^-scale.
type Decimal struct {
	unscaled *big.Int
	scale    int32
}

// NewDecimal creates a Decimal. The unscaled value is copied.
func NewDecimal(unscaled *big.Int, scale int32) Decimal {
	u := new(big.Int)
	if unscaled != nil {
		u.Set(unscaled)
	}
	return Decimal{unscaled: u, scale: scale}
}

// ParseDecimal parses plain decimal notation such as "-123.4500".
// The scale is the number of digits after the decimal point.
func ParseDecimal(s string) (Decimal, error) {
	digits := s
	var scale int32
	if i := strings.IndexByte(s, '.'); i >= 0 {
		digits = s[:i] + s[i+1:]
		scale = int32(len(s) - i - 1)
	}
	u, ok := new(big.Int).SetString(digits, 10)
	if !ok || strings.ContainsAny(digits, ".eE_") {
		return Decimal{}, newErrorf(ErrCInvalidValue, "invalid decimal %q", s)
	}
	return Decimal{unscaled: u, scale: scale}, nil
}

// UnscaledValue returns a copy of the unscaled value.
func (d Decimal) UnscaledValue() *big.Int {
	if d.unscaled == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(d.unscaled)
}

// Scale returns the scale.
func (d Decimal) Scale() int32 { return d.scale }

// Equal reports whether d and o have the same unscaled value and scale.
// 1.0 and 1.00 are not equal.
func (d Decimal) Equal(o Decimal) bool {
	return d.scale == o.scale && d.UnscaledValue().Cmp(o.UnscaledValue()) == 0
}

// String returns the plain decimal notation.
func (d Decimal) String() string {
	u := d.UnscaledValue()
	neg := u.Sign() < 0
	digits := u.Abs(u).String()
	switch {
	case d.scale > 0:
		if len(digits) <= int(d.scale) {
			digits = strings.Repeat("0", int(d.scale)-len(digits)+1) + digits
		}
		point := len(digits) - int(d.scale)
		digits = digits[:point] + "." + digits[point:]
	case d.scale < 0 && digits != "0":
		digits += strings.Repeat("0", int(-d.scale))
	}
	if neg {
		return "-" + digits
	}
	return digits
}

// MarshalJSON encodes the decimal as a JSON string to keep its precision.
func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// --------------------------------------------------------------------------
// Two's complement helpers
// --------------------------------------------------------------------------

// bigIntToBytes returns the minimal big-endian two's complement encoding of
// v, always containing at least one sign bit (0 -> [0x00], 128 -> [0x00 0x80]).
func bigIntToBytes(v *big.Int) []byte {
	switch v.Sign() {
	case 0:
		return []byte{0}
	case 1:
		b := v.Bytes()
		if b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	}
	// smallest n with v >= -2^(8n-1)
	n := 1
	for {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(8*n-1))
		if v.Cmp(limit.Neg(limit)) >= 0 {
			break
		}
		n++
	}
	mod := new(big.Int).Lsh(big.NewInt(1), uint(8*n))
	b := mod.Add(mod, v).Bytes()
	if len(b) < n {
		b = append(make([]byte, n-len(b)), b...)
	}
	return b
}

// bytesToBigInt decodes a big-endian two's complement integer.
func bytesToBigInt(b []byte) *big.Int {
	v := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(8*len(b))))
	}
	return v
}

func writeDecimal(out *ObjectDataOutput, d Decimal) {
	out.WriteBytes(bigIntToBytes(d.UnscaledValue()))
	out.WriteInt32(d.scale)
}

func readDecimal(in *ObjectDataInput) Decimal {
	b := in.ReadBytes()
	scale := in.ReadInt32()
	return Decimal{unscaled: bytesToBigInt(b), scale: scale}
}
