// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

package fleck

import (
	"encoding/binary"
	"math"

	"github.com/ssbc/fleck/internal/varint"
)

// ValueType enumerates the kinds of values a document can hold. The
// set is closed; it is defined by the wire format.
type ValueType uint8

const (
	TypeUndefined ValueType = iota
	TypeNull
	TypeBool
	TypeInt
	TypeUint
	TypeFloat
	TypeString
	TypeData
	TypeArray
	TypeDict
)

func (t ValueType) String() string {
	switch t {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeUint:
		return "uint"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeData:
		return "data"
	case TypeArray:
		return "array"
	case TypeDict:
		return "dict"
	}
	return "invalid"
}

func typeOf(h byte) ValueType {
	switch h & 0xF0 {
	case tagShort:
		return TypeInt
	case tagInt:
		if h&intUnsignedFlag != 0 {
			return TypeUint
		}
		return TypeInt
	case tagFloat:
		return TypeFloat
	case tagSpecial:
		switch h & 0x0F {
		case specialFalse, specialTrue:
			return TypeBool
		case specialUndefined:
			return TypeUndefined
		default:
			return TypeNull
		}
	case tagString:
		return TypeString
	case tagData:
		return TypeData
	case tagArray:
		return TypeArray
	case tagDict:
		return TypeDict
	}
	return TypeUndefined // pointers never surface as values
}

// Value is a read-only view of one value inside an encoded document: a
// buffer reference plus a validated offset. It is cheap to copy and
// owns nothing; it must not outlive the buffer it was decoded from.
// The zero Value is the absent value returned by failed lookups.
type Value struct {
	buf []byte
	off int
}

// Decode validates data as a complete document and returns the root
// value. Validation covers every header, payload bound and pointer, so
// the navigators and accessors can assume a well-formed buffer
// afterwards. Untrusted input is safe: errors are reported as
// CorruptError, never by panicking.
func Decode(data []byte) (Value, error) {
	root, err := findRoot(data)
	if err != nil {
		return Value{}, err
	}
	if err := validate(data, root, len(data), 0); err != nil {
		return Value{}, err
	}
	return Value{buf: data, off: root}, nil
}

// DecodeTrusted is Decode without the validation pass. It only checks
// the trailing root reference. Use it exclusively on buffers this
// package produced or that were validated before; on corrupt input the
// resulting views return wrong values or errors, though they still do
// not read outside the buffer.
func DecodeTrusted(data []byte) (Value, error) {
	root, err := findRoot(data)
	if err != nil {
		return Value{}, err
	}
	return Value{buf: data, off: root}, nil
}

func findRoot(data []byte) (int, error) {
	if len(data) < 2 || len(data)%2 != 0 {
		return 0, corruptf(0, "document must be at least 2 bytes and evenly sized")
	}
	site := len(data) - 2
	if isPointer(data[site]) {
		return resolvePointer(data, site, false)
	}
	if len(data) == 2 {
		return 0, nil
	}
	return 0, corruptf(site, "trailing value is not a root pointer")
}

// Exists reports whether v refers to a stored value. Lookups return
// the zero Value when the requested element is absent.
func (v Value) Exists() bool { return v.buf != nil }

// Type returns the stored type tag. The zero Value reports
// TypeUndefined.
func (v Value) Type() ValueType {
	if v.buf == nil {
		return TypeUndefined
	}
	return typeOf(v.buf[v.off])
}

func (v Value) mismatch(want ValueType) error {
	return TypeMismatchError{Want: want, Got: v.Type()}
}

// AsBool returns the boolean stored in v.
func (v Value) AsBool() (bool, error) {
	if v.Type() != TypeBool {
		return false, v.mismatch(TypeBool)
	}
	return v.buf[v.off]&0x0F == specialTrue, nil
}

// AsInt returns the integer stored in v. Unsigned values are accepted
// as long as they fit int64.
func (v Value) AsInt() (int64, error) {
	switch v.Type() {
	case TypeInt:
		return v.readInt(), nil
	case TypeUint:
		u := v.readUint()
		if u > math.MaxInt64 {
			return 0, v.mismatch(TypeInt)
		}
		return int64(u), nil
	}
	return 0, v.mismatch(TypeInt)
}

// AsUint returns the unsigned integer stored in v. Signed values are
// accepted as long as they are not negative.
func (v Value) AsUint() (uint64, error) {
	switch v.Type() {
	case TypeUint:
		return v.readUint(), nil
	case TypeInt:
		i := v.readInt()
		if i < 0 {
			return 0, v.mismatch(TypeUint)
		}
		return uint64(i), nil
	}
	return 0, v.mismatch(TypeUint)
}

func (v Value) readInt() int64 {
	b := v.buf
	if b[v.off]&0xF0 == tagShort {
		u := binary.BigEndian.Uint16(b[v.off:]) & 0x0FFF
		if u&0x0800 != 0 {
			u |= 0xF000 // sign extend
		}
		return int64(int16(u))
	}
	n := int(b[v.off]&0x07) + 1
	if v.off+1+n > len(b) {
		return 0
	}
	var le [8]byte
	copy(le[:], b[v.off+1:v.off+1+n])
	u := binary.LittleEndian.Uint64(le[:])
	if b[v.off]&intUnsignedFlag == 0 && n < 8 && le[n-1]&0x80 != 0 {
		u |= ^uint64(0) << uint(8*n) // sign extend
	}
	return int64(u)
}

func (v Value) readUint() uint64 {
	b := v.buf
	if b[v.off]&0xF0 == tagShort {
		return uint64(binary.BigEndian.Uint16(b[v.off:]) & 0x0FFF)
	}
	n := int(b[v.off]&0x07) + 1
	if v.off+1+n > len(b) {
		return 0
	}
	var le [8]byte
	copy(le[:], b[v.off+1:v.off+1+n])
	return binary.LittleEndian.Uint64(le[:])
}

// AsFloat returns the float stored in v. Values written as float32
// come back through float64 without further precision loss.
func (v Value) AsFloat() (float64, error) {
	if v.Type() != TypeFloat {
		return 0, v.mismatch(TypeFloat)
	}
	b := v.buf
	if b[v.off]&floatWideFlag != 0 {
		if v.off+10 > len(b) {
			return 0, corruptf(v.off, "truncated float64")
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(b[v.off+2:])), nil
	}
	if v.off+6 > len(b) {
		return 0, corruptf(v.off, "truncated float32")
	}
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b[v.off+2:]))), nil
}

// AsString returns the string stored in v. Unlike AsBytes this copies,
// because Go strings cannot borrow from a byte buffer.
func (v Value) AsString() (string, error) {
	if v.Type() != TypeString {
		return "", v.mismatch(TypeString)
	}
	p, err := v.payload()
	if err != nil {
		return "", err
	}
	return string(p), nil
}

// AsBytes returns the string or data payload as a zero-copy slice of
// the underlying buffer. Callers must not modify it.
func (v Value) AsBytes() ([]byte, error) {
	switch v.Type() {
	case TypeString, TypeData:
		return v.payload()
	}
	return nil, v.mismatch(TypeData)
}

func (v Value) payload() ([]byte, error) {
	b := v.buf
	n := int(b[v.off] & 0x0F)
	start := v.off + 1
	if n == 0x0F {
		size, vl := varint.Read(b[start:])
		if vl == 0 || size > uint64(len(b)) {
			return nil, corruptf(v.off, "bad length header")
		}
		n = int(size)
		start += vl
	}
	if start+n > len(b) {
		return nil, corruptf(v.off, "payload of %d bytes exceeds bounds", n)
	}
	return b[start : start+n : start+n], nil
}

// Interface materializes the value as a plain Go tree: nil, bool,
// int64, uint64, float64, string, []byte, []interface{} or
// map[string]interface{}. Byte slices alias the decoded buffer.
func (v Value) Interface() (interface{}, error) {
	switch v.Type() {
	case TypeNull, TypeUndefined:
		return nil, nil
	case TypeBool:
		return v.AsBool()
	case TypeInt:
		return v.AsInt()
	case TypeUint:
		return v.AsUint()
	case TypeFloat:
		return v.AsFloat()
	case TypeString:
		return v.AsString()
	case TypeData:
		return v.AsBytes()
	case TypeArray:
		a, err := v.AsArray()
		if err != nil {
			return nil, err
		}
		out := make([]interface{}, 0, a.Len())
		for it := a.Iter(); it.Next(); {
			el, err := it.Value().Interface()
			if err != nil {
				return nil, err
			}
			out = append(out, el)
		}
		return out, nil
	case TypeDict:
		d, err := v.AsDict()
		if err != nil {
			return nil, err
		}
		out := make(map[string]interface{}, d.Len())
		for it := d.Iter(); it.Next(); {
			el, err := it.Value().Interface()
			if err != nil {
				return nil, err
			}
			out[it.Key()] = el
		}
		return out, nil
	}
	return nil, corruptf(v.off, "unknown value type")
}

// Unmarshal decodes data and materializes the whole document. It is
// the convenience counterpart of Marshal; use Decode and the view API
// to read without materializing.
func Unmarshal(data []byte) (interface{}, error) {
	v, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return v.Interface()
}
