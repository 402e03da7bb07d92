// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

// Package varint implements the LEB128-style variable-length integers
// used for long string, data and collection lengths.
package varint

// MaxLen is the largest number of bytes a varint may occupy.
const MaxLen = 10

// Read decodes a varint from the start of data. It returns the decoded
// value and the number of bytes consumed. A length of zero means data
// held no complete varint.
func Read(data []byte) (uint64, int) {
	var (
		res   uint64
		shift uint
	)
	end := len(data)
	if end > MaxLen {
		end = MaxLen
	}
	for i := 0; i < end; i++ {
		b := data[i]
		if b >= 0x80 {
			res |= uint64(b&0x7F) << shift
			shift += 7
			continue
		}
		// the 10th byte may only contribute a single bit
		if i == MaxLen-1 && b > 1 {
			return 0, 0
		}
		res |= uint64(b) << shift
		return res, i + 1
	}
	return 0, 0
}

// Append appends the varint encoding of v to dst.
func Append(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// Len returns the number of bytes Append will write for v.
func Len(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}
