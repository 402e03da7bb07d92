// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

package fleck

import (
	"encoding/binary"

	"github.com/ssbc/fleck/internal/varint"
)

// Header tags, stored in the top four bits of a value's first byte.
const (
	tagShort   = 0x00 // 12-bit inline signed integer
	tagInt     = 0x10 // 1-8 little-endian payload bytes
	tagFloat   = 0x20
	tagSpecial = 0x30 // null, false, true, undefined
	tagString  = 0x40
	tagData    = 0x50
	tagArray   = 0x60
	tagDict    = 0x70
	tagPointer = 0x80 // anything with the top bit set
)

const (
	specialNull      = 0x00
	specialFalse     = 0x04
	specialTrue      = 0x08
	specialUndefined = 0x0C
)

const (
	intUnsignedFlag = 0x08 // tagInt: payload is unsigned
	floatWideFlag   = 0x08 // tagFloat: 8 payload bytes instead of 4
	floatDoubleFlag = 0x04 // tagFloat: decode the 4 payload bytes as float64
	collWideFlag    = 0x08 // tagArray/tagDict: 4-byte slots instead of 2
)

const (
	// maxInlineLen is the longest string/data payload that fits the
	// header's 4-bit length field. Longer payloads carry a varint.
	maxInlineLen = 14

	// longCount in a collection header's count field means the real
	// element count follows as a varint.
	longCount = 0x07FF

	// Inline shorts cover [-2048, 2047].
	maxShort = 2047
	minShort = -2048

	// Backward pointer limits, in bytes. Narrow pointers store the
	// distance in 2-byte units in 14 bits; wide pointers store it
	// byte-granular in 30 bits.
	maxNarrowDist = 0x3FFF << 1
	maxWideDist   = 0x3FFFFFFF

	narrowExternalBit = 0x4000
	wideExternalBit   = 0x40000000
)

// maxDepth bounds container nesting during validation so adversarial
// input cannot exhaust the stack.
const maxDepth = 1024

func isPointer(h byte) bool { return h&tagPointer != 0 }

// resolvePointer follows the backward pointer at site and returns the
// offset of the value it refers to. A pointer target that is itself a
// pointer is resolved once more in wide form; that is how narrow sites
// reach values further away than maxNarrowDist. Every hop moves
// strictly backward, so the loop terminates.
func resolvePointer(b []byte, site int, wide bool) (int, error) {
	for {
		var dist int
		if wide {
			if site+4 > len(b) {
				return 0, corruptf(site, "truncated wide pointer")
			}
			v := binary.BigEndian.Uint32(b[site:])
			if v&wideExternalBit != 0 {
				return 0, corruptf(site, "external pointers are not supported")
			}
			dist = int(v & maxWideDist)
		} else {
			if site+2 > len(b) {
				return 0, corruptf(site, "truncated pointer")
			}
			v := binary.BigEndian.Uint16(b[site:])
			if v&narrowExternalBit != 0 {
				return 0, corruptf(site, "external pointers are not supported")
			}
			dist = int(v&0x3FFF) << 1
		}
		if dist == 0 {
			return 0, corruptf(site, "zero pointer distance")
		}
		target := site - dist
		if target < 0 {
			return 0, corruptf(site, "pointer distance %d underflows the buffer", dist)
		}
		if !isPointer(b[target]) {
			return target, nil
		}
		site, wide = target, true
	}
}

// requiredSize returns the number of bytes the value at off occupies,
// not counting alignment padding. Collections report only their 2-byte
// header; their slots are bounds-checked separately. Returns -1 when
// the header itself is malformed or truncated.
func requiredSize(b []byte, off int) int {
	switch b[off] & 0xF0 {
	case tagShort, tagSpecial:
		return 2
	case tagInt:
		return 2 + int(b[off]&0x07)
	case tagFloat:
		if b[off]&floatWideFlag != 0 {
			return 10
		}
		return 6
	case tagString, tagData:
		n := int(b[off] & 0x0F)
		if n < 0x0F {
			if n == 0 {
				return 2 // padded to slot width
			}
			return 1 + n
		}
		size, vl := varint.Read(b[off+1:])
		if vl == 0 || size > uint64(len(b)) {
			return -1
		}
		return 1 + vl + int(size)
	case tagArray, tagDict:
		return 2
	default: // pointer; 2 or 4 bytes depending on context
		return 2
	}
}

// collHeader describes a decoded array or dict header.
type collHeader struct {
	count int // element count; pair count for dicts
	first int // offset of the first slot
	width int // slot width in bytes
	wide  bool
}

func readCollHeader(b []byte, off int) (collHeader, error) {
	if off+2 > len(b) {
		return collHeader{}, corruptf(off, "truncated collection header")
	}
	h := collHeader{
		count: int(binary.BigEndian.Uint16(b[off:]) & longCount),
		first: off + 2,
		width: 2,
	}
	if b[off]&collWideFlag != 0 {
		h.wide = true
		h.width = 4
	}
	if h.count == longCount {
		n, vl := varint.Read(b[off+2:])
		if vl == 0 || n > uint64(len(b)) {
			return collHeader{}, corruptf(off, "bad long count")
		}
		h.count = int(n)
		h.first = off + 2 + vl
		if vl%2 != 0 {
			h.first++ // keep slots 2-byte aligned
		}
	}
	return h, nil
}

// validate walks the value at off and checks every header, payload and
// pointer against the buffer bounds. end is the first offset the value
// must not reach; for pointer targets that is the pointer site itself,
// which enforces the strictly-backward invariant.
func validate(b []byte, off int, end, depth int) error {
	if depth > maxDepth {
		return corruptf(off, "nesting deeper than %d", maxDepth)
	}
	if off+2 > end || off+2 > len(b) {
		return corruptf(off, "truncated value")
	}
	switch b[off] & 0xF0 {
	case tagArray, tagDict:
		return validateColl(b, off, end, depth)
	default:
		if isPointer(b[off]) {
			// Bare pointers are resolved by the caller; one reaching
			// validate directly is handled as a narrow site.
			target, err := resolvePointer(b, off, false)
			if err != nil {
				return err
			}
			return validate(b, target, off, depth+1)
		}
		need := requiredSize(b, off)
		if need < 0 {
			return corruptf(off, "bad length header")
		}
		if off+need > end {
			return corruptf(off, "value of %d bytes exceeds bounds", need)
		}
		return nil
	}
}

func validateColl(b []byte, off int, end, depth int) error {
	h, err := readCollHeader(b, off)
	if err != nil {
		return err
	}
	elems := h.count
	if b[off]&0xF0 == tagDict {
		elems *= 2
	}
	if h.first+elems*h.width > end {
		return corruptf(off, "collection slots exceed bounds")
	}
	for i := 0; i < elems; i++ {
		slot := h.first + i*h.width
		switch {
		case isPointer(b[slot]):
			target, err := resolvePointer(b, slot, h.wide)
			if err != nil {
				return err
			}
			if err := validate(b, target, slot, depth+1); err != nil {
				return err
			}
		case b[slot]&0xF0 == tagArray || b[slot]&0xF0 == tagDict:
			if err := validateColl(b, slot, end, depth+1); err != nil {
				return err
			}
		default:
			need := requiredSize(b, slot)
			if need < 0 || need > h.width {
				return corruptf(slot, "inline value does not fit a %d-byte slot", h.width)
			}
		}
	}
	return nil
}
