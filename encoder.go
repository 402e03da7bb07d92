// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

package fleck

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/ssbc/fleck/internal/varint"
)

// Encoder builds a document bottom-up: leaves are appended first, the
// root last, so references only ever point backward. An Encoder owns
// its buffer exclusively until Finish, and must not be shared between
// goroutines.
//
// Values written while an array or dict is open become elements of
// that collection. A single value (or collection) written with nothing
// open becomes the document root.
type Encoder struct {
	out      []byte
	cache    map[string]int // dedup: tag-prefixed content -> offset
	stack    []*pending
	rootOff  int
	haveRoot bool
	finished bool
}

type slot struct {
	inline [2]byte
	isPtr  bool
	target int // absolute offset of the pointee
}

type pair struct {
	key     string
	keySlot slot
	val     slot
	hasVal  bool
}

type pending struct {
	dict  bool
	elems []slot // array elements
	pairs []pair // dict entries
}

func (p *pending) awaitingValue() bool {
	return p.dict && len(p.pairs) > 0 && !p.pairs[len(p.pairs)-1].hasVal
}

// NewEncoder returns an empty encoder with a fresh dedup cache. The
// cache lives and dies with this one instance.
func NewEncoder() *Encoder {
	return &Encoder{
		cache:   make(map[string]int),
		rootOff: -1,
	}
}

// emit appends enc to the buffer and returns its offset, keeping the
// buffer 2-byte aligned.
func (e *Encoder) emit(enc []byte) int {
	off := len(e.out)
	e.out = append(e.out, enc...)
	if len(e.out)%2 != 0 {
		e.out = append(e.out, 0)
	}
	return off
}

// emitDedup is emit with a write-time cache probe: content already in
// the buffer is reused via its offset instead of being written again.
func (e *Encoder) emitDedup(enc []byte, key string) int {
	if off, ok := e.cache[key]; ok {
		return off
	}
	off := e.emit(enc)
	e.cache[key] = off
	return off
}

// add routes a scalar into the open collection or makes it the root.
// narrow is the 2-byte form for values that fit a slot directly; enc
// is the full encoding; dedupKey enables the write-time cache.
func (e *Encoder) add(narrow [2]byte, canInline bool, enc []byte, dedupKey string) error {
	if e.finished {
		return ErrEncoderFinished
	}
	if len(e.stack) == 0 {
		if e.haveRoot {
			return ErrRootWritten
		}
		e.rootOff = e.emit(enc)
		e.haveRoot = true
		return nil
	}
	if canInline {
		return e.push(slot{inline: narrow})
	}
	var off int
	if dedupKey != "" {
		off = e.emitDedup(enc, dedupKey)
	} else {
		off = e.emit(enc)
	}
	return e.push(slot{isPtr: true, target: off})
}

func (e *Encoder) push(s slot) error {
	top := e.stack[len(e.stack)-1]
	if !top.dict {
		top.elems = append(top.elems, s)
		return nil
	}
	if !top.awaitingValue() {
		return ErrKeyExpected
	}
	top.pairs[len(top.pairs)-1].val = s
	top.pairs[len(top.pairs)-1].hasVal = true
	return nil
}

// WriteNull appends a null value.
func (e *Encoder) WriteNull() error {
	return e.add([2]byte{tagSpecial | specialNull, 0}, true, []byte{tagSpecial | specialNull, 0}, "")
}

// WriteUndefined appends an undefined value.
func (e *Encoder) WriteUndefined() error {
	return e.add([2]byte{tagSpecial | specialUndefined, 0}, true, []byte{tagSpecial | specialUndefined, 0}, "")
}

// WriteBool appends a boolean.
func (e *Encoder) WriteBool(b bool) error {
	s := byte(specialFalse)
	if b {
		s = specialTrue
	}
	return e.add([2]byte{tagSpecial | s, 0}, true, []byte{tagSpecial | s, 0}, "")
}

// WriteInt appends a signed integer. Values in [-2048, 2047] are
// stored inline in the header.
func (e *Encoder) WriteInt(i int64) error {
	if i >= minShort && i <= maxShort {
		h := [2]byte{tagShort | byte(uint16(i)>>8&0x0F), byte(i)}
		return e.add(h, true, h[:], "")
	}
	n := 1
	for ; n < 8; n++ {
		// minimal length such that sign extension reproduces i
		lo := int64(-1) << uint(8*n-1)
		if i >= lo && i <= -lo-1 {
			break
		}
	}
	enc := make([]byte, 1+n)
	enc[0] = tagInt | byte(n-1)
	var le [8]byte
	binary.LittleEndian.PutUint64(le[:], uint64(i))
	copy(enc[1:], le[:n])
	return e.add([2]byte{}, false, enc, "")
}

// WriteUint appends an unsigned integer.
func (e *Encoder) WriteUint(u uint64) error {
	if u <= maxShort {
		return e.WriteInt(int64(u))
	}
	n := 8
	for n > 1 && u>>(uint(n-1)*8) == 0 {
		n--
	}
	enc := make([]byte, 1+n)
	enc[0] = tagInt | intUnsignedFlag | byte(n-1)
	var le [8]byte
	binary.LittleEndian.PutUint64(le[:], u)
	copy(enc[1:], le[:n])
	return e.add([2]byte{}, false, enc, "")
}

// WriteFloat32 appends a 32-bit float.
func (e *Encoder) WriteFloat32(f float32) error {
	enc := make([]byte, 6)
	enc[0] = tagFloat
	binary.LittleEndian.PutUint32(enc[2:], math.Float32bits(f))
	return e.add([2]byte{}, false, enc, "")
}

// WriteFloat64 appends a 64-bit float. When narrowing to float32 loses
// nothing the payload is stored in 4 bytes, flagged so it still
// decodes as float64.
func (e *Encoder) WriteFloat64(f float64) error {
	if float64(float32(f)) == f {
		enc := make([]byte, 6)
		enc[0] = tagFloat | floatDoubleFlag
		binary.LittleEndian.PutUint32(enc[2:], math.Float32bits(float32(f)))
		return e.add([2]byte{}, false, enc, "")
	}
	enc := make([]byte, 10)
	enc[0] = tagFloat | floatWideFlag
	binary.LittleEndian.PutUint64(enc[2:], math.Float64bits(f))
	return e.add([2]byte{}, false, enc, "")
}

func encodeBlob(tag byte, p []byte) []byte {
	if len(p) <= maxInlineLen {
		enc := make([]byte, 1+len(p))
		enc[0] = tag | byte(len(p))
		copy(enc[1:], p)
		return enc
	}
	enc := make([]byte, 1, 1+varint.Len(uint64(len(p)))+len(p))
	enc[0] = tag | 0x0F
	enc = varint.Append(enc, uint64(len(p)))
	return append(enc, p...)
}

// WriteString appends a string. Strings of at most one byte fit a slot
// directly; repeated longer strings are deduplicated via the cache.
func (e *Encoder) WriteString(s string) error {
	if len(s) <= 1 {
		var b byte
		if len(s) == 1 {
			b = s[0]
		}
		h := [2]byte{tagString | byte(len(s)), b}
		return e.add(h, true, h[:2], "")
	}
	return e.add([2]byte{}, false, encodeBlob(tagString, []byte(s)), "s\x00"+s)
}

// WriteData appends a byte blob. Payload bytes are stored as-is.
func (e *Encoder) WriteData(p []byte) error {
	if len(p) <= 1 {
		var b byte
		if len(p) == 1 {
			b = p[0]
		}
		h := [2]byte{tagData | byte(len(p)), b}
		return e.add(h, true, h[:2], "")
	}
	return e.add([2]byte{}, false, encodeBlob(tagData, p), "d\x00"+string(p))
}

// WriteKey appends a dict key. Every key needs a following value
// before the next key or EndDict. Keys share the dedup cache with
// string values.
func (e *Encoder) WriteKey(key string) error {
	if e.finished {
		return ErrEncoderFinished
	}
	if len(e.stack) == 0 {
		return ErrDictNotOpen
	}
	top := e.stack[len(e.stack)-1]
	if !top.dict {
		return ErrDictNotOpen
	}
	if top.awaitingValue() {
		return ErrValueExpected
	}
	p := pair{key: key}
	if len(key) <= 1 {
		var b byte
		if len(key) == 1 {
			b = key[0]
		}
		p.keySlot = slot{inline: [2]byte{tagString | byte(len(key)), b}}
	} else {
		off := e.emitDedup(encodeBlob(tagString, []byte(key)), "s\x00"+key)
		p.keySlot = slot{isPtr: true, target: off}
	}
	top.pairs = append(top.pairs, p)
	return nil
}

func (e *Encoder) begin(dict bool) error {
	if e.finished {
		return ErrEncoderFinished
	}
	if len(e.stack) == 0 && e.haveRoot {
		return ErrRootWritten
	}
	if len(e.stack) > 0 {
		top := e.stack[len(e.stack)-1]
		if top.dict && !top.awaitingValue() {
			return ErrKeyExpected
		}
	}
	e.stack = append(e.stack, &pending{dict: dict})
	return nil
}

// BeginArray opens an array; values written until the matching
// EndArray become its elements.
func (e *Encoder) BeginArray() error { return e.begin(false) }

// BeginDict opens a dict; WriteKey/value pairs written until the
// matching EndDict become its entries, sorted on EndDict.
func (e *Encoder) BeginDict() error { return e.begin(true) }

// EndArray closes the innermost open array and writes it out.
func (e *Encoder) EndArray() error {
	if e.finished {
		return ErrEncoderFinished
	}
	if len(e.stack) == 0 || e.stack[len(e.stack)-1].dict {
		return ErrArrayNotOpen
	}
	top := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	return e.finishColl(tagArray, top.elems, len(top.elems))
}

// EndDict closes the innermost open dict, sorts its entries by key and
// writes it out.
func (e *Encoder) EndDict() error {
	if e.finished {
		return ErrEncoderFinished
	}
	if len(e.stack) == 0 || !e.stack[len(e.stack)-1].dict {
		return ErrDictNotOpen
	}
	top := e.stack[len(e.stack)-1]
	if top.awaitingValue() {
		return ErrValueExpected
	}
	e.stack = e.stack[:len(e.stack)-1]

	// The decoder's binary search relies on exactly this order:
	// byte-wise comparison of the key strings.
	sort.SliceStable(top.pairs, func(i, j int) bool {
		return top.pairs[i].key < top.pairs[j].key
	})

	slots := make([]slot, 0, 2*len(top.pairs))
	for _, p := range top.pairs {
		slots = append(slots, p.keySlot, p.val)
	}
	return e.finishColl(tagDict, slots, len(top.pairs))
}

// finishColl writes a collection header plus its slots and references
// the result from the parent (or makes it the root). Slot width is
// chosen here: if any pointer's backward distance from its final slot
// position exceeds the narrow range, the whole collection goes wide.
func (e *Encoder) finishColl(tag byte, slots []slot, count int) error {
	start := len(e.out)
	hdrLen := 2
	if count >= longCount {
		vl := varint.Len(uint64(count))
		if vl%2 != 0 {
			vl++
		}
		hdrLen += vl
	}

	wide := false
	for i, s := range slots {
		if s.isPtr && (start+hdrLen+i*2)-s.target > maxNarrowDist {
			wide = true
			break
		}
	}
	if wide {
		tag |= collWideFlag
	}

	hdrCount := count
	if count >= longCount {
		hdrCount = longCount
	}
	e.out = append(e.out, tag|byte(hdrCount>>8), byte(hdrCount))
	if count >= longCount {
		e.out = varint.Append(e.out, uint64(count))
		if len(e.out)%2 != 0 {
			e.out = append(e.out, 0)
		}
	}

	for _, s := range slots {
		site := len(e.out)
		if !s.isPtr {
			e.out = append(e.out, s.inline[0], s.inline[1])
			if wide {
				e.out = append(e.out, 0, 0)
			}
			continue
		}
		dist := site - s.target
		if wide {
			if dist > maxWideDist {
				return ErrTooLarge
			}
			var be [4]byte
			binary.BigEndian.PutUint32(be[:], uint32(dist)|0x80000000)
			e.out = append(e.out, be[:]...)
		} else {
			var be [2]byte
			binary.BigEndian.PutUint16(be[:], uint16(dist>>1)|0x8000)
			e.out = append(e.out, be[:]...)
		}
	}

	if len(e.stack) > 0 {
		return e.push(slot{isPtr: true, target: start})
	}
	if e.haveRoot {
		return ErrRootWritten
	}
	e.rootOff = start
	e.haveRoot = true
	return nil
}

// Finish writes the trailing root reference and returns the completed
// buffer. The encoder is dead afterwards; any further call reports
// ErrEncoderFinished. The returned buffer must be treated as
// immutable.
func (e *Encoder) Finish() ([]byte, error) {
	if e.finished {
		return nil, ErrEncoderFinished
	}
	if len(e.stack) > 0 {
		return nil, ErrOpenCollection
	}
	if !e.haveRoot {
		return nil, ErrEmptyDocument
	}
	e.finished = true

	if len(e.out) == 2 && e.rootOff == 0 {
		if t := e.out[0] & 0xF0; t != tagArray && t != tagDict {
			// single 2-byte scalar: the document is its own root
			return e.out, nil
		}
	}
	dist := len(e.out) - e.rootOff
	if dist > maxNarrowDist {
		// far root: wide pointer first, then a narrow pointer to it
		if dist > maxWideDist {
			return nil, ErrTooLarge
		}
		var be [4]byte
		binary.BigEndian.PutUint32(be[:], uint32(dist)|0x80000000)
		e.out = append(e.out, be[:]...)
		dist = 4
	}
	var be [2]byte
	binary.BigEndian.PutUint16(be[:], uint16(dist>>1)|0x8000)
	e.out = append(e.out, be[:]...)
	return e.out, nil
}
