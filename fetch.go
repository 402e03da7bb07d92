// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

package fleck

// Fetch resolves a path of steps against nested containers without
// materializing anything along the way. Each step is either an int
// (array index) or a string (dict key). The walk short-circuits to
// absent as soon as a step does not fit the value at hand: wrong
// container kind, missing key, index out of range, or a step type that
// is neither int nor string. The cost is the sum of the per-step
// lookups, independent of document size.
func (v Value) Fetch(path ...interface{}) (Value, bool) {
	cur := v
	for _, step := range path {
		switch s := step.(type) {
		case int:
			arr, err := cur.AsArray()
			if err != nil {
				return Value{}, false
			}
			next, ok := arr.Get(s)
			if !ok {
				return Value{}, false
			}
			cur = next
		case string:
			dict, err := cur.AsDict()
			if err != nil {
				return Value{}, false
			}
			next, ok := dict.Get(s)
			if !ok {
				return Value{}, false
			}
			cur = next
		default:
			return Value{}, false
		}
	}
	return cur, true
}
