// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

package fleck

import (
	"github.com/pkg/errors"
)

// Marshal encodes a plain Go value tree as a document. Supported are
// nil, bool, the integer and float kinds, string, []byte,
// []interface{} and map[string]interface{}.
func Marshal(v interface{}) ([]byte, error) {
	e := NewEncoder()
	if err := e.WriteValue(v); err != nil {
		return nil, err
	}
	return e.Finish()
}

// WriteValue writes an arbitrary Go value, recursing into slices and
// maps. It is the dynamic counterpart of the typed Write methods.
func (e *Encoder) WriteValue(v interface{}) error {
	switch t := v.(type) {
	case nil:
		return e.WriteNull()
	case bool:
		return e.WriteBool(t)
	case int:
		return e.WriteInt(int64(t))
	case int8:
		return e.WriteInt(int64(t))
	case int16:
		return e.WriteInt(int64(t))
	case int32:
		return e.WriteInt(int64(t))
	case int64:
		return e.WriteInt(t)
	case uint:
		return e.WriteUint(uint64(t))
	case uint8:
		return e.WriteUint(uint64(t))
	case uint16:
		return e.WriteUint(uint64(t))
	case uint32:
		return e.WriteUint(uint64(t))
	case uint64:
		return e.WriteUint(t)
	case float32:
		return e.WriteFloat32(t)
	case float64:
		return e.WriteFloat64(t)
	case string:
		return e.WriteString(t)
	case []byte:
		return e.WriteData(t)
	case []interface{}:
		if err := e.BeginArray(); err != nil {
			return err
		}
		for i, el := range t {
			if err := e.WriteValue(el); err != nil {
				return errors.Wrapf(err, "element %d", i)
			}
		}
		return e.EndArray()
	case map[string]interface{}:
		if err := e.BeginDict(); err != nil {
			return err
		}
		for k, el := range t {
			if err := e.WriteKey(k); err != nil {
				return err
			}
			if err := e.WriteValue(el); err != nil {
				return errors.Wrapf(err, "key %q", k)
			}
		}
		return e.EndDict()
	case Value:
		return e.writeDecoded(t)
	}
	return errors.Errorf("fleck: cannot encode values of type %T", v)
}

// writeDecoded re-encodes a decoded view, so documents can be composed
// from pieces of other documents.
func (e *Encoder) writeDecoded(v Value) error {
	switch v.Type() {
	case TypeNull:
		return e.WriteNull()
	case TypeUndefined:
		return e.WriteUndefined()
	case TypeBool:
		b, err := v.AsBool()
		if err != nil {
			return err
		}
		return e.WriteBool(b)
	case TypeInt:
		i, err := v.AsInt()
		if err != nil {
			return err
		}
		return e.WriteInt(i)
	case TypeUint:
		u, err := v.AsUint()
		if err != nil {
			return err
		}
		return e.WriteUint(u)
	case TypeFloat:
		f, err := v.AsFloat()
		if err != nil {
			return err
		}
		return e.WriteFloat64(f)
	case TypeString:
		s, err := v.AsString()
		if err != nil {
			return err
		}
		return e.WriteString(s)
	case TypeData:
		p, err := v.AsBytes()
		if err != nil {
			return err
		}
		return e.WriteData(p)
	case TypeArray:
		a, err := v.AsArray()
		if err != nil {
			return err
		}
		if err := e.BeginArray(); err != nil {
			return err
		}
		for it := a.Iter(); it.Next(); {
			if err := e.writeDecoded(it.Value()); err != nil {
				return err
			}
		}
		return e.EndArray()
	case TypeDict:
		d, err := v.AsDict()
		if err != nil {
			return err
		}
		if err := e.BeginDict(); err != nil {
			return err
		}
		for it := d.Iter(); it.Next(); {
			if err := e.WriteKey(it.Key()); err != nil {
				return err
			}
			if err := e.writeDecoded(it.Value()); err != nil {
				return err
			}
		}
		return e.EndDict()
	}
	return errors.New("fleck: cannot re-encode absent value")
}
