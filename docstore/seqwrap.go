// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

package docstore

import (
	"github.com/ssbc/fleck"
)

// SeqWrapper pairs a document with its sequence number. Query streams
// emit these instead of bare values when SeqWrap(true) is set.
type SeqWrapper interface {
	Seq() Seq
	Value() fleck.Value
}

type seqWrapper struct {
	seq Seq
	v   fleck.Value
}

func (sw *seqWrapper) Seq() Seq {
	return sw.seq
}

func (sw *seqWrapper) Value() fleck.Value {
	return sw.v
}

func WrapWithSeq(v fleck.Value, seq Seq) SeqWrapper {
	return &seqWrapper{
		seq: seq,
		v:   v,
	}
}
