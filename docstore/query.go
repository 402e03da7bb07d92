// SPDX-FileCopyrightText: 2022 The fleck Authors
//
// SPDX-License-Identifier: MIT

package docstore

import (
	"context"

	luigi "github.com/ssbc/go-luigi"
)

type query struct {
	log *store

	gt, gte, lt, lte Seq

	lo, hi Seq // resolved inclusive window
	nxt    Seq

	limit   int
	reverse bool
	seqWrap bool
}

var _ Query = (*query)(nil)
var _ luigi.Source = (*query)(nil)

func (qry *query) Gt(s Seq) error {
	qry.gt = s
	return nil
}

func (qry *query) Gte(s Seq) error {
	qry.gte = s
	return nil
}

func (qry *query) Lt(s Seq) error {
	qry.lt = s
	return nil
}

func (qry *query) Lte(s Seq) error {
	qry.lte = s
	return nil
}

func (qry *query) Limit(n int) error {
	qry.limit = n
	return nil
}

func (qry *query) Reverse(rev bool) error {
	qry.reverse = rev
	return nil
}

func (qry *query) SeqWrap(wrap bool) error {
	qry.seqWrap = wrap
	return nil
}

// resolveWindow clamps the requested bounds against the store's current
// sequence number.
func (qry *query) resolveWindow(cur Seq) {
	qry.lo = 0
	if qry.gte != SeqEmpty {
		qry.lo = qry.gte
	}
	if qry.gt != SeqEmpty {
		qry.lo = qry.gt + 1
	}

	qry.hi = cur
	if qry.lte != SeqEmpty && qry.lte < qry.hi {
		qry.hi = qry.lte
	}
	if qry.lt != SeqEmpty && qry.lt-1 < qry.hi {
		qry.hi = qry.lt - 1
	}

	if qry.reverse {
		qry.nxt = qry.hi
	} else {
		qry.nxt = qry.lo
	}
}

func (qry *query) Next(ctx context.Context) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if qry.limit == 0 {
		return nil, luigi.EOS{}
	}
	if qry.nxt < qry.lo || qry.nxt > qry.hi {
		return nil, luigi.EOS{}
	}

	v, err := qry.log.Get(qry.nxt)
	if err != nil {
		return nil, err
	}

	seq := qry.nxt
	if qry.reverse {
		qry.nxt--
	} else {
		qry.nxt++
	}
	if qry.limit > 0 {
		qry.limit--
	}

	if qry.seqWrap {
		return WrapWithSeq(v, seq), nil
	}
	return v, nil
}
