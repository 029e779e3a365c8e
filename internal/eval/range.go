package eval

import (
	"math"

	"github.com/you-not-fish/ktc/internal/syntax"
	"github.com/you-not-fish/ktc/internal/types"
)

// progression is an arithmetic sequence of Int values starting at first
// and bounded by last, inclusive.
type progression struct {
	first, last int64
	step        uint64
	down        bool
}

func (p progression) empty() bool {
	if p.down {
		return p.first < p.last
	}
	return p.first > p.last
}

// next returns the element after i. The distance to last is compared in
// unsigned arithmetic so that ranges ending near the Int limits terminate.
func (p progression) next(i int64) (int64, bool) {
	if p.down {
		if uint64(i)-uint64(p.last) < p.step {
			return 0, false
		}
		return int64(uint64(i) - p.step), true
	}
	if uint64(p.last)-uint64(i) < p.step {
		return 0, false
	}
	return int64(uint64(i) + p.step), true
}

// progression evaluates the bounds of a for-loop range once, left to right.
func (in *interp) progression(r *syntax.RangeExpr) (progression, error) {
	bound := func(x syntax.Expr) (int64, error) {
		v, err := in.expr(x)
		if err != nil {
			return 0, err
		}
		if v.Type != types.Int {
			return 0, errorf(x.Pos(), TypeMismatch, "range bound must be Int, got %s", v.Type)
		}
		return v.Int(), nil
	}

	from, err := bound(r.From)
	if err != nil {
		return progression{}, err
	}
	to, err := bound(r.To)
	if err != nil {
		return progression{}, err
	}
	step := int64(1)
	if r.Step != nil {
		if step, err = bound(r.Step); err != nil {
			return progression{}, err
		}
		if step <= 0 {
			return progression{}, errorf(r.Step.Pos(), InvalidRange, "step must be positive, was %d", step)
		}
	}

	p := progression{first: from, last: to, step: uint64(step)}
	switch r.Op {
	case syntax.DOWNTO:
		p.down = true
	case syntax.UNTIL:
		if to == math.MinInt64 {
			// Nothing is below the smallest Int.
			p.first, p.last = 1, 0
		} else {
			p.last = to - 1
		}
	}
	return p, nil
}
