// Package env implements lexical scopes as an arena of scope records
// addressed by integer handles. Each record holds its parent's handle;
// lookups walk the parent chain outward. Scopes are freed in LIFO order
// when the call or block frame that pushed them pops.
package env

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/you-not-fish/ktc/internal/types"
)

// Handle identifies a scope within an Arena.
type Handle int32

// NoScope is the parent handle of a root scope.
const NoScope Handle = -1

var (
	// ErrUndefined is returned when a name has no binding in the scope chain.
	ErrUndefined = errors.New("undefined variable")

	// ErrImmutable is returned when assigning to a val binding.
	ErrImmutable = errors.New("cannot reassign val")
)

// Binding is a named slot: its declared type, mutability, and payload.
// The interpreter stores runtime values in Value; the code generator
// stores frame offsets.
type Binding[T any] struct {
	Type    types.Basic
	Mutable bool
	Value   T
}

type record[T any] struct {
	parent Handle
	elems  map[string]*Binding[T]
}

// Arena owns every scope of one traversal.
type Arena[T any] struct {
	recs []record[T]
	peak int
}

// New returns an empty arena.
func New[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Push creates a scope whose parent is parent and returns its handle.
// Records freed by Pop are reused.
func (a *Arena[T]) Push(parent Handle) Handle {
	h := Handle(len(a.recs))
	if len(a.recs) < cap(a.recs) {
		a.recs = a.recs[:len(a.recs)+1]
		r := &a.recs[h]
		if r.elems == nil {
			// Spare capacity from append, never handed out before.
			r.elems = make(map[string]*Binding[T])
		} else {
			clear(r.elems)
		}
		r.parent = parent
	} else {
		a.recs = append(a.recs, record[T]{
			parent: parent,
			elems:  make(map[string]*Binding[T]),
		})
	}
	if len(a.recs) > a.peak {
		a.peak = len(a.recs)
	}
	return h
}

// Pop frees h and every scope pushed after it.
func (a *Arena[T]) Pop(h Handle) {
	if h < 0 || int(h) >= len(a.recs) {
		panic(fmt.Sprintf("env: pop of dead scope %d", h))
	}
	a.recs = a.recs[:h]
}

// Live returns the number of live scopes.
func (a *Arena[T]) Live() int {
	return len(a.recs)
}

// Peak returns the largest number of simultaneously live scopes.
func (a *Arena[T]) Peak() int {
	return a.peak
}

func (a *Arena[T]) rec(h Handle) *record[T] {
	if h < 0 || int(h) >= len(a.recs) {
		panic(fmt.Sprintf("env: access to dead scope %d", h))
	}
	return &a.recs[h]
}

// Define binds name in scope h. A binding of the same name in h is replaced;
// bindings in enclosing scopes are shadowed.
func (a *Arena[T]) Define(h Handle, name string, b Binding[T]) *Binding[T] {
	nb := &b
	a.rec(h).elems[name] = nb
	return nb
}

// LookupLocal returns the binding of name in h itself, or nil.
func (a *Arena[T]) LookupLocal(h Handle, name string) *Binding[T] {
	return a.rec(h).elems[name]
}

// Lookup returns the binding of name searching from h outward through its
// parents, and the scope it was found in. It returns (nil, NoScope) when the
// name is unbound.
func (a *Arena[T]) Lookup(h Handle, name string) (*Binding[T], Handle) {
	for s := h; s != NoScope; s = a.rec(s).parent {
		if b := a.recs[s].elems[name]; b != nil {
			return b, s
		}
	}
	return nil, NoScope
}

// Writable returns the binding of name visible from h if it may be
// assigned. The error's cause is ErrUndefined or ErrImmutable.
func (a *Arena[T]) Writable(h Handle, name string) (*Binding[T], error) {
	b, _ := a.Lookup(h, name)
	if b == nil {
		return nil, errors.WithMessage(ErrUndefined, name)
	}
	if !b.Mutable {
		return nil, errors.WithMessage(ErrImmutable, name)
	}
	return b, nil
}
