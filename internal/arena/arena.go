// Package arena provides append-only typed arenas that hand out stable,
// unforgeable, dense integer handles, plus a generational slot map for the
// rarer case where a handle must be invalidated and its slot reused (see
// spec.md §3 "Arenas").
package arena

// Idx is a dense, niche (non-zero) handle into an Arena[T]. The zero value
// of Idx is never produced by New, so Idx behaves as its own "no value"
// sentinel and a *Idx field never needs an extra bool to mean "absent" —
// this mirrors the "niche representation" requirement in spec.md §3.
type Idx[T any] struct {
	n uint32 // 1-based; 0 means absent.
}

// Valid reports whether idx was produced by Arena.New (as opposed to being
// the zero value of Idx[T]).
func (idx Idx[T]) Valid() bool { return idx.n != 0 }

// index returns the 0-based slice index for a valid Idx.
func (idx Idx[T]) index() int { return int(idx.n) - 1 }

// Arena is a dense, append-only store of T, indexed by Idx[T].
type Arena[T any] struct {
	items []T
}

// New allocates v in the arena and returns a stable handle to it.
func (a *Arena[T]) New(v T) Idx[T] {
	a.items = append(a.items, v)
	return Idx[T]{n: uint32(len(a.items))}
}

// Get dereferences idx. It panics on an invalid (zero) or out-of-range idx;
// both indicate a compiler bug (an Idx escaping its owning arena), not a
// user-facing error.
func (a *Arena[T]) Get(idx Idx[T]) *T {
	if !idx.Valid() || idx.index() >= len(a.items) {
		panic("arena: invalid index")
	}
	return &a.items[idx.index()]
}

// Len returns the number of allocated slots.
func (a *Arena[T]) Len() int { return len(a.items) }

// AppendIndexed appends v and returns its 0-based dense index directly,
// for a caller that already has its own niche-handle type wrapping a bare
// int (e.g. cfg.VarRef's Index field) rather than needing a second
// wrapper around Idx[T]. It shares the same append-only backing storage
// as New/Get; only the handle shape differs.
func (a *Arena[T]) AppendIndexed(v T) int {
	a.items = append(a.items, v)
	return len(a.items) - 1
}

// GetAt dereferences a 0-based dense index produced by AppendIndexed.
func (a *Arena[T]) GetAt(i int) *T { return &a.items[i] }

// All returns the dense slice of indices in allocation order, for iteration.
func (a *Arena[T]) All() []Idx[T] {
	out := make([]Idx[T], len(a.items))
	for i := range a.items {
		out[i] = Idx[T]{n: uint32(i + 1)}
	}
	return out
}

// Items exposes the backing slice for read-only dense iteration without
// materializing handles, e.g. "for i, v := range arena.Items()".
func (a *Arena[T]) Items() []T { return a.items }

// SlotKey is a generational handle: a slot index plus a generation counter.
// Unlike Idx, a SlotKey can go stale — Get returns ok=false once the slot
// has been recycled, which is required for compiled function/struct
// references that may be invalidated and replaced during specialization
// (spec.md §3 "Lifecycles").
type SlotKey[T any] struct {
	slot uint32
	gen  uint32
}

type slotEntry[T any] struct {
	value T
	gen   uint32
	alive bool
}

// SlotMap is a generational arena supporting deletion.
type SlotMap[T any] struct {
	slots []slotEntry[T]
	free  []uint32
}

// Insert stores v and returns a SlotKey for it.
func (m *SlotMap[T]) Insert(v T) SlotKey[T] {
	if n := len(m.free); n > 0 {
		i := m.free[n-1]
		m.free = m.free[:n-1]
		m.slots[i].value = v
		m.slots[i].alive = true
		return SlotKey[T]{slot: i, gen: m.slots[i].gen}
	}
	m.slots = append(m.slots, slotEntry[T]{value: v, gen: 0, alive: true})
	return SlotKey[T]{slot: uint32(len(m.slots) - 1), gen: 0}
}

// Get returns the value for key, or ok=false if key has been removed or
// reused by a later Insert.
func (m *SlotMap[T]) Get(key SlotKey[T]) (*T, bool) {
	if int(key.slot) >= len(m.slots) {
		return nil, false
	}
	e := &m.slots[key.slot]
	if !e.alive || e.gen != key.gen {
		return nil, false
	}
	return &e.value, true
}

// Remove invalidates key's slot and makes it eligible for reuse by a future
// Insert, bumping the generation so any outstanding stale SlotKey values
// fail Get rather than aliasing the new occupant.
func (m *SlotMap[T]) Remove(key SlotKey[T]) bool {
	if int(key.slot) >= len(m.slots) {
		return false
	}
	e := &m.slots[key.slot]
	if !e.alive || e.gen != key.gen {
		return false
	}
	e.alive = false
	e.gen++
	var zero T
	e.value = zero
	m.free = append(m.free, key.slot)
	return true
}

// Replace overwrites the value at key in place without changing its
// generation, used when specialization produces a new body for an existing
// compiled function/struct reference.
func (m *SlotMap[T]) Replace(key SlotKey[T], v T) bool {
	p, ok := m.Get(key)
	if !ok {
		return false
	}
	*p = v
	return true
}
