package quotation

import (
	"strconv"
)

// Handle is a local identifier for a section, group or item inside a Draft.
// The low 32 bits hold the slot index, the high 32 bits its generation, so a
// handle to a removed entity never resolves to whatever reuses the slot.
// The zero Handle refers to nothing.
type Handle uint64

// NoHandle is the zero handle
const NoHandle Handle = 0

func newHandle(index, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(index))
}

func (h Handle) index() uint32 { return uint32(h) }
func (h Handle) gen() uint32   { return uint32(h >> 32) }

// IsZero reports whether h refers to nothing
func (h Handle) IsZero() bool {
	return h == NoHandle
}

// String renders the handle as a decimal string
func (h Handle) String() string {
	return strconv.FormatUint(uint64(h), 10)
}

// ParseHandle parses the output of Handle.String
func ParseHandle(s string) (Handle, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return NoHandle, err
	}
	return Handle(v), nil
}

type slot[T any] struct {
	gen   uint32
	live  bool
	value T
}

// arena is an insertion-ordered slot allocator
type arena[T any] struct {
	slots []slot[T]
	free  []uint32
	order []Handle
}

func (a *arena[T]) insert(build func(Handle) T) Handle {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, slot[T]{})
	}
	s := &a.slots[idx]
	s.gen++
	s.live = true
	h := newHandle(idx, s.gen)
	s.value = build(h)
	a.order = append(a.order, h)
	return h
}

func (a *arena[T]) get(h Handle) (*T, bool) {
	idx := h.index()
	if h.IsZero() || int(idx) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[idx]
	if !s.live || s.gen != h.gen() {
		return nil, false
	}
	return &s.value, true
}

func (a *arena[T]) remove(h Handle) bool {
	if _, ok := a.get(h); !ok {
		return false
	}
	s := &a.slots[h.index()]
	var zero T
	s.value = zero
	s.live = false
	a.free = append(a.free, h.index())
	for i, o := range a.order {
		if o == h {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	return true
}

func (a *arena[T]) len() int {
	return len(a.order)
}

// each visits live values in insertion order
func (a *arena[T]) each(fn func(*T)) {
	for _, h := range a.order {
		fn(&a.slots[h.index()].value)
	}
}

// removeWhere removes every live value matching pred and returns their handles
func (a *arena[T]) removeWhere(pred func(*T) bool) []Handle {
	var removed []Handle
	for _, h := range a.order {
		if pred(&a.slots[h.index()].value) {
			removed = append(removed, h)
		}
	}
	for _, h := range removed {
		a.remove(h)
	}
	return removed
}
