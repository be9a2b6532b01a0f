package builtin

import (
	"errors"
	"fmt"
)

// ErrSlotsSealed is returned when a slot is written after its instance became guest visible.
var ErrSlotsSealed = errors.New("instance slots are sealed")

// Slots is the fixed set of internal storage slots of one binding instance.
//
// An instance is constructing until the framework seals its slots, and ready afterwards. Slots
// are only written while constructing, so a ready instance is read without locking.
type Slots struct {
	vals   []any
	sealed bool
}

func newSlots(n int) *Slots {
	return &Slots{vals: make([]any, n)}
}

// Len is the number of reserved slots.
func (s *Slots) Len() int {
	return len(s.vals)
}

// Get returns the value in slot i, or nil if i is out of range.
func (s *Slots) Get(i int) any {
	if i < 0 || i >= len(s.vals) {
		return nil
	}
	return s.vals[i]
}

// Set stores v in slot i. It fails once the instance is ready.
func (s *Slots) Set(i int, v any) error {
	if s.sealed {
		return ErrSlotsSealed
	}
	if i < 0 || i >= len(s.vals) {
		return fmt.Errorf("slot %d out of range [0, %d)", i, len(s.vals))
	}
	s.vals[i] = v
	return nil
}

// Ready reports whether construction finished.
func (s *Slots) Ready() bool {
	return s.sealed
}

func (s *Slots) seal() {
	s.sealed = true
}
