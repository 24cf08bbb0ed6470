package kosketin

import (
	"errors"
	"fmt"
	"math"
)

type (
	// Key is a single key of the keyboard. Keys are immutable once the
	// Keyboard is constructed; all mutable press state lives elsewhere,
	// keyed by the index of the key within its Keyboard.
	Key struct {
		Name      string  // note name, e.g. "F2" or "F#2"; unique within a keyboard
		Frequency float64 // fundamental frequency in Hz
		Sharpness float64 // haptic sharpness coefficient, in [0,1]
		Sharp     bool    // true for sharp (black) keys
	}

	// Keyboard is a fixed, ordered sequence of keys, naturals and sharps
	// interleaved in musical order. It is created once at startup from
	// configuration and never mutated during a session.
	Keyboard struct {
		keys    []Key
		index   map[string]int // key name -> index in keys
		leftOf  map[string]string
		natPos  []int // key index -> natural position, -1 for sharps
		natural []int // natural position -> key index
	}
)

var ErrNoNaturals = errors.New("keyboard has no natural keys")

// NewKeyboard validates the key list and the sharp-to-left-natural table
// and builds the keyboard. The table maps the name of each sharp key to
// the name of the natural key immediately to its left; a sharp missing
// from the table is legal but will not be laid out (see Layout).
func NewKeyboard(keys []Key, leftOf map[string]string) (*Keyboard, error) {
	if len(keys) == 0 {
		return nil, errors.New("keyboard has no keys")
	}
	kb := &Keyboard{
		keys:   append([]Key(nil), keys...),
		index:  make(map[string]int, len(keys)),
		leftOf: make(map[string]string, len(leftOf)),
		natPos: make([]int, len(keys)),
	}
	for i, k := range kb.keys {
		if k.Name == "" {
			return nil, fmt.Errorf("key %d has an empty name", i)
		}
		if _, ok := kb.index[k.Name]; ok {
			return nil, fmt.Errorf("duplicate key name %q", k.Name)
		}
		if k.Sharpness < 0 || k.Sharpness > 1 {
			return nil, fmt.Errorf("key %q: sharpness %v outside [0,1]", k.Name, k.Sharpness)
		}
		if k.Frequency <= 0 {
			return nil, fmt.Errorf("key %q: frequency %v is not positive", k.Name, k.Frequency)
		}
		kb.index[k.Name] = i
		if k.Sharp {
			kb.natPos[i] = -1
		} else {
			kb.natPos[i] = len(kb.natural)
			kb.natural = append(kb.natural, i)
		}
	}
	if len(kb.natural) == 0 {
		return nil, ErrNoNaturals
	}
	for sharp, nat := range leftOf {
		si, ok := kb.index[sharp]
		if !ok {
			return nil, fmt.Errorf("left-natural table refers to unknown key %q", sharp)
		}
		if !kb.keys[si].Sharp {
			return nil, fmt.Errorf("left-natural table entry %q is not a sharp key", sharp)
		}
		ni, ok := kb.index[nat]
		if !ok {
			return nil, fmt.Errorf("left natural %q of sharp %q is not on the keyboard", nat, sharp)
		}
		if kb.keys[ni].Sharp {
			return nil, fmt.Errorf("left natural %q of sharp %q is itself a sharp", nat, sharp)
		}
		kb.leftOf[sharp] = nat
	}
	return kb, nil
}

// Count returns the number of keys on the keyboard.
func (kb *Keyboard) Count() int { return len(kb.keys) }

// Key returns the key at the given index in keyboard order.
func (kb *Keyboard) Key(i int) Key { return kb.keys[i] }

// IndexOf returns the index of the key with the given name.
func (kb *Keyboard) IndexOf(name string) (int, bool) {
	i, ok := kb.index[name]
	return i, ok
}

// NaturalCount returns the number of natural keys.
func (kb *Keyboard) NaturalCount() int { return len(kb.natural) }

// NaturalIndex returns the key index of the i:th natural, counting from
// the left.
func (kb *Keyboard) NaturalIndex(i int) int { return kb.natural[i] }

// NaturalPosition returns the natural position (0 = leftmost natural) of
// the key at the given index, or -1 if the key is a sharp.
func (kb *Keyboard) NaturalPosition(i int) int { return kb.natPos[i] }

// LeftNatural returns the natural position of the natural immediately to
// the left of the given sharp key, per the configured table. ok is false
// for sharps with no table entry and for natural keys.
func (kb *Keyboard) LeftNatural(i int) (pos int, ok bool) {
	nat, ok := kb.leftOf[kb.keys[i].Name]
	if !ok {
		return 0, false
	}
	ni := kb.index[nat]
	return kb.natPos[ni], true
}

// NoteNumber converts a fundamental frequency to the nearest MIDI note
// number, clamped to the 0..127 range.
func NoteNumber(freq float64) byte {
	if freq <= 0 {
		return 0
	}
	n := int(math.Round(69 + 12*math.Log2(freq/440)))
	return byte(min(max(n, 0), 127))
}
