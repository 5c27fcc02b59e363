// Package ranking keeps a dense, unique 1-based ranking of keys. Every
// operation leaves the positions as exactly {1..N}.
package ranking

import (
	"errors"
	"sort"
)

var (
	ErrKeyExists   = errors.New("key is already ranked")
	ErrKeyNotFound = errors.New("key is not ranked")
)

type Slot struct {
	Key      string
	Position int
}

type Ranking struct {
	slots []Slot
}

// New builds a ranking from slots loaded from storage. Gaps and duplicated
// positions are compacted, keeping the order of the stored positions and
// breaking ties by key.
func New(slots []Slot) *Ranking {
	r := &Ranking{slots: append([]Slot{}, slots...)}
	r.sort()
	for i := range r.slots {
		r.slots[i].Position = i + 1
	}

	return r
}

// FromKeys ranks keys in the given order, starting at 1.
func FromKeys(keys ...string) (*Ranking, error) {
	r := New(nil)
	for _, key := range keys {
		if _, err := r.Insert(key, r.Len()+1); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (r *Ranking) Len() int {
	return len(r.slots)
}

func (r *Ranking) Slots() []Slot {
	return append([]Slot{}, r.slots...)
}

func (r *Ranking) Position(key string) (int, bool) {
	i := r.index(key)
	if i < 0 {
		return 0, false
	}

	return r.slots[i].Position, true
}

// Insert places key at target, clamped to [1, N+1]. Every entry at or below
// target moves down by one. It returns the position the key ended up at.
func (r *Ranking) Insert(key string, target int) (int, error) {
	if r.index(key) >= 0 {
		return 0, ErrKeyExists
	}

	target = clamp(target, 1, r.Len()+1)
	for i := range r.slots {
		if r.slots[i].Position >= target {
			r.slots[i].Position++
		}
	}

	r.slots = append(r.slots, Slot{Key: key, Position: target})
	r.sort()

	return target, nil
}

// Move changes the position of key to target, clamped to [1, N]. Entries
// between the old and the new position shift by one toward the vacated slot.
func (r *Ranking) Move(key string, target int) (int, error) {
	i := r.index(key)
	if i < 0 {
		return 0, ErrKeyNotFound
	}

	old := r.slots[i].Position
	target = clamp(target, 1, r.Len())

	switch {
	case target < old:
		for j := range r.slots {
			if p := r.slots[j].Position; p >= target && p < old {
				r.slots[j].Position++
			}
		}
	case target > old:
		for j := range r.slots {
			if p := r.slots[j].Position; p > old && p <= target {
				r.slots[j].Position--
			}
		}
	default:
		return old, nil
	}

	r.slots[i].Position = target
	r.sort()

	return target, nil
}

// Remove drops key and closes the gap it leaves. It reports whether the key
// was ranked.
func (r *Ranking) Remove(key string) bool {
	i := r.index(key)
	if i < 0 {
		return false
	}

	removed := r.slots[i].Position
	r.slots = append(r.slots[:i], r.slots[i+1:]...)
	for j := range r.slots {
		if r.slots[j].Position > removed {
			r.slots[j].Position--
		}
	}

	return true
}

func (r *Ranking) index(key string) int {
	for i := range r.slots {
		if r.slots[i].Key == key {
			return i
		}
	}

	return -1
}

func (r *Ranking) sort() {
	sort.SliceStable(r.slots, func(i, j int) bool {
		if r.slots[i].Position != r.slots[j].Position {
			return r.slots[i].Position < r.slots[j].Position
		}

		return r.slots[i].Key < r.slots[j].Key
	})
}

// Diff returns the slots of after whose position is new or differs from
// before. These are the rows a caller has to persist.
func Diff(before, after []Slot) []Slot {
	old := make(map[string]int, len(before))
	for _, s := range before {
		old[s.Key] = s.Position
	}

	changed := []Slot{}
	for _, s := range after {
		if p, ok := old[s.Key]; !ok || p != s.Position {
			changed = append(changed, s)
		}
	}

	return changed
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}

	if v > max {
		return max
	}

	return v
}
