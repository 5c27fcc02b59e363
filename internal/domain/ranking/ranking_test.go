package ranking

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func requireDense(t *testing.T, r *Ranking) {
	t.Helper()

	seen := map[int]bool{}
	for _, s := range r.Slots() {
		require.GreaterOrEqual(t, s.Position, 1)
		require.LessOrEqual(t, s.Position, r.Len())
		require.False(t, seen[s.Position], "duplicated position %d", s.Position)
		seen[s.Position] = true
	}
	require.Len(t, seen, r.Len())
}

func keysInOrder(r *Ranking) []string {
	keys := []string{}
	for _, s := range r.Slots() {
		keys = append(keys, s.Key)
	}

	return keys
}

func TestNew_Compacts(t *testing.T) {
	r := New([]Slot{{Key: "c", Position: 7}, {Key: "a", Position: 2}, {Key: "b", Position: 2}})

	require.Equal(t, []Slot{
		{Key: "a", Position: 1},
		{Key: "b", Position: 2},
		{Key: "c", Position: 3},
	}, r.Slots())
}

func TestInsert(t *testing.T) {
	t.Run("insert at an occupied position shifts down", func(t *testing.T) {
		r := New([]Slot{{Key: "w1", Position: 1}, {Key: "w2", Position: 2}})

		pos, err := r.Insert("new", 1)
		require.NoError(t, err)
		require.Equal(t, 1, pos)
		require.Equal(t, []Slot{
			{Key: "new", Position: 1},
			{Key: "w1", Position: 2},
			{Key: "w2", Position: 3},
		}, r.Slots())
	})

	t.Run("insert in the middle", func(t *testing.T) {
		r, err := FromKeys("a", "b", "c")
		require.NoError(t, err)

		_, err = r.Insert("x", 2)
		require.NoError(t, err)
		require.Equal(t, []string{"a", "x", "b", "c"}, keysInOrder(r))
	})

	t.Run("target is clamped", func(t *testing.T) {
		r, err := FromKeys("a", "b")
		require.NoError(t, err)

		pos, err := r.Insert("x", 10)
		require.NoError(t, err)
		require.Equal(t, 3, pos)

		pos, err = r.Insert("y", -1)
		require.NoError(t, err)
		require.Equal(t, 1, pos)
		require.Equal(t, []string{"y", "a", "b", "x"}, keysInOrder(r))
	})

	t.Run("duplicated key", func(t *testing.T) {
		r, err := FromKeys("a")
		require.NoError(t, err)

		_, err = r.Insert("a", 1)
		require.ErrorIs(t, err, ErrKeyExists)
	})
}

func TestMove(t *testing.T) {
	testCases := []struct {
		name   string
		key    string
		target int
		want   []string
	}{
		{name: "move up", key: "d", target: 2, want: []string{"a", "d", "b", "c", "e"}},
		{name: "move down", key: "b", target: 4, want: []string{"a", "c", "d", "b", "e"}},
		{name: "same position", key: "c", target: 3, want: []string{"a", "b", "c", "d", "e"}},
		{name: "to top", key: "e", target: 1, want: []string{"e", "a", "b", "c", "d"}},
		{name: "clamped to bottom", key: "a", target: 99, want: []string{"b", "c", "d", "e", "a"}},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			r, err := FromKeys("a", "b", "c", "d", "e")
			require.NoError(t, err)

			_, err = r.Move(tt.key, tt.target)
			require.NoError(t, err)
			require.Equal(t, tt.want, keysInOrder(r))
			requireDense(t, r)
		})
	}

	t.Run("unknown key", func(t *testing.T) {
		r, err := FromKeys("a")
		require.NoError(t, err)

		_, err = r.Move("b", 1)
		require.ErrorIs(t, err, ErrKeyNotFound)
	})
}

func TestRemove(t *testing.T) {
	r, err := FromKeys("a", "b", "c")
	require.NoError(t, err)

	require.True(t, r.Remove("b"))
	require.False(t, r.Remove("b"))
	require.Equal(t, []Slot{{Key: "a", Position: 1}, {Key: "c", Position: 2}}, r.Slots())
}

func TestDiff(t *testing.T) {
	before := []Slot{{Key: "a", Position: 1}, {Key: "b", Position: 2}}
	r := New(before)
	_, err := r.Insert("c", 2)
	require.NoError(t, err)

	require.Equal(t, []Slot{{Key: "c", Position: 2}, {Key: "b", Position: 3}}, Diff(before, r.Slots()))
}

func TestRandomOperations_StayDense(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	r := New(nil)
	next := 0

	for i := 0; i < 2000; i++ {
		switch op := rnd.Intn(3); {
		case op == 0 || r.Len() == 0:
			_, err := r.Insert(fmt.Sprintf("k%d", next), rnd.Intn(r.Len()+3)-1)
			require.NoError(t, err)
			next++
		case op == 1:
			key := r.Slots()[rnd.Intn(r.Len())].Key
			_, err := r.Move(key, rnd.Intn(r.Len()+2))
			require.NoError(t, err)
		default:
			key := r.Slots()[rnd.Intn(r.Len())].Key
			require.True(t, r.Remove(key))
		}

		requireDense(t, r)
	}
}
