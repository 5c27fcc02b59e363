package errorx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(NotFound, "Not found contest %s", "abc")
	require.Equal(t, "Not found contest abc", err.Error())
	require.Equal(t, NotFound, err.Code)
}

func TestIs(t *testing.T) {
	sentinel := New(Conflict, "Position is already taken")
	wrapped := fmt.Errorf("select winner: %w", sentinel)

	require.True(t, Is(wrapped, Conflict))
	require.False(t, Is(wrapped, NotFound))
	require.False(t, Is(errors.New("plain"), Conflict))
	require.ErrorIs(t, wrapped, sentinel)
}
