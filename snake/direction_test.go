package snake

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDirectionRejectsOutOfRange(t *testing.T) {
	_, err := ParseDirection(0)
	require.Error(t, err)
	_, err = ParseDirection(5)
	require.Error(t, err)
}

func TestDirectionOppositePairs(t *testing.T) {
	require.Equal(t, Down, Up.Opposite())
	require.Equal(t, Up, Down.Opposite())
	require.Equal(t, Left, Right.Opposite())
	require.Equal(t, Right, Left.Opposite())
}

func TestDirectionOffsets(t *testing.T) {
	require.Equal(t, Point{0, -1}, Up.Offset())
	require.Equal(t, Point{0, 1}, Down.Offset())
	require.Equal(t, Point{1, 0}, Right.Offset())
	require.Equal(t, Point{-1, 0}, Left.Offset())
}

func TestGridContains(t *testing.T) {
	g := Grid{Width: 10, Height: 5}
	require.True(t, g.Contains(Point{0, 0}))
	require.True(t, g.Contains(Point{9, 4}))
	require.False(t, g.Contains(Point{10, 0}))
	require.False(t, g.Contains(Point{0, -1}))
}
