package mines

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEncodeRoundTrip(t *testing.T) {
	for v := EmptyCell; v <= MarkedMine; v++ {
		s, err := Decode(v)
		require.NoError(t, err, "decode %d", v)

		c, err := Encode(s)
		require.NoError(t, err, "encode %+v", s)
		assert.Equal(t, v, c)
	}
}

func TestDecodeBands(t *testing.T) {
	tests := []struct {
		cell Cell
		want CellState
	}{
		{0, CellState{}},
		{3, CellState{Adjacent: 3}},
		{8, CellState{Adjacent: 8}},
		{9, CellState{Mine: true}},
		{10, CellState{Covered: true}},
		{17, CellState{Covered: true, Adjacent: 7}},
		{19, CellState{Covered: true, Mine: true}},
		{20, CellState{Covered: true, Marked: true}},
		{28, CellState{Covered: true, Marked: true, Adjacent: 8}},
		{29, CellState{Covered: true, Marked: true, Mine: true}},
	}
	for _, test := range tests {
		t.Run(strconv.Itoa(int(test.cell)), func(t *testing.T) {
			s, err := Decode(test.cell)
			require.NoError(t, err)
			assert.Equal(t, test.want, s)
		})
	}
}

func TestDecodeOutOfRange(t *testing.T) {
	for _, v := range []Cell{-1, 30, 100} {
		_, err := Decode(v)
		assert.ErrorIs(t, err, ErrInvalidCell, "value %d", v)
		assert.False(t, v.Valid())
	}
}

func TestEncodeRejects(t *testing.T) {
	tests := []struct {
		name  string
		state CellState
	}{
		{"marked but open", CellState{Marked: true}},
		{"negative count", CellState{Covered: true, Adjacent: -1}},
		{"count above eight", CellState{Adjacent: 9}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Encode(test.state)
			assert.ErrorIs(t, err, ErrInvalidCell)
		})
	}
}

func TestEncodeIgnoresCountForMines(t *testing.T) {
	c, err := Encode(CellState{Covered: true, Mine: true, Adjacent: 5})
	require.NoError(t, err)
	assert.Equal(t, CoveredMine, c)
}

func TestMarkedBandDoesNotOverlapCovered(t *testing.T) {
	covered, err := Encode(CellState{Covered: true, Adjacent: 2})
	require.NoError(t, err)
	marked, err := Encode(CellState{Covered: true, Marked: true, Adjacent: 2})
	require.NoError(t, err)

	assert.Equal(t, Cell(12), covered)
	assert.Equal(t, Cell(22), marked)
}

func TestCellAccessors(t *testing.T) {
	assert.True(t, ExplodedMine.IsMine())
	assert.False(t, ExplodedMine.Covered())
	assert.True(t, MarkedMine.Marked())
	assert.True(t, Cell(25).Covered())
	assert.Equal(t, 5, Cell(25).Adjacent())
	assert.Equal(t, -1, CoveredMine.Adjacent())
	assert.Equal(t, -1, Cell(42).Adjacent())
}

func TestBoard(t *testing.T) {
	b := Board{0, 1, 10, 19, 29, 9}
	assert.Equal(t, 3, b.MineCount())
	assert.NoError(t, b.Validate())
	assert.Equal(t, ". 1 #\n* F #\n", Board{0, 1, 10, 9, 29, 19}.ToString(3))

	c := b.Clone()
	c[0] = 5
	assert.Equal(t, Cell(0), b[0])

	assert.Error(t, Board{10, 31}.Validate())
}
