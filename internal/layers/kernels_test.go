package layers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"layer-pipeline/internal/algorithms"
)

func TestKernelSet_AddAndShape(t *testing.T) {
	ks := NewKernelSet()
	require.NoError(t, ks.Add("k1", 3, 5))

	rows, cols, err := ks.Shape("k1")
	require.NoError(t, err)
	assert.Equal(t, 3, rows)
	assert.Equal(t, 5, cols)

	k, err := ks.Kernel("k1")
	require.NoError(t, err)
	for _, v := range k.Data {
		assert.Equal(t, uint8(1), v)
	}
	assert.Len(t, k.Data, 15)
}

func TestKernelSet_Duplicate(t *testing.T) {
	ks := NewKernelSet()
	require.NoError(t, ks.Add("k1", 3, 5))

	err := ks.Add("k1", 7, 7)
	assert.ErrorIs(t, err, ErrDuplicateKernelName)
	assert.Contains(t, err.Error(), "(3, 5)")

	rows, cols, err := ks.Shape("k1")
	require.NoError(t, err)
	assert.Equal(t, [2]int{3, 5}, [2]int{rows, cols})
}

func TestKernelSet_InvalidShape(t *testing.T) {
	ks := NewKernelSet()

	assert.ErrorIs(t, ks.Add("flat", 0, 3), algorithms.ErrInvalidParameter)
	assert.Empty(t, ks.Names())
}

func TestKernelSet_NotFound(t *testing.T) {
	ks := NewKernelSet()

	_, err := ks.Kernel("nope")
	assert.ErrorIs(t, err, ErrKernelNotFound)
	_, _, err = ks.Shape("nope")
	assert.ErrorIs(t, err, ErrKernelNotFound)
	assert.ErrorIs(t, ks.Remove("nope"), ErrKernelNotFound)
}

func TestKernelSet_RemoveKeepsOrder(t *testing.T) {
	ks := NewKernelSet()
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, ks.Add(name, 1, 1))
	}

	require.NoError(t, ks.Remove("b"))
	assert.Equal(t, []string{"a", "c"}, ks.Names())
}

func TestKernelSet_KernelReturnsCopy(t *testing.T) {
	ks := NewKernelSet()
	require.NoError(t, ks.Add("k1", 2, 2))

	k, err := ks.Kernel("k1")
	require.NoError(t, err)
	for i := range k.Data {
		k.Data[i] = 0
	}

	again, err := ks.Kernel("k1")
	require.NoError(t, err)
	for _, v := range again.Data {
		assert.Equal(t, uint8(1), v)
	}
}
