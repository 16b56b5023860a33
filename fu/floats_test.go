package fu

import (
	"testing"

	"gotest.tools/assert"
)

func Test_Floats1(t *testing.T) {
	assert.Assert(t, Mean([]float64{1, 2, 3}) == 2)
	assert.Assert(t, Mse([]float64{1, 2}, []float64{1, 4}) == 2)
	assert.DeepEqual(t, Flatnr([][]float64{{1}, {2, 3}, {}}), []float64{1, 2, 3})
	assert.Assert(t, Argmin([]float64{3, 1, 2}) == 1)
	assert.Assert(t, Argmax([]float64{3, 1, 2}) == 0)
	assert.Assert(t, Absd(-2) == 2)
}

func Test_Linspace1(t *testing.T) {
	q := Linspace(0, 100, 4)
	assert.DeepEqual(t, q, []float64{0, 25, 50, 75, 100})
}

func Test_Ints1(t *testing.T) {
	assert.Assert(t, Maxi(1, 2) == 2)
	assert.Assert(t, Mini(1, 2) == 1)
	assert.Assert(t, Fnzi(0, 5) == 5)
	assert.Assert(t, Fnzi(3, 5) == 3)
}
