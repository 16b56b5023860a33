package nn

import (
	"errors"
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gotest.tools/assert"
)

func initBlocks(t *testing.T) []*Block {
	b1, err := NewBlock(6, 4, BlockOptions{Normalize: true})
	assert.NilError(t, err)
	b2, err := NewBlock(4, 2, BlockOptions{})
	assert.NilError(t, err)
	b1.Bias[0], b2.Bias[1] = 3, 3
	return []*Block{b1, b2}
}

func Test_InitWeights1(t *testing.T) {
	for _, scheme := range []string{
		"normal", "xavier_normal", "xavier_uniform",
		"kaiming_normal", "kaiming_uniform", "orthogonal",
	} {
		blocks := initBlocks(t)
		err := InitWeights(blocks, scheme, 0.02, rand.NewSource(7))
		assert.NilError(t, err)
		for _, b := range blocks {
			sum := 0.0
			r, c := b.W.Dims()
			for i := 0; i < r; i++ {
				for j := 0; j < c; j++ {
					sum += math.Abs(b.W.At(i, j))
				}
			}
			assert.Assert(t, sum > 0, scheme)
			for _, v := range b.Bias {
				assert.Assert(t, v == 0, scheme)
			}
		}
	}
}

func Test_InitWeights2(t *testing.T) {
	blocks := initBlocks(t)
	err := InitWeights(blocks, "sparse", 0.02, rand.NewSource(7))
	e := &UnknownInitTypeError{}
	assert.Assert(t, errors.As(err, &e))
	assert.Assert(t, e.Name == "sparse")
}

func Test_InitWeights3(t *testing.T) {
	// normalization weights draw around 1, shifts stay zero
	blocks := initBlocks(t)
	err := InitWeights(blocks, "normal", 0.02, rand.NewSource(7))
	assert.NilError(t, err)
	bn := blocks[0].Norm
	assert.Assert(t, bn != nil)
	for i := range bn.Gamma {
		assert.Assert(t, math.Abs(bn.Gamma[i]-1) < 0.2)
		assert.Assert(t, bn.Beta[i] == 0)
	}
}

func orthoCheck(t *testing.T, r, c int, gain float64) {
	w := mat.NewDense(r, c, nil)
	drawOrthogonal(w, gain, rand.NewSource(7))
	// the smaller side is orthogonal up to the gain
	var g mat.Dense
	if r <= c {
		g.Mul(w, w.T())
	} else {
		g.Mul(w.T(), w)
	}
	n, _ := g.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			want := 0.0
			if i == j {
				want = gain * gain
			}
			assert.Assert(t, math.Abs(g.At(i, j)-want) < 1e-9)
		}
	}
}

func Test_Orthogonal1(t *testing.T) {
	orthoCheck(t, 4, 4, 1)
	orthoCheck(t, 3, 6, 0.5)
	orthoCheck(t, 6, 3, 2)
}
