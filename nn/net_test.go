package nn

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gotest.tools/assert"
)

var netOpt = Options{
	Mode: "abc", Down: "multi_FC_classifier",
	NormType: "batch", Slope: 0.2, DropP: 0.5,
	LatentDim: 8, Dim1: 16, Dim2: 12, Dim3: 10,
	HeadDim1: 16, HeadDim2: 12,
	ClassNum: 3, InitType: "normal", Seed: 7,
	Devices: []int{0},
}

var netDims = [3]int{20, 30, 10}

func netBatch(n int) [3]*mat.Dense {
	rng := rand.New(rand.NewSource(11))
	var x [3]*mat.Dense
	for m, d := range netDims {
		x[m] = mat.NewDense(n, d, nil)
		for i := 0; i < n; i++ {
			for j := 0; j < d; j++ {
				x[m].Set(i, j, rng.Float64())
			}
		}
	}
	return x
}

func Test_Define1(t *testing.T) {
	net, err := Define(netOpt, netDims)
	assert.NilError(t, err)
	r := net.Forward(netBatch(4))
	n, c := r.Latent.Dims()
	assert.Assert(t, n == 4 && c == 8)
	n, c = r.Out.Logits.Dims()
	assert.Assert(t, n == 4 && c == 3)
	for m := 0; m < 3; m++ {
		n, c = r.Recon[m].Dims()
		assert.Assert(t, n == 4 && c == netDims[m])
	}
}

func Test_Define2(t *testing.T) {
	opt := netOpt
	opt.Mode = "xyz"
	_, err := Define(opt, netDims)
	e := &UnknownOmicsModeError{}
	assert.Assert(t, errors.As(err, &e))

	opt = netOpt
	opt.Down = "rnn"
	_, err = Define(opt, netDims)
	d := &UnknownDownstreamHeadError{}
	assert.Assert(t, errors.As(err, &d))

	opt = netOpt
	opt.InitType = "sparse"
	_, err = Define(opt, netDims)
	i := &UnknownInitTypeError{}
	assert.Assert(t, errors.As(err, &i))
}

func matEqual(a, b *mat.Dense) bool {
	ra, ca := a.Dims()
	rb, cb := b.Dims()
	if ra != rb || ca != cb {
		return false
	}
	for i := 0; i < ra; i++ {
		for j := 0; j < ca; j++ {
			if math.Abs(a.At(i, j)-b.At(i, j)) > 1e-12 {
				return false
			}
		}
	}
	return true
}

func Test_Parallel1(t *testing.T) {
	// a data-parallel evaluation pass matches the single-device pass
	single, err := Define(netOpt, netDims)
	assert.NilError(t, err)
	opt := netOpt
	opt.Devices = []int{0, 1, 2}
	parallel, err := Define(opt, netDims)
	assert.NilError(t, err)
	single.Eval()
	parallel.Eval()
	x := netBatch(8)
	a, b := single.Forward(x), parallel.Forward(x)
	assert.Assert(t, matEqual(a.Latent, b.Latent))
	assert.Assert(t, matEqual(a.Hidden, b.Hidden))
	assert.Assert(t, matEqual(a.Out.Logits, b.Out.Logits))
	for m := 0; m < 3; m++ {
		assert.Assert(t, matEqual(a.Recon[m], b.Recon[m]))
	}
}

func Test_TrainEval1(t *testing.T) {
	net, err := Define(netOpt, netDims)
	assert.NilError(t, err)
	net.Eval()
	x := netBatch(4)
	a := net.Forward(x)
	b := net.Forward(x)
	// evaluation passes are pure
	assert.Assert(t, matEqual(a.Latent, b.Latent))
	net.Train()
	net.Forward(x)
	net.Eval()
	// a training pass moved the normalization statistics
	c := net.Forward(x)
	assert.Assert(t, !matEqual(a.Latent, c.Latent))
}

func Test_MemorizeRecall1(t *testing.T) {
	src, err := Define(netOpt, netDims)
	assert.NilError(t, err)
	var buf bytes.Buffer
	assert.NilError(t, src.Memorize(&buf))

	opt := netOpt
	opt.Seed = 99
	dst, err := Define(opt, netDims)
	assert.NilError(t, err)
	x := netBatch(4)
	src.Eval()
	dst.Eval()
	assert.Assert(t, !matEqual(src.Forward(x).Latent, dst.Forward(x).Latent))
	assert.NilError(t, dst.Recall(&buf))
	assert.Assert(t, matEqual(src.Forward(x).Latent, dst.Forward(x).Latent))
	assert.Assert(t, matEqual(src.Forward(x).Out.Logits, dst.Forward(x).Out.Logits))
}

func Test_Recall1(t *testing.T) {
	src, err := Define(netOpt, netDims)
	assert.NilError(t, err)
	var buf bytes.Buffer
	assert.NilError(t, src.Memorize(&buf))
	opt := netOpt
	opt.LatentDim = 16
	dst, err := Define(opt, netDims)
	assert.NilError(t, err)
	assert.Assert(t, dst.Recall(&buf) != nil)
}

func Test_Recall2(t *testing.T) {
	// a normalization mismatch is named as such, not as a weight shape
	src, err := Define(netOpt, netDims)
	assert.NilError(t, err)
	var buf bytes.Buffer
	assert.NilError(t, src.Memorize(&buf))
	opt := netOpt
	opt.NormType = "none"
	dst, err := Define(opt, netDims)
	assert.NilError(t, err)
	assert.ErrorContains(t, dst.Recall(&buf), "normalization")
}
