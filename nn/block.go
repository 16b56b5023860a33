package nn

import (
	"math"
	"strings"
	"time"

	"go-ml.dev/pkg/zorros"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// NormKind selects the normalization applied inside a block.
type NormKind int

const (
	NormBatch NormKind = iota
	NormInstance
	NormNone
)

// NormByName resolves a normalization tag: batch | instance | none.
func NormByName(name string) (NormKind, error) {
	switch strings.ToLower(name) {
	case "batch", "":
		return NormBatch, nil
	case "instance":
		return NormInstance, nil
	case "none":
		return NormNone, nil
	}
	return NormNone, zorros.Errorf("normalization method `%v` is not found", name)
}

// Activation applied at the end of a block.
type Activation int

const (
	ActNone Activation = iota
	ActLeakyReLU
	ActTanh
)

/*
BlockOptions configures the optional stages of a block. Activation is
an activation name (leakyrelu | tanh), empty for a bare affine stage.
*/
type BlockOptions struct {
	Norm       NormKind
	Normalize  bool
	DropP      float64 // dropout probability, active in (0,1]
	Activation string
	Slope      float64 // negative slope of the leaky rectifier
	Rng        *rand.Rand
}

/*
Block is the shared fully-connected building block of every network in
this package: affine transform, then optionally normalization, dropout
and activation. Per-sample (instance) normalization is unsupported for
1-D feature vectors and silently downgrades to batch normalization,
matching the behavior networks trained elsewhere expect.
*/
type Block struct {
	W    *mat.Dense // in × out
	Bias []float64
	Norm *BatchNorm // nil when normalization is disabled
	Act  Activation

	dropP    float64
	slope    float64
	rng      *rand.Rand
	training bool
}

// NewBlock constructs a block mapping in features to out features.
func NewBlock(in, out int, opt BlockOptions) (*Block, error) {
	b := &Block{
		W:     mat.NewDense(in, out, nil),
		Bias:  make([]float64, out),
		dropP: opt.DropP,
		slope: opt.Slope,
		rng:   opt.Rng,
	}
	// dropout always needs a source, otherwise training-mode forward
	// would rescale without dropping anything
	if b.dropP > 0 && b.rng == nil {
		b.rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	if opt.Normalize {
		k := opt.Norm
		if k == NormInstance {
			k = NormBatch
		}
		if k == NormBatch {
			b.Norm = NewBatchNorm(out)
		}
	}
	switch strings.ToLower(opt.Activation) {
	case "":
		b.Act = ActNone
	case "leakyrelu":
		b.Act = ActLeakyReLU
	case "tanh":
		b.Act = ActTanh
	default:
		return nil, &UnsupportedActivationError{Name: opt.Activation}
	}
	return b, nil
}

// In reports the input width of the affine stage.
func (b *Block) In() int {
	r, _ := b.W.Dims()
	return r
}

// Out reports the output width of the affine stage.
func (b *Block) Out() int {
	_, c := b.W.Dims()
	return c
}

func (b *Block) setTraining(t bool) {
	b.training = t
}

// Forward applies the block to a batch-major input of shape [n × in].
func (b *Block) Forward(x mat.Matrix) *mat.Dense {
	var y mat.Dense
	y.Mul(x, b.W)
	n, out := y.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < out; j++ {
			y.Set(i, j, y.At(i, j)+b.Bias[j])
		}
	}
	if b.Norm != nil {
		b.Norm.Forward(&y, b.training)
	}
	if b.training && b.dropP > 0 && b.dropP <= 1 {
		b.dropout(&y)
	}
	switch b.Act {
	case ActLeakyReLU:
		apply(&y, func(v float64) float64 {
			if v < 0 {
				return b.slope * v
			}
			return v
		})
	case ActTanh:
		apply(&y, math.Tanh)
	}
	return &y
}

// inverted dropout: surviving units are rescaled so evaluation needs
// no correction
func (b *Block) dropout(y *mat.Dense) {
	n, out := y.Dims()
	if b.dropP >= 1 {
		y.Zero()
		return
	}
	scale := 1 / (1 - b.dropP)
	for i := 0; i < n; i++ {
		for j := 0; j < out; j++ {
			if b.rng.Float64() < b.dropP {
				y.Set(i, j, 0)
			} else {
				y.Set(i, j, y.At(i, j)*scale)
			}
		}
	}
}

func apply(y *mat.Dense, f func(float64) float64) {
	n, out := y.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < out; j++ {
			y.Set(i, j, f(y.At(i, j)))
		}
	}
}

/*
BatchNorm normalizes every feature over the batch axis, tracking
running statistics for evaluation mode.
*/
type BatchNorm struct {
	Gamma, Beta []float64
	Mean, Var   []float64 // running statistics
	Momentum    float64
	Eps         float64
}

func NewBatchNorm(width int) *BatchNorm {
	n := &BatchNorm{
		Gamma:    make([]float64, width),
		Beta:     make([]float64, width),
		Mean:     make([]float64, width),
		Var:      make([]float64, width),
		Momentum: 0.1,
		Eps:      1e-5,
	}
	for i := range n.Gamma {
		n.Gamma[i] = 1
		n.Var[i] = 1
	}
	return n
}

// Forward normalizes y in place, with batch statistics while training
// and running statistics otherwise.
func (bn *BatchNorm) Forward(y *mat.Dense, training bool) {
	n, width := y.Dims()
	for j := 0; j < width; j++ {
		mean, vr := bn.Mean[j], bn.Var[j]
		if training {
			mean, vr = 0, 0
			for i := 0; i < n; i++ {
				mean += y.At(i, j)
			}
			mean /= float64(n)
			for i := 0; i < n; i++ {
				d := y.At(i, j) - mean
				vr += d * d
			}
			vr /= float64(n)
			bn.Mean[j] = (1-bn.Momentum)*bn.Mean[j] + bn.Momentum*mean
			bn.Var[j] = (1-bn.Momentum)*bn.Var[j] + bn.Momentum*vr
		}
		inv := 1 / math.Sqrt(vr+bn.Eps)
		for i := 0; i < n; i++ {
			y.Set(i, j, bn.Gamma[j]*(y.At(i, j)-mean)*inv+bn.Beta[j])
		}
	}
}
