package nn

import (
	"go-ml.dev/pkg/omix/fu"
	"go-ml.dev/pkg/zorros"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

/*
HeadOptions carries the downstream network hyper-parameters. Zero
widths fall back to the defaults; LayerNum below 3 is raised to the
minimum depth of 3 blocks.
*/
type HeadOptions struct {
	LatentDim int
	Norm      NormKind
	Slope     float64
	DropP     float64
	Dim1      int // input block width, default 128
	Dim2      int // middle block width, default 64
	LayerNum  int
	ClassNum  int
	ClassNums []int // alltask: one class count per secondary task
	TimeNum   int   // survival discretization bin count
	TaskNum   int   // alltask: total task count
	Rng       *rand.Rand
}

/*
Output carries every projection a downstream head can produce; only the
fields matching the head kind are set. The training collaborator picks
the slice each of its losses consumes.
*/
type Output struct {
	Logits      *mat.Dense   // classification [n × classNum]
	Value       *mat.Dense   // regression [n × 1]
	Survival    *mat.Dense   // survival [n × timeNum]
	MultiLogits []*mat.Dense // alltask secondary classifications
}

/*
Head is the downstream half of the composed network. The variant set is
closed: heads are built by NewHead from a tag and dispatch through this
interface, not through string comparisons at call sites.
*/
type Head interface {
	Forward(latent *mat.Dense) *Output
	blocks() []*Block
}

// NewHead builds the downstream network for the given tag.
func NewHead(tag string, opt HeadOptions) (Head, error) {
	switch tag {
	case "multi_FC_classifier":
		return newClassifier(opt.ClassNum, opt)
	case "multi_FC_regression":
		return newRegression(opt)
	case "multi_FC_survival":
		return newSurvival(opt)
	case "multi_FC_multitask":
		return newMultitask(opt)
	case "multi_FC_alltask":
		return newAlltask(opt)
	}
	return nil, &UnknownDownstreamHeadError{Name: tag}
}

/*
stack is the common fully-connected shape of every head: one input
block, a middle stack of at least one block with dropout on every other
one, and a bare output projection.
*/
type stack struct {
	layers []*Block
}

func newStack(outWidth int, opt HeadOptions) (*stack, error) {
	dim1 := fu.Fnzi(opt.Dim1, 128)
	dim2 := fu.Fnzi(opt.Dim2, 64)
	latent := fu.Fnzi(opt.LatentDim, 256)
	hidden := BlockOptions{
		Norm: opt.Norm, Normalize: true,
		Activation: "leakyrelu", Slope: opt.Slope, Rng: opt.Rng,
	}
	s := &stack{}
	add := func(in, out int, o BlockOptions) error {
		b, err := NewBlock(in, out, o)
		if err == nil {
			s.layers = append(s.layers, b)
		}
		return err
	}
	o := hidden
	o.DropP = opt.DropP
	if err := add(latent, dim1, o); err != nil {
		return nil, err
	}
	blockNum := fu.Maxi(opt.LayerNum, 3)
	in, dropout := dim1, true
	for num := 0; num < blockNum-2; num++ {
		o := hidden
		if dropout {
			o.DropP = opt.DropP
		}
		if err := add(in, dim2, o); err != nil {
			return nil, err
		}
		in, dropout = dim2, !dropout
	}
	if err := add(dim2, outWidth, BlockOptions{Slope: opt.Slope}); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *stack) forward(x *mat.Dense) *mat.Dense {
	y := x
	for _, b := range s.layers {
		y = b.Forward(y)
	}
	return y
}

func (s *stack) blocks() []*Block { return s.layers }

type classifier struct{ *stack }

func newClassifier(classNum int, opt HeadOptions) (*classifier, error) {
	if classNum < 2 {
		return nil, zorros.Errorf("classifier needs at least 2 classes, got %v", classNum)
	}
	s, err := newStack(classNum, opt)
	if err != nil {
		return nil, err
	}
	return &classifier{s}, nil
}

func (h *classifier) Forward(latent *mat.Dense) *Output {
	return &Output{Logits: h.forward(latent)}
}

type regression struct{ *stack }

func newRegression(opt HeadOptions) (*regression, error) {
	s, err := newStack(1, opt)
	if err != nil {
		return nil, err
	}
	return &regression{s}, nil
}

func (h *regression) Forward(latent *mat.Dense) *Output {
	return &Output{Value: h.forward(latent)}
}

type survival struct{ *stack }

func newSurvival(opt HeadOptions) (*survival, error) {
	s, err := newStack(fu.Fnzi(opt.TimeNum, 256), opt)
	if err != nil {
		return nil, err
	}
	return &survival{s}, nil
}

func (h *survival) Forward(latent *mat.Dense) *Output {
	return &Output{Survival: h.forward(latent)}
}

type multitask struct {
	cls *classifier
	reg *regression
	sur *survival
}

func newMultitask(opt HeadOptions) (h *multitask, err error) {
	h = &multitask{}
	if h.cls, err = newClassifier(opt.ClassNum, opt); err != nil {
		return nil, err
	}
	if h.reg, err = newRegression(opt); err != nil {
		return nil, err
	}
	if h.sur, err = newSurvival(opt); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *multitask) Forward(latent *mat.Dense) *Output {
	return &Output{
		Logits:   h.cls.forward(latent),
		Value:    h.reg.forward(latent),
		Survival: h.sur.forward(latent),
	}
}

func (h *multitask) blocks() []*Block {
	r := h.cls.blocks()
	r = append(r, h.reg.blocks()...)
	return append(r, h.sur.blocks()...)
}

type alltask struct {
	cls []*classifier
	reg *regression
	sur *survival
}

func newAlltask(opt HeadOptions) (h *alltask, err error) {
	if len(opt.ClassNums) != opt.TaskNum-2 {
		return nil, zorros.Errorf("alltask with %v tasks needs %v class counts, got %v",
			opt.TaskNum, opt.TaskNum-2, len(opt.ClassNums))
	}
	h = &alltask{}
	for _, classNum := range opt.ClassNums {
		c, err := newClassifier(classNum, opt)
		if err != nil {
			return nil, err
		}
		h.cls = append(h.cls, c)
	}
	if h.reg, err = newRegression(opt); err != nil {
		return nil, err
	}
	if h.sur, err = newSurvival(opt); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *alltask) Forward(latent *mat.Dense) *Output {
	out := &Output{
		Value:    h.reg.forward(latent),
		Survival: h.sur.forward(latent),
	}
	for _, c := range h.cls {
		out.MultiLogits = append(out.MultiLogits, c.forward(latent))
	}
	return out
}

func (h *alltask) blocks() []*Block {
	var r []*Block
	for _, c := range h.cls {
		r = append(r, c.blocks()...)
	}
	r = append(r, h.reg.blocks()...)
	return append(r, h.sur.blocks()...)
}
