package nn

import (
	"fmt"

	"github.com/pbenner/threadpool"
	"go-ml.dev/pkg/zorros/zlog"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

/*
Options collects everything the composer needs to build one network:
the variant tags, the hyper-parameters, the initialization scheme and
the compute placement.
*/
type Options struct {
	Mode     string // omics mode tag: abc | a | b | c
	Down     string // downstream head tag, e.g. multi_FC_classifier
	NormType string // batch | instance | none
	Slope    float64
	DropP    float64

	LatentDim int
	Dim1      int
	Dim2      int
	Dim3      int
	Dim1M     [3]int // per-modality overrides of Dim1, in A,B,C order
	Dim2M     [3]int // per-modality overrides of Dim2, in A,B,C order
	HeadDim1  int
	HeadDim2  int
	LayerNum  int

	ClassNum  int
	ClassNums []int
	TimeNum   int
	TaskNum   int

	InitType string
	InitGain float64
	Seed     uint64

	Devices []int // compute device ids; more than one enables data-parallel forward
}

/*
Net is the composed end-to-end network: exactly one VAE variant paired
with exactly one downstream head. Composition, initialization and
device placement happen once here; afterwards the network only runs
forward passes.
*/
type Net struct {
	VAE     *VAE
	Down    Head
	Devices []int

	pool     threadpool.ThreadPool
	parallel bool
	training bool
}

/*
Result is the output of one forward pass.
*/
type Result struct {
	Latent *mat.Dense
	Hidden *mat.Dense // pre-latent fusion intermediate
	Recon  [3]*mat.Dense
	Out    *Output
}

/*
Define composes the network selected by the option tags, initializes
its weights and records its device placement. Every unknown tag fails
here, before any data flows.
*/
func Define(opt Options, dims [3]int) (*Net, error) {
	mode, err := ModeByName(opt.Mode)
	if err != nil {
		return nil, err
	}
	norm, err := NormByName(opt.NormType)
	if err != nil {
		return nil, err
	}
	seed := opt.Seed
	if seed == 0 {
		seed = 42
	}
	rng := rand.New(rand.NewSource(seed))
	vae, err := NewVAE(mode, dims, VAEOptions{
		Norm: norm, Slope: opt.Slope, DropP: opt.DropP,
		LatentDim: opt.LatentDim,
		Dim1:      opt.Dim1, Dim2: opt.Dim2, Dim3: opt.Dim3,
		Dim1M: opt.Dim1M, Dim2M: opt.Dim2M,
		Rng: rng,
	})
	if err != nil {
		return nil, err
	}
	down, err := NewHead(opt.Down, HeadOptions{
		LatentDim: vae.LatentDim,
		Norm:      norm, Slope: opt.Slope, DropP: opt.DropP,
		Dim1: opt.HeadDim1, Dim2: opt.HeadDim2, LayerNum: opt.LayerNum,
		ClassNum: opt.ClassNum, ClassNums: opt.ClassNums,
		TimeNum: opt.TimeNum, TaskNum: opt.TaskNum,
		Rng: rng,
	})
	if err != nil {
		return nil, err
	}
	net := &Net{VAE: vae, Down: down, Devices: opt.Devices}
	if len(opt.Devices) > 1 {
		net.pool = threadpool.New(len(opt.Devices), 100)
		net.parallel = true
	}
	gain := opt.InitGain
	if gain == 0 {
		gain = 0.02
	}
	if err := InitWeights(net.blocks(), opt.InitType, gain, rand.NewSource(seed)); err != nil {
		return nil, err
	}
	zlog.Info(fmt.Sprintf("initialize %v/%v network with %v on devices %v", opt.Mode, opt.Down, opt.InitType, opt.Devices))
	return net, nil
}

func (n *Net) blocks() []*Block {
	return append(n.VAE.blocks(), n.Down.blocks()...)
}

// Train switches the network into training mode: dropout active, batch
// normalization on batch statistics.
func (n *Net) Train() {
	n.training = true
	for _, b := range n.blocks() {
		b.setTraining(true)
	}
}

// Eval switches the network into evaluation mode.
func (n *Net) Eval() {
	n.training = false
	for _, b := range n.blocks() {
		b.setTraining(false)
	}
}

/*
Forward runs encode, downstream head and decode for one batch. With
more than one configured device the batch rows are partitioned and the
replicas run in parallel, one worker per device. Parallel execution
applies in evaluation mode only, where forward is a pure read; a
training-mode pass mutates batch-norm statistics and stays on one
worker.
*/
func (n *Net) Forward(x [3]*mat.Dense) *Result {
	if n.parallel && !n.training {
		return n.forwardParallel(x)
	}
	return n.forward(x)
}

func (n *Net) forward(x [3]*mat.Dense) *Result {
	latent, hidden := n.VAE.Encode(x)
	return &Result{
		Latent: latent,
		Hidden: hidden,
		Recon:  n.VAE.Decode(latent),
		Out:    n.Down.Forward(latent),
	}
}

func (n *Net) forwardParallel(x [3]*mat.Dense) *Result {
	rows := 0
	for _, m := range x {
		if m != nil {
			rows, _ = m.Dims()
			break
		}
	}
	k := len(n.Devices)
	if rows < k {
		k = rows
	}
	if k < 2 {
		return n.forward(x)
	}
	chunk := (rows + k - 1) / k
	parts := make([]*Result, k)
	n.pool.RangeJob(0, k, func(i int, pool threadpool.ThreadPool, erf func() error) error {
		lo := i * chunk
		hi := lo + chunk
		if hi > rows {
			hi = rows
		}
		var slice [3]*mat.Dense
		for m, d := range x {
			if d != nil {
				slice[m] = d.Slice(lo, hi, 0, sliceCols(d)).(*mat.Dense)
			}
		}
		parts[i] = n.forward(slice)
		return nil
	})
	return joinResults(parts)
}

func sliceCols(d *mat.Dense) int {
	_, c := d.Dims()
	return c
}

func joinResults(parts []*Result) *Result {
	r := &Result{
		Latent: stackRows(collect(parts, func(p *Result) *mat.Dense { return p.Latent })),
		Hidden: stackRows(collect(parts, func(p *Result) *mat.Dense { return p.Hidden })),
		Out:    &Output{},
	}
	for m := 0; m < 3; m++ {
		m := m
		r.Recon[m] = stackRows(collect(parts, func(p *Result) *mat.Dense { return p.Recon[m] }))
	}
	r.Out.Logits = stackRows(collect(parts, func(p *Result) *mat.Dense { return p.Out.Logits }))
	r.Out.Value = stackRows(collect(parts, func(p *Result) *mat.Dense { return p.Out.Value }))
	r.Out.Survival = stackRows(collect(parts, func(p *Result) *mat.Dense { return p.Out.Survival }))
	for t := 0; t < len(parts[0].Out.MultiLogits); t++ {
		t := t
		r.Out.MultiLogits = append(r.Out.MultiLogits,
			stackRows(collect(parts, func(p *Result) *mat.Dense { return p.Out.MultiLogits[t] })))
	}
	return r
}

func collect(parts []*Result, f func(*Result) *mat.Dense) []*mat.Dense {
	r := make([]*mat.Dense, len(parts))
	for i, p := range parts {
		r[i] = f(p)
	}
	return r
}

func stackRows(parts []*mat.Dense) *mat.Dense {
	if parts[0] == nil {
		return nil
	}
	rows := 0
	_, cols := parts[0].Dims()
	for _, p := range parts {
		r, _ := p.Dims()
		rows += r
	}
	m := mat.NewDense(rows, cols, nil)
	off := 0
	for _, p := range parts {
		r, _ := p.Dims()
		m.Slice(off, off+r, 0, cols).(*mat.Dense).Copy(p)
		off += r
	}
	return m
}
