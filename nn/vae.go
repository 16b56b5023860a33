package nn

import (
	"go-ml.dev/pkg/zorros"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

/*
Mode identifies which omics modalities a network consumes. The variant
is resolved once at composition time, never per sample.
*/
type Mode int

const (
	ModeABC Mode = iota // gene expression + methylation + miRNA
	ModeA               // gene expression only
	ModeB               // DNA methylation only
	ModeC               // miRNA expression only
)

// ModeByName resolves an omics mode tag: abc | a | b | c.
func ModeByName(name string) (Mode, error) {
	switch name {
	case "abc":
		return ModeABC, nil
	case "a":
		return ModeA, nil
	case "b":
		return ModeB, nil
	case "c":
		return ModeC, nil
	}
	return 0, &UnknownOmicsModeError{Name: name}
}

func (m Mode) String() string {
	return [...]string{"abc", "a", "b", "c"}[m]
}

// Active reports which modalities the mode consumes, in A,B,C order.
func (m Mode) Active() [3]bool {
	switch m {
	case ModeA:
		return [3]bool{true, false, false}
	case ModeB:
		return [3]bool{false, true, false}
	case ModeC:
		return [3]bool{false, false, true}
	}
	return [3]bool{true, true, true}
}

/*
VAEOptions carries the hyper-parameters of the encoder/decoder pair.
Zero widths fall back to the per-mode defaults.
*/
type VAEOptions struct {
	Norm      NormKind
	Slope     float64
	DropP     float64
	LatentDim int
	Dim1      int    // first per-modality width
	Dim2      int    // second per-modality width, the fusion share
	Dim3      int    // shared fusion width
	Dim1M     [3]int // per-modality overrides of Dim1, in A,B,C order
	Dim2M     [3]int // per-modality overrides of Dim2, in A,B,C order
	Rng       *rand.Rand
}

// per-mode default widths (dim1, dim2, dim3)
func (m Mode) defaults() (int, int, int) {
	switch m {
	case ModeA, ModeC:
		return 1024, 1024, 512
	case ModeB:
		return 512, 256, 256
	}
	return 384, 256, 256
}

// modalities concatenate in B,A,C order inside the fusion layer; the
// decoder splits at the same offsets
var fusionOrder = [3]int{1, 0, 2}

/*
VAE is the fully-connected variational encoder/decoder engine shared by
all four variants. Modalities outside the active set have no sub-stacks
and reconstruct to nil, so the reconstruction tuple keeps a uniform
shape across variants.
*/
type VAE struct {
	Mode      Mode
	LatentDim int

	enc1, enc2 [3]*Block
	fuse       *Block // shared fusion stage
	latent     *Block // bare projection into the latent space
	deFuse     *Block
	deConcat   *Block
	dec3, dec4 [3]*Block

	dim2  [3]int // per-modality fusion shares
	total int    // concatenated fusion width
}

// NewVAE builds the variant for the given mode with the per-modality
// input dimensions in A,B,C order.
func NewVAE(mode Mode, dims [3]int, opt VAEOptions) (v *VAE, err error) {
	d1, d2, d3 := mode.defaults()
	if opt.Dim1 > 0 {
		d1 = opt.Dim1
	}
	if opt.Dim2 > 0 {
		d2 = opt.Dim2
	}
	if opt.Dim3 > 0 {
		d3 = opt.Dim3
	}
	latentDim := opt.LatentDim
	if latentDim <= 0 {
		latentDim = 256
	}
	v = &VAE{Mode: mode, LatentDim: latentDim}
	active := mode.Active()
	hidden := BlockOptions{
		Norm: opt.Norm, Normalize: true,
		DropP: opt.DropP, Activation: "leakyrelu", Slope: opt.Slope,
		Rng: opt.Rng,
	}
	bare := BlockOptions{Slope: opt.Slope}
	for _, m := range fusionOrder {
		if !active[m] {
			continue
		}
		if dims[m] <= 0 {
			return nil, zorros.Errorf("modality %v is active but has no input dimension", m)
		}
		d1m, d2m := d1, d2
		if opt.Dim1M[m] > 0 {
			d1m = opt.Dim1M[m]
		}
		if opt.Dim2M[m] > 0 {
			d2m = opt.Dim2M[m]
		}
		if v.enc1[m], err = NewBlock(dims[m], d1m, hidden); err != nil {
			return nil, err
		}
		if v.enc2[m], err = NewBlock(d1m, d2m, hidden); err != nil {
			return nil, err
		}
		if v.dec3[m], err = NewBlock(d2m, d1m, hidden); err != nil {
			return nil, err
		}
		if v.dec4[m], err = NewBlock(d1m, dims[m], bare); err != nil {
			return nil, err
		}
		v.dim2[m] = d2m
		v.total += d2m
	}
	if v.fuse, err = NewBlock(v.total, d3, hidden); err != nil {
		return nil, err
	}
	if v.latent, err = NewBlock(d3, latentDim, bare); err != nil {
		return nil, err
	}
	if v.deFuse, err = NewBlock(latentDim, d3, hidden); err != nil {
		return nil, err
	}
	if v.deConcat, err = NewBlock(d3, v.total, hidden); err != nil {
		return nil, err
	}
	return v, nil
}

/*
Encode compresses the active modality batches into the shared latent
space. It returns both the latent batch and the pre-latent fusion
intermediate, so callers needing the last hidden representation take it
from the return value instead of querying stored state.
*/
func (v *VAE) Encode(x [3]*mat.Dense) (latent, hidden *mat.Dense) {
	n := 0
	concat := (*mat.Dense)(nil)
	off := 0
	for _, m := range fusionOrder {
		if v.enc1[m] == nil {
			continue
		}
		h := v.enc2[m].Forward(v.enc1[m].Forward(x[m]))
		if concat == nil {
			n, _ = h.Dims()
			concat = mat.NewDense(n, v.total, nil)
		}
		concat.Slice(0, n, off, off+v.dim2[m]).(*mat.Dense).Copy(h)
		off += v.dim2[m]
	}
	hidden = v.fuse.Forward(concat)
	latent = v.latent.Forward(hidden)
	return latent, hidden
}

/*
Decode reconstructs every supported modality from a latent batch; the
result keeps A,B,C positions with nil for modalities outside the
variant's active set. The concatenated stage splits deterministically
at the cumulative fusion offsets.
*/
func (v *VAE) Decode(latent *mat.Dense) (recon [3]*mat.Dense) {
	h := v.deFuse.Forward(latent)
	concat := v.deConcat.Forward(h)
	n, _ := concat.Dims()
	off := 0
	for _, m := range fusionOrder {
		if v.dec3[m] == nil {
			continue
		}
		part := concat.Slice(0, n, off, off+v.dim2[m])
		recon[m] = v.dec4[m].Forward(v.dec3[m].Forward(part))
		off += v.dim2[m]
	}
	return recon
}

// Forward runs a full pass: encode, then reconstruct.
func (v *VAE) Forward(x [3]*mat.Dense) (latent *mat.Dense, recon [3]*mat.Dense, hidden *mat.Dense) {
	latent, hidden = v.Encode(x)
	recon = v.Decode(latent)
	return latent, recon, hidden
}

func (v *VAE) blocks() []*Block {
	r := []*Block{v.fuse, v.latent, v.deFuse, v.deConcat}
	for m := range v.enc1 {
		for _, b := range []*Block{v.enc1[m], v.enc2[m], v.dec3[m], v.dec4[m]} {
			if b != nil {
				r = append(r, b)
			}
		}
	}
	return r
}
