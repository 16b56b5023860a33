package nn

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gotest.tools/assert"
)

func Test_ModeByName1(t *testing.T) {
	for name, want := range map[string]Mode{
		"abc": ModeABC, "a": ModeA, "b": ModeB, "c": ModeC,
	} {
		m, err := ModeByName(name)
		assert.NilError(t, err)
		assert.Assert(t, m == want)
		assert.Assert(t, m.String() == name)
	}
	_, err := ModeByName("abcd")
	e := &UnknownOmicsModeError{}
	assert.Assert(t, errors.As(err, &e))
	assert.Assert(t, e.Name == "abcd")
}

var vaeOpt = VAEOptions{
	Slope: 0.2, LatentDim: 8,
	Dim1: 16, Dim2: 12, Dim3: 10,
}

func Test_VAE1(t *testing.T) {
	dims := [3]int{30, 40, 20}
	v, err := NewVAE(ModeABC, dims, vaeOpt)
	assert.NilError(t, err)
	x := [3]*mat.Dense{
		mat.NewDense(5, 30, nil),
		mat.NewDense(5, 40, nil),
		mat.NewDense(5, 20, nil),
	}
	latent, recon, hidden := v.Forward(x)
	r, c := latent.Dims()
	assert.Assert(t, r == 5 && c == 8)
	r, c = hidden.Dims()
	assert.Assert(t, r == 5 && c == 10)
	for m := 0; m < 3; m++ {
		assert.Assert(t, recon[m] != nil)
		r, c = recon[m].Dims()
		assert.Assert(t, r == 5 && c == dims[m])
	}
}

func Test_VAE2(t *testing.T) {
	// single-modality variants reconstruct only their own modality
	for _, q := range []struct {
		mode Mode
		m    int
	}{{ModeA, 0}, {ModeB, 1}, {ModeC, 2}} {
		var dims [3]int
		dims[q.m] = 25
		v, err := NewVAE(q.mode, dims, vaeOpt)
		assert.NilError(t, err)
		var x [3]*mat.Dense
		x[q.m] = mat.NewDense(3, 25, nil)
		latent, recon, _ := v.Forward(x)
		r, c := latent.Dims()
		assert.Assert(t, r == 3 && c == 8)
		for m := 0; m < 3; m++ {
			if m == q.m {
				r, c = recon[m].Dims()
				assert.Assert(t, r == 3 && c == 25)
			} else {
				assert.Assert(t, recon[m] == nil)
			}
		}
	}
}

func Test_VAE3(t *testing.T) {
	// an active modality without an input dimension is a defect
	_, err := NewVAE(ModeABC, [3]int{30, 0, 20}, vaeOpt)
	assert.Assert(t, err != nil)
}

func Test_VAE4(t *testing.T) {
	// zero options fall back to the per-mode defaults
	v, err := NewVAE(ModeB, [3]int{0, 40, 0}, VAEOptions{Slope: 0.2})
	assert.NilError(t, err)
	assert.Assert(t, v.LatentDim == 256)
	x := [3]*mat.Dense{nil, mat.NewDense(2, 40, nil), nil}
	latent, hidden := v.Encode(x)
	_, c := latent.Dims()
	assert.Assert(t, c == 256)
	_, c = hidden.Dims()
	assert.Assert(t, c == 256)
}

func Test_VAE5(t *testing.T) {
	// each modality's encoder can carry its own widths
	opt := vaeOpt
	opt.Dim1M = [3]int{32, 0, 8}
	opt.Dim2M = [3]int{24, 0, 6}
	dims := [3]int{30, 40, 20}
	v, err := NewVAE(ModeABC, dims, opt)
	assert.NilError(t, err)
	wantD1 := [3]int{32, 16, 8}
	wantD2 := [3]int{24, 12, 6}
	for m := 0; m < 3; m++ {
		in, out := v.enc1[m].W.Dims()
		assert.Assert(t, in == dims[m] && out == wantD1[m])
		in, out = v.enc2[m].W.Dims()
		assert.Assert(t, in == wantD1[m] && out == wantD2[m])
		in, out = v.dec3[m].W.Dims()
		assert.Assert(t, in == wantD2[m] && out == wantD1[m])
	}
	fuseIn, _ := v.fuse.W.Dims()
	assert.Assert(t, fuseIn == 24+12+6)
	x := [3]*mat.Dense{
		mat.NewDense(4, 30, nil),
		mat.NewDense(4, 40, nil),
		mat.NewDense(4, 20, nil),
	}
	latent, recon, _ := v.Forward(x)
	r, c := latent.Dims()
	assert.Assert(t, r == 4 && c == 8)
	for m := 0; m < 3; m++ {
		r, c = recon[m].Dims()
		assert.Assert(t, r == 4 && c == dims[m])
	}
}
