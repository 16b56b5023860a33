package nn

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

/*
InitWeights applies the named initialization scheme to every affine and
normalization layer reachable from the network: normal | xavier_normal |
xavier_uniform | kaiming_normal | kaiming_uniform | orthogonal. The
gain scales normal, xavier and orthogonal draws; normalization weights
always draw from N(1, gain) with zero shift, since they are not
matrices.
*/
func InitWeights(blocks []*Block, initType string, gain float64, src rand.Source) error {
	var fill func(w *mat.Dense)
	switch initType {
	case "normal":
		fill = func(w *mat.Dense) { drawNormal(w, gain, src) }
	case "xavier_normal":
		fill = func(w *mat.Dense) {
			in, out := w.Dims()
			drawNormal(w, gain*math.Sqrt(2/float64(in+out)), src)
		}
	case "xavier_uniform":
		fill = func(w *mat.Dense) {
			in, out := w.Dims()
			drawUniform(w, gain*math.Sqrt(6/float64(in+out)), src)
		}
	case "kaiming_normal":
		fill = func(w *mat.Dense) {
			in, _ := w.Dims()
			drawNormal(w, math.Sqrt(2/float64(in)), src)
		}
	case "kaiming_uniform":
		fill = func(w *mat.Dense) {
			in, _ := w.Dims()
			drawUniform(w, math.Sqrt(6/float64(in)), src)
		}
	case "orthogonal":
		fill = func(w *mat.Dense) { drawOrthogonal(w, gain, src) }
	default:
		return &UnknownInitTypeError{Name: initType}
	}
	norm := distuv.Normal{Mu: 1, Sigma: gain, Src: src}
	for _, b := range blocks {
		fill(b.W)
		for i := range b.Bias {
			b.Bias[i] = 0
		}
		if b.Norm != nil {
			for i := range b.Norm.Gamma {
				b.Norm.Gamma[i] = norm.Rand()
				b.Norm.Beta[i] = 0
			}
		}
	}
	return nil
}

func drawNormal(w *mat.Dense, sigma float64, src rand.Source) {
	d := distuv.Normal{Mu: 0, Sigma: sigma, Src: src}
	apply(w, func(float64) float64 { return d.Rand() })
}

func drawUniform(w *mat.Dense, bound float64, src rand.Source) {
	d := distuv.Uniform{Min: -bound, Max: bound, Src: src}
	apply(w, func(float64) float64 { return d.Rand() })
}

// drawOrthogonal fills w with a semi-orthogonal matrix obtained from
// the QR factorization of a normal random draw.
func drawOrthogonal(w *mat.Dense, gain float64, src rand.Source) {
	r, c := w.Dims()
	rows, cols := r, c
	if rows < cols {
		rows, cols = cols, rows
	}
	a := mat.NewDense(rows, cols, nil)
	drawNormal(a, 1, src)
	var qr mat.QR
	qr.Factorize(a)
	var q mat.Dense
	qr.QTo(&q)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if r < c {
				w.Set(i, j, gain*q.At(j, i))
			} else {
				w.Set(i, j, gain*q.At(i, j))
			}
		}
	}
}
