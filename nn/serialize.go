package nn

import (
	"encoding/gob"
	"io"

	"go-ml.dev/pkg/zorros"
	"gonum.org/v1/gonum/mat"
)

// blockState is the serialized form of one block's parameters.
type blockState struct {
	Rows  int
	Cols  int
	W     []float64
	Bias  []float64
	Norm  bool
	Gamma []float64
	Beta  []float64
	Mean  []float64
	Var   []float64
}

/*
Memorize writes every trainable parameter of the network as a gob
stream, in composition order. The topology itself is not stored; a
network restored with Recall must be composed from the same options.
*/
func (n *Net) Memorize(w io.Writer) error {
	enc := gob.NewEncoder(w)
	for _, b := range n.blocks() {
		r, c := b.W.Dims()
		s := blockState{
			Rows: r, Cols: c,
			W:    mat.DenseCopyOf(b.W).RawMatrix().Data,
			Bias: b.Bias,
		}
		if b.Norm != nil {
			s.Norm = true
			s.Gamma, s.Beta = b.Norm.Gamma, b.Norm.Beta
			s.Mean, s.Var = b.Norm.Mean, b.Norm.Var
		}
		if err := enc.Encode(s); err != nil {
			return zorros.Wrapf(err, "failed to memorize network: %v", err.Error())
		}
	}
	return nil
}

/*
Recall restores parameters memorized from a network of identical
composition.
*/
func (n *Net) Recall(r io.Reader) error {
	dec := gob.NewDecoder(r)
	for _, b := range n.blocks() {
		var s blockState
		if err := dec.Decode(&s); err != nil {
			return zorros.Wrapf(err, "failed to recall network: %v", err.Error())
		}
		rows, cols := b.W.Dims()
		if s.Rows != rows || s.Cols != cols {
			return zorros.Errorf("recalled layer %vx%v does not match composed layer %vx%v", s.Rows, s.Cols, rows, cols)
		}
		if s.Norm != (b.Norm != nil) {
			return zorros.Errorf("recalled layer %vx%v does not match composed layer normalization: recalled %v, composed %v", rows, cols, s.Norm, b.Norm != nil)
		}
		b.W.SetRawMatrix(mat.NewDense(rows, cols, s.W).RawMatrix())
		copy(b.Bias, s.Bias)
		if b.Norm != nil {
			copy(b.Norm.Gamma, s.Gamma)
			copy(b.Norm.Beta, s.Beta)
			copy(b.Norm.Mean, s.Mean)
			copy(b.Norm.Var, s.Var)
		}
	}
	return nil
}
