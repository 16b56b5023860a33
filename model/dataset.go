package model

import (
	"go-ml.dev/pkg/omix/omics"
)

/*
Dataset is an abstraction of an assembled omics source to feed hungry
models. Test holds the sample indices held out for evaluation; every
other index belongs to the training subset.
*/
type Dataset struct {
	Source *omics.Dataset // aligned tensors and targets
	Test   []int          // evaluation subset, may be empty
	Batch  int            // batch size, 0 takes the whole subset at once
}

/*
TrainIndices returns the ordered sample indices of the training subset.
*/
func (d Dataset) TrainIndices() []int {
	test := make(map[int]bool, len(d.Test))
	for _, i := range d.Test {
		test[i] = true
	}
	var r []int
	for i := 0; i < d.Source.Len(); i++ {
		if !test[i] {
			r = append(r, i)
		}
	}
	return r
}

/*
Batches splits the given indices into batch-size chunks.
*/
func (d Dataset) Batches(idx []int) [][]int {
	if d.Batch <= 0 || d.Batch >= len(idx) {
		return [][]int{idx}
	}
	var r [][]int
	for lo := 0; lo < len(idx); lo += d.Batch {
		hi := lo + d.Batch
		if hi > len(idx) {
			hi = len(idx)
		}
		r = append(r, idx[lo:hi])
	}
	return r
}
