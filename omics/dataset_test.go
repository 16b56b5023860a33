package omics

import (
	"errors"
	"os"
	"testing"

	"gotest.tools/assert"
)

func writeOmics(t *testing.T, dir string) {
	writeFile(t, dir, "A.tsv",
		"feature\tS1\tS2\tS3\tS4\n"+
			"g1\t1\t2\t3\t4\n"+
			"g2\t5\t6\t7\t8\n"+
			"g3\t9\t10\t11\t12\n"+
			"g4\t13\t14\t15\t16\n"+
			"g5\t17\t18\t19\t20\n")
	writeFile(t, dir, "B.tsv",
		"feature\tS1\tS2\tS3\tS4\n"+
			"cg1\t.1\t.2\t.3\t.4\n"+
			"cg2\t.5\t.6\t.7\t.8\n"+
			"cg3\t.9\t.1\t.2\t.3\n"+
			"cg4\t.4\t.5\t.6\t.7\n"+
			"cg5\t.8\t.9\t.1\t.2\n"+
			"cg6\t.3\t.4\t.5\t.6\n")
	writeFile(t, dir, "C.tsv",
		"feature\tS1\tS2\tS3\tS4\n"+
			"mir1\t1\t0\t1\t0\n"+
			"mir2\t0\t1\t0\t1\n"+
			"mir3\t1\t1\t0\t0\n")
	writeFile(t, dir, "labels.tsv",
		"sample\tlabel\nS1\t0\nS2\t1\nS3\t0\nS4\t1\n")
	writeFile(t, dir, "chrom.tsv",
		"cg1\t1\ncg2\t1\ncg3\t2\ncg4\tX\ncg5\t2\ncg6\t17\n")
	writeFile(t, dir, "sample_list.tsv", "S4\nS3\nS2\nS1\n")
}

func Test_NewDataset1(t *testing.T) {
	dir := mktmp(t)
	defer os.RemoveAll(dir)
	writeOmics(t, dir)
	d, err := NewDataset(Options{
		Dir: dir, Mode: "abc",
		Targets: TargetOptions{Task: Classification},
	})
	assert.NilError(t, err)
	assert.Assert(t, d.Len() == 4)
	assert.DeepEqual(t, d.OmicsDims, [3]int{5, 6, 3})
	assert.Assert(t, d.Targets.ClassNum == 2)
	assert.Assert(t, len(d.B) == 1)
	s, err := d.Get(2)
	assert.NilError(t, err)
	assert.Assert(t, s.Index == 2)
	assert.DeepEqual(t, s.A, []float64{3, 7, 11, 15, 19})
	assert.DeepEqual(t, s.C, []float64{1, 0, 0})
	assert.Assert(t, s.Label == 0)
	_, err = d.Get(4)
	e := &IndexError{}
	assert.Assert(t, errors.As(err, &e))
	assert.Assert(t, e.Index == 4 && e.Len == 4)
}

func Test_NewDataset2(t *testing.T) {
	// the explicit sample list overrides the table column order
	dir := mktmp(t)
	defer os.RemoveAll(dir)
	writeOmics(t, dir)
	d, err := NewDataset(Options{
		Dir: dir, Mode: "a", UseSampleList: true,
		Targets: TargetOptions{Task: Classification},
	})
	assert.NilError(t, err)
	assert.Assert(t, d.Set[0] == "S4")
	assert.DeepEqual(t, d.OmicsDims, [3]int{5, 0, 0})
	assert.Assert(t, d.B == nil && d.C == nil)
	s := d.LuckyGet(0)
	assert.DeepEqual(t, s.A, []float64{4, 8, 12, 16, 20})
	assert.Assert(t, s.Label == 1)
}

func Test_NewDataset3(t *testing.T) {
	dir := mktmp(t)
	defer os.RemoveAll(dir)
	writeOmics(t, dir)
	_, err := NewDataset(Options{
		Dir: dir, Mode: "abc", Dims: [3]int{5, 7, 3},
		Targets: TargetOptions{Task: Classification},
	})
	e := &DimensionMismatchError{}
	assert.Assert(t, errors.As(err, &e))
	assert.Assert(t, e.Modality == "B" && e.Want == 7 && e.Got == 6)
}

func Test_NewDataset4(t *testing.T) {
	dir := mktmp(t)
	defer os.RemoveAll(dir)
	writeOmics(t, dir)
	d, err := NewDataset(Options{
		Dir: dir, Mode: "b", SplitB: true,
		ChromosomeMap: dir + "/chrom.tsv",
		Targets:       TargetOptions{Task: Classification},
	})
	assert.NilError(t, err)
	assert.Assert(t, len(d.B) == ChromosomeBuckets)
	assert.Assert(t, d.B[0].Features() == 2)
	assert.Assert(t, d.B[1].Features() == 2)
	assert.Assert(t, d.B[16].Features() == 1)
	assert.Assert(t, d.B[22].Features() == 1)
	s := d.LuckyGet(0)
	assert.Assert(t, len(s.B) == ChromosomeBuckets)
	assert.DeepEqual(t, s.B[0], []float64{.1, .5})
	assert.Assert(t, len(s.B[3]) == 0)
}

func Test_NewDataset5(t *testing.T) {
	dir := mktmp(t)
	defer os.RemoveAll(dir)
	writeOmics(t, dir)
	_, err := NewDataset(Options{Dir: dir, Mode: "q"})
	assert.Assert(t, err != nil)
}

func Test_Batch1(t *testing.T) {
	dir := mktmp(t)
	defer os.RemoveAll(dir)
	writeOmics(t, dir)
	d, err := NewDataset(Options{
		Dir: dir, Mode: "abc", SplitB: true,
		ChromosomeMap: dir + "/chrom.tsv",
		Targets:       TargetOptions{Task: Classification},
	})
	assert.NilError(t, err)
	batch, err := d.Batch([]int{1, 3})
	assert.NilError(t, err)
	r, c := batch[0].Dims()
	assert.Assert(t, r == 2 && c == 5)
	assert.Assert(t, batch[0].At(0, 0) == 2)
	assert.Assert(t, batch[0].At(1, 4) == 20)
	// split parts concatenate in bucket order along the feature axis
	r, c = batch[1].Dims()
	assert.Assert(t, r == 2 && c == 6)
	assert.Assert(t, batch[1].At(0, 0) == .2) // cg1, bucket 0
	assert.Assert(t, batch[1].At(0, 5) == .5) // cg4, bucket 22
	_, err = d.Batch(nil)
	assert.Assert(t, err != nil)
	_, err = d.Batch([]int{9})
	e := &IndexError{}
	assert.Assert(t, errors.As(err, &e))
}
