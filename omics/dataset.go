package omics

import (
	"fmt"
	"path/filepath"
	"strings"

	"go-ml.dev/pkg/zorros"
	"go-ml.dev/pkg/zorros/zlog"
	"gonum.org/v1/gonum/mat"
)

/*
Options drives the whole assembly pipeline: which modality tables load,
how they are shaped into tensors, and which downstream targets join
them. The external collaborator supplies it; see also omix.Config.
*/
type Options struct {
	Dir           string
	Mode          string // which modalities to load: abc | a | b | c
	UseSampleList bool   // read <dir>/sample_list.tsv for canonical order
	AddChannel    bool   // insert a singleton leading channel axis
	SplitB        bool   // partition modality B by chromosome
	ChromosomeMap string // membership table path, required with SplitB
	Dims          [3]int // configured per-modality widths, 0 derives from data
	Targets       TargetOptions
}

var letters = [3]string{"A", "B", "C"}

func activeModalities(mode string) ([3]bool, error) {
	var active [3]bool
	any := false
	for i, l := range letters {
		if strings.Contains(strings.ToLower(mode), strings.ToLower(l)) {
			active[i] = true
			any = true
		}
	}
	if !any {
		return active, zorros.Errorf("omics mode `%v` selects no modality", mode)
	}
	return active, nil
}

/*
Dataset owns the canonical sample set, the assembled modality tensors
and the downstream targets for the lifetime of one run. It is immutable
after construction, so Get is safe for concurrent use.
*/
type Dataset struct {
	Set       SampleSet
	A         *Tensor   // nil when modality A is inactive
	B         []*Tensor // one part, or 23 chromosome parts when split
	C         *Tensor
	OmicsDims [3]int // feature counts in modality order, 0 for inactive
	Targets   *Targets
}

/*
Sample is one training example: the per-sample slice of every active
modality tensor plus the active target fields, and the sample's own
index for traceability.
*/
type Sample struct {
	Index int

	A []float64
	B [][]float64 // one slice per B part
	C []float64

	Label        int
	Value        float64
	SurvivalT    float64
	SurvivalE    float64
	SurvivalDist []float64
	Labels       []int // alltask secondary labels
}

/*
NewDataset runs the alignment and assembly pipeline: load the active
modality tables, resolve the canonical sample ordering, reindex every
table and target to it, validate configured dimensions, and build the
tensors. Any defect fails here, before the network ever runs.
*/
func NewDataset(opt Options) (*Dataset, error) {
	active, err := activeModalities(opt.Mode)
	if err != nil {
		return nil, err
	}
	var tables [3]*Table
	for i := range letters {
		if !active[i] {
			continue
		}
		if tables[i], err = LoadModality(opt.Dir, letters[i]); err != nil {
			return nil, err
		}
	}
	// canonical ordering: the explicit list when configured, otherwise
	// the columns of the first loaded modality (A first by policy)
	var set SampleSet
	if opt.UseSampleList {
		if set, err = ReadSampleList(filepath.Join(opt.Dir, "sample_list.tsv")); err != nil {
			return nil, err
		}
	} else {
		for i := range tables {
			if tables[i] != nil {
				if set, err = NewSampleSet(tables[i].Samples); err != nil {
					return nil, err
				}
				break
			}
		}
	}
	d := &Dataset{Set: set}
	for i := range tables {
		if tables[i] == nil {
			continue
		}
		if tables[i], err = tables[i].Align(set); err != nil {
			return nil, err
		}
		rows, _ := tables[i].M.Dims()
		if opt.Dims[i] > 0 && opt.Dims[i] != rows {
			return nil, &DimensionMismatchError{Modality: letters[i], Want: opt.Dims[i], Got: rows}
		}
		d.OmicsDims[i] = rows
	}
	if tables[0] != nil {
		d.A = NewTensor(tables[0], opt.AddChannel)
	}
	if tables[1] != nil {
		if opt.SplitB {
			cm, err := ReadChromosomeMap(opt.ChromosomeMap)
			if err != nil {
				return nil, err
			}
			if d.B, err = SplitByChromosome(tables[1], cm, opt.AddChannel); err != nil {
				return nil, err
			}
		} else {
			d.B = []*Tensor{NewTensor(tables[1], opt.AddChannel)}
		}
	}
	if tables[2] != nil {
		d.C = NewTensor(tables[2], opt.AddChannel)
	}
	if d.Targets, err = LoadTargets(opt.Dir, set, opt.Targets); err != nil {
		return nil, err
	}
	zlog.Info(fmt.Sprintf("assembled %v dataset: %v samples, omics dims %v", opt.Mode, len(set), d.OmicsDims))
	return d, nil
}

// Len reports the sample count of the canonical sample set.
func (d *Dataset) Len() int {
	return len(d.Set)
}

// Get slices one training example out of the assembled tensors.
func (d *Dataset) Get(i int) (Sample, error) {
	if i < 0 || i >= d.Len() {
		return Sample{}, &IndexError{Index: i, Len: d.Len()}
	}
	s := Sample{Index: i}
	if d.A != nil {
		s.A = d.A.Sample(i)
	}
	for _, part := range d.B {
		s.B = append(s.B, part.Sample(i))
	}
	if d.C != nil {
		s.C = d.C.Sample(i)
	}
	g := d.Targets
	switch g.Task {
	case Classification:
		s.Label = g.Labels[i]
	case Regression:
		s.Value = g.Values[i]
	case Survival:
		s.SurvivalT, s.SurvivalE = g.SurvivalT[i], g.SurvivalE[i]
		if g.SurvivalDist != nil {
			s.SurvivalDist = mat.Row(nil, i, g.SurvivalDist)
		}
	case Multitask:
		s.Label = g.Labels[i]
		s.Value = g.Values[i]
		s.SurvivalT, s.SurvivalE = g.SurvivalT[i], g.SurvivalE[i]
		if g.SurvivalDist != nil {
			s.SurvivalDist = mat.Row(nil, i, g.SurvivalDist)
		}
	case Alltask:
		for _, labels := range g.MultiLabels {
			s.Labels = append(s.Labels, labels[i])
		}
		s.Value = g.Values[i]
		s.SurvivalT, s.SurvivalE = g.SurvivalT[i], g.SurvivalE[i]
		if g.SurvivalDist != nil {
			s.SurvivalDist = mat.Row(nil, i, g.SurvivalDist)
		}
	}
	return s, nil
}

// LuckyGet returns the i-th example and throws any error as a panic.
func (d *Dataset) LuckyGet(i int) Sample {
	s, err := d.Get(i)
	if err != nil {
		panic(zorros.Panic(err))
	}
	return s
}

/*
Batch gathers the given samples into batch-major matrices, one per
modality in A,B,C order, nil for inactive modalities. A chromosome-split
modality B concatenates its parts in bucket order along the feature
axis.
*/
func (d *Dataset) Batch(idx []int) ([3]*mat.Dense, error) {
	var batch [3]*mat.Dense
	if len(idx) == 0 {
		return batch, zorros.Errorf("empty sample batch")
	}
	for _, i := range idx {
		if i < 0 || i >= d.Len() {
			return batch, &IndexError{Index: i, Len: d.Len()}
		}
	}
	gather := func(parts []*Tensor) *mat.Dense {
		width := 0
		for _, p := range parts {
			width += p.Features()
		}
		m := mat.NewDense(len(idx), width, nil)
		for r, i := range idx {
			off := 0
			for _, p := range parts {
				for k, v := range p.Sample(i) {
					m.Set(r, off+k, v)
				}
				off += p.Features()
			}
		}
		return m
	}
	if d.A != nil {
		batch[0] = gather([]*Tensor{d.A})
	}
	if d.B != nil {
		batch[1] = gather(d.B)
	}
	if d.C != nil {
		batch[2] = gather([]*Tensor{d.C})
	}
	return batch, nil
}
