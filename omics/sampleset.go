package omics

import (
	"bufio"
	"os"
	"strings"

	"go-ml.dev/pkg/zorros"
	"gonum.org/v1/gonum/mat"
)

/*
SampleSet is the canonical ordered sequence of sample identifiers every
modality and target table is reindexed to. It is created once at load
time and never mutated afterwards.
*/
type SampleSet []string

/*
NewSampleSet validates that the given identifiers contain no duplicates.
*/
func NewSampleSet(ids []string) (SampleSet, error) {
	seen := make(map[string]bool, len(ids))
	for _, s := range ids {
		if seen[s] {
			return nil, &AlignmentError{Sample: s, Source: "sample set (duplicate)"}
		}
		seen[s] = true
	}
	return SampleSet(ids), nil
}

/*
ReadSampleList loads an explicit sample ordering from a newline or tab
separated list file.
*/
func ReadSampleList(path string) (SampleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, zorros.Wrapf(err, "failed to open sample list `%v`: %v", path, err.Error())
	}
	defer f.Close()
	var ids []string
	scanner := bufio.NewScanner(bufio.NewReader(f))
	for scanner.Scan() {
		for _, s := range strings.Fields(scanner.Text()) {
			ids = append(ids, s)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, zorros.Wrapf(err, "failed to read sample list `%v`: %v", path, err.Error())
	}
	if len(ids) == 0 {
		return nil, zorros.Errorf("sample list `%v` is empty", path)
	}
	return NewSampleSet(ids)
}

/*
Align returns a copy of the table with its sample columns reindexed to
the exact order of the given set. The source table is left untouched.
*/
func (t *Table) Align(set SampleSet) (*Table, error) {
	index := make(map[string]int, len(t.Samples))
	for j, s := range t.Samples {
		index[s] = j
	}
	rows, _ := t.M.Dims()
	aligned := &Table{
		Name:     t.Name,
		Features: t.Features,
		Samples:  []string(set),
		M:        mat.NewDense(rows, len(set), nil),
	}
	col := make([]float64, rows)
	for j, s := range set {
		k, ok := index[s]
		if !ok {
			return nil, &AlignmentError{Sample: s, Source: "modality " + t.Name}
		}
		mat.Col(col, k, t.M)
		aligned.M.SetCol(j, col)
	}
	return aligned, nil
}
