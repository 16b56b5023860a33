package omics

import (
	"bufio"
	"os"
	"strings"

	"go-ml.dev/pkg/zorros"
	"gonum.org/v1/gonum/mat"
)

/*
Tensor is the numeric view of one aligned modality table, optionally
carrying a singleton leading channel axis for convolution-style
consumers. A chromosome bucket without features keeps a nil matrix.
The backing matrix is immutable after assembly.
*/
type Tensor struct {
	M       *mat.Dense // features × samples, nil when the tensor is empty
	Channel bool
	samples int
}

// NewTensor converts an aligned table into a tensor.
func NewTensor(t *Table, channel bool) *Tensor {
	_, n := t.M.Dims()
	return &Tensor{M: t.M, Channel: channel, samples: n}
}

func (t *Tensor) Features() int {
	if t.M == nil {
		return 0
	}
	r, _ := t.M.Dims()
	return r
}

func (t *Tensor) Samples() int {
	return t.samples
}

// Shape reports [1,features,samples] with a channel axis and
// [features,samples] without one.
func (t *Tensor) Shape() []int {
	if t.Channel {
		return []int{1, t.Features(), t.samples}
	}
	return []int{t.Features(), t.samples}
}

// Sample copies out the i-th sample column.
func (t *Tensor) Sample(i int) []float64 {
	if t.M == nil {
		return []float64{}
	}
	return mat.Col(nil, i, t.M)
}

// ChromosomeBuckets is the number of parts modality B splits into,
// one per autosome plus one for chromosome X.
const ChromosomeBuckets = 23

/*
ChromosomeMap assigns modality-B features to chromosome buckets,
0..21 for the autosomes and 22 for X. The partition scheme is an
external input; see ReadChromosomeMap.
*/
type ChromosomeMap map[string]int

func chromIndex(name string) (int, bool) {
	name = strings.TrimPrefix(name, "chr")
	if name == "X" || name == "x" {
		return ChromosomeBuckets - 1, true
	}
	n := 0
	for _, c := range name {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	if n < 1 || n > 22 {
		return 0, false
	}
	return n - 1, true
}

/*
ReadChromosomeMap loads a two-column tab-separated membership table of
(feature, chromosome) pairs. Accepted chromosome names are 1..22 and X,
with an optional chr prefix.
*/
func ReadChromosomeMap(path string) (ChromosomeMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, zorros.Wrapf(err, "failed to open chromosome map `%v`: %v", path, err.Error())
	}
	defer f.Close()
	m := ChromosomeMap{}
	scanner := bufio.NewScanner(bufio.NewReader(f))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return nil, zorros.Errorf("chromosome map `%v`: malformed line `%v`", path, line)
		}
		k, ok := chromIndex(fields[1])
		if !ok {
			return nil, zorros.Errorf("chromosome map `%v`: unknown chromosome `%v`", path, fields[1])
		}
		m[fields[0]] = k
	}
	if err := scanner.Err(); err != nil {
		return nil, zorros.Wrapf(err, "failed to read chromosome map `%v`: %v", path, err.Error())
	}
	return m, nil
}

/*
SplitByChromosome partitions an aligned modality-B table into the 23
chromosome buckets given by the membership map. Every feature lands in
exactly one bucket, so the bucket feature counts always sum to the
table's feature count. Feature order inside a bucket follows the table.
*/
func SplitByChromosome(t *Table, m ChromosomeMap, channel bool) ([]*Tensor, error) {
	rows := make([][]int, ChromosomeBuckets)
	for i, f := range t.Features {
		k, ok := m[f]
		if !ok {
			return nil, zorros.Errorf("feature `%v` of modality %v has no chromosome assignment", f, t.Name)
		}
		rows[k] = append(rows[k], i)
	}
	_, n := t.M.Dims()
	parts := make([]*Tensor, ChromosomeBuckets)
	for k, idx := range rows {
		var p *mat.Dense
		if len(idx) > 0 {
			p = mat.NewDense(len(idx), n, nil)
			for r, i := range idx {
				p.SetRow(r, mat.Row(nil, i, t.M))
			}
		}
		parts[k] = &Tensor{M: p, Channel: channel, samples: n}
	}
	return parts, nil
}
