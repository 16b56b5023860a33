package omics

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go-ml.dev/pkg/omix/fu"
	"go-ml.dev/pkg/zorros"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

/*
Task identifies the downstream objective the target assembler builds
ground truth for.
*/
type Task string

const (
	Classification Task = "classification"
	Regression     Task = "regression"
	Survival       Task = "survival"
	Multitask      Task = "multitask"
	Alltask        Task = "alltask"
)

// MTLR enables the discretized survival-distribution target used by
// the piecewise-likelihood survival loss.
const MTLR = "MTLR"

/*
TargetOptions selects which target tables the assembler loads and how
the survival ground truth is discretized.
*/
type TargetOptions struct {
	Task         Task
	TaskNum      int     // alltask only: total task count, >= 3
	SurvivalLoss string  // MTLR enables the discretized target
	TimeNum      int     // number of survival time intervals
	SurvivalTMax float64 // <= 0 derives the horizon from the data
	Stratify     bool    // survival only: load labels for stratified sampling
}

/*
Targets is the union of downstream ground truth, aligned to the
canonical sample set; only the fields of the configured task are set.
Class counts and min/max statistics are derived from the data, never
configured.
*/
type Targets struct {
	Task Task

	Labels   []int
	ClassNum int

	Values    []float64
	ValuesMin float64
	ValuesMax float64

	SurvivalT    []float64
	SurvivalE    []float64
	SurvivalTMin float64
	SurvivalTMax float64
	SurvivalDist *mat.Dense // N × (TimeNum+1), MTLR only

	MultiLabels [][]int // alltask secondary classification targets
	ClassNums   []int

	StratifyLabels []int
}

/*
LoadTargets assembles the ground truth of the configured downstream
task from the target tables under dir, reindexed to the sample set.
Targets come from tab-separated files, or from the tables of a
targets.db SQLite database when one is present.
*/
func LoadTargets(dir string, set SampleSet, opt TargetOptions) (g *Targets, err error) {
	src, err := openTargetSource(dir)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	g = &Targets{Task: opt.Task}
	switch opt.Task {
	case Classification:
		g.Labels, g.ClassNum, err = loadLabels(src, "labels", set)
	case Regression:
		err = g.loadValues(src, set)
	case Survival:
		if err = g.loadSurvival(src, set, opt); err != nil {
			return nil, err
		}
		if opt.Stratify {
			g.StratifyLabels, _, err = loadLabels(src, "labels", set)
		}
	case Multitask:
		if g.Labels, g.ClassNum, err = loadLabels(src, "labels", set); err != nil {
			return nil, err
		}
		if err = g.loadValues(src, set); err != nil {
			return nil, err
		}
		err = g.loadSurvival(src, set, opt)
	case Alltask:
		if opt.TaskNum < 3 {
			return nil, &InvalidTaskCountError{TaskNum: opt.TaskNum}
		}
		for i := 1; i <= opt.TaskNum-2; i++ {
			labels, classNum, e := loadLabels(src, "labels_"+strconv.Itoa(i), set)
			if e != nil {
				return nil, e
			}
			g.MultiLabels = append(g.MultiLabels, labels)
			g.ClassNums = append(g.ClassNums, classNum)
		}
		if err = g.loadValues(src, set); err != nil {
			return nil, err
		}
		err = g.loadSurvival(src, set, opt)
	default:
		err = zorros.Errorf("downstream task `%v` is not recognized", opt.Task)
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

func loadLabels(src targetSource, name string, set SampleSet) ([]int, int, error) {
	rows, err := alignedRows(src, name, set)
	if err != nil {
		return nil, 0, err
	}
	labels := make([]int, len(rows))
	distinct := map[int]bool{}
	for i, r := range rows {
		v, err := strconv.Atoi(last(r))
		if err != nil {
			return nil, 0, zorros.Wrapf(err, "target `%v` row %v: %v", name, set[i], err.Error())
		}
		labels[i] = v
		distinct[v] = true
	}
	return labels, len(distinct), nil
}

func (g *Targets) loadValues(src targetSource, set SampleSet) error {
	rows, err := alignedRows(src, "values", set)
	if err != nil {
		return err
	}
	g.Values = make([]float64, len(rows))
	for i, r := range rows {
		if g.Values[i], err = strconv.ParseFloat(last(r), 64); err != nil {
			return zorros.Wrapf(err, "target `values` row %v: %v", set[i], err.Error())
		}
	}
	g.ValuesMin = floats.Min(g.Values)
	g.ValuesMax = floats.Max(g.Values)
	return nil
}

func (g *Targets) loadSurvival(src targetSource, set SampleSet, opt TargetOptions) error {
	rows, err := alignedRows(src, "survival", set)
	if err != nil {
		return err
	}
	g.SurvivalT = make([]float64, len(rows))
	g.SurvivalE = make([]float64, len(rows))
	for i, r := range rows {
		if len(r) < 2 {
			return zorros.Errorf("target `survival` row %v needs (time,event) columns", set[i])
		}
		if g.SurvivalT[i], err = strconv.ParseFloat(r[len(r)-2], 64); err != nil {
			return zorros.Wrapf(err, "target `survival` row %v: %v", set[i], err.Error())
		}
		if g.SurvivalE[i], err = strconv.ParseFloat(r[len(r)-1], 64); err != nil {
			return zorros.Wrapf(err, "target `survival` row %v: %v", set[i], err.Error())
		}
		if g.SurvivalE[i] != 0 && g.SurvivalE[i] != 1 {
			return zorros.Errorf("target `survival` row %v: event indicator must be 0 or 1", set[i])
		}
	}
	g.SurvivalTMin = floats.Min(g.SurvivalT)
	g.SurvivalTMax = floats.Max(g.SurvivalT)
	if opt.SurvivalLoss == MTLR {
		g.SurvivalDist = SurvivalDistribution(g.SurvivalT, g.SurvivalE, opt.TimeNum, opt.SurvivalTMax)
	}
	return nil
}

/*
SurvivalDistribution discretizes per-sample survival ground truth into
probability rows over timeNum+1 bins. An observed event places unit
mass in the bin nearest its time; a censored sample spreads its
unresolved mass uniformly over that bin and every later one. Rows
always sum to 1.
*/
func SurvivalDistribution(T, E []float64, timeNum int, tMax float64) *mat.Dense {
	if tMax <= 0 {
		tMax = floats.Max(T)
	}
	points := fu.Linspace(0, tMax, timeNum)
	dist := mat.NewDense(len(T), timeNum+1, nil)
	d := make([]float64, len(points))
	for i := range T {
		for j, p := range points {
			d[j] = fu.Absd(T[i] - p)
		}
		k := fu.Argmin(d)
		if E[i] == 1 {
			dist.Set(i, k, 1)
		} else {
			p := 1 / float64(timeNum+1-k)
			for j := k; j <= timeNum; j++ {
				dist.Set(i, j, p)
			}
		}
	}
	return dist
}

func last(r []string) string {
	return r[len(r)-1]
}

// targetSource yields raw target tables by name, either tab-separated
// files or SQLite tables.
type targetSource interface {
	table(name string) (map[string][]string, error)
	Close() error
}

func openTargetSource(dir string) (targetSource, error) {
	db := filepath.Join(dir, "targets.db")
	if _, err := os.Stat(db); err == nil {
		return openSQLSource(db)
	}
	return tsvSource(dir), nil
}

func alignedRows(src targetSource, name string, set SampleSet) ([][]string, error) {
	rows, err := src.table(name)
	if err != nil {
		return nil, err
	}
	aligned := make([][]string, len(set))
	for i, s := range set {
		r, ok := rows[s]
		if !ok {
			return nil, &AlignmentError{Sample: s, Source: "target " + name}
		}
		aligned[i] = r
	}
	return aligned, nil
}

type tsvSource string

func (d tsvSource) table(name string) (map[string][]string, error) {
	path := filepath.Join(string(d), name+".tsv")
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, &MissingTargetFileError{Path: path}
	}
	if err != nil {
		return nil, zorros.Wrapf(err, "failed to open target `%v`: %v", path, err.Error())
	}
	defer f.Close()
	return parseTargetTable(path, f)
}

func (tsvSource) Close() error { return nil }

// parseTargetTable reads a tab-separated target table with a header
// row; the first column indexes samples, the rest are target columns.
func parseTargetTable(path string, rd io.Reader) (map[string][]string, error) {
	scanner := bufio.NewScanner(bufio.NewReader(rd))
	scanner.Buffer(make([]byte, 1024*1024), 64*1024*1024)
	if !scanner.Scan() {
		return nil, zorros.Errorf("target table `%v` is empty", path)
	}
	rows := map[string][]string{}
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, zorros.Errorf("target table `%v`: malformed row `%v`", path, line)
		}
		rows[fields[0]] = fields[1:]
	}
	if err := scanner.Err(); err != nil {
		return nil, zorros.Wrapf(err, "failed to read target table `%v`: %v", path, err.Error())
	}
	return rows, nil
}
