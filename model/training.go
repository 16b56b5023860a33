package model

import (
	"fmt"
	"io"
	"reflect"

	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/omix/fu"
	"go-ml.dev/pkg/zorros"
	"go-ml.dev/pkg/zorros/zlog"
)

/*
Training is the default implementation of unified training interface
*/
type Training struct {
	Iterations   int          // maximum iterations
	Score        Score        // score function, defaults to negated test loss
	ScoreHistory int          // possible count of forehead training with lower score
	ModelFile    iokit.Output // file to store final model
	Verbose      interface{}  // print function func(string)
}

type training struct {
	Training
	stash *ModelStash
	done  bool
}

type workout struct {
	iteration int
	training  *training
	perflog   []IterationMetrics
	scorlog   []float64
}

const DefaultScoreHistory = 3

func (t Training) Workout() Workout {
	x := &training{Training: t}
	if t.ModelFile != nil {
		x.stash = NewStash(fu.Fnzi(t.ScoreHistory, DefaultScoreHistory), "omix-training-*.t")
	}
	return &workout{iteration: 0, training: x}
}

func (w *workout) Close() error {
	if w.training.stash != nil {
		return w.training.stash.Close()
	}
	return nil
}

func (w *workout) Iteration() int {
	return w.iteration
}

func (w *workout) score(train, test Metrics) float64 {
	if w.training.Score != nil {
		return w.training.Score(train, test)
	}
	return -test["loss"]
}

func (w *workout) report(j int) (*Report, error) {
	report := &Report{}
	histlen := fu.Fnzi(w.training.ScoreHistory, DefaultScoreHistory)
	if len(w.perflog) > 0 {
		report.History = w.perflog
		if j == 0 {
			l := fu.Mini(len(w.scorlog), histlen)
			lj := len(w.scorlog) - l
			j = fu.Argmax(w.scorlog[lj:]) + lj
		}
		report.TheBest = j
		report.Train = w.perflog[j].Train
		report.Test = w.perflog[j].Test
		report.Score = w.scorlog[j]
		if w.training.stash != nil {
			if err := w.memorize(j); err != nil {
				return nil, err
			}
		}
	}
	return report, nil
}

// stash memorizes the current iteration's parameters so report can
// persist the best iteration later, whichever one it turns out to be.
func (w *workout) stash(m Memorizer) error {
	o, err := w.training.stash.Output(w.iteration)
	if err != nil {
		return zorros.Wrapf(err, "failed to create stash for model: %v", err.Error())
	}
	defer o.Close()
	return m.Memorize(o)
}

// memorize copies the stashed parameters of iteration j into the
// configured model file.
func (w *workout) memorize(j int) error {
	rd, err := w.training.stash.Reader(j)
	if err != nil {
		return zorros.Trace(err)
	}
	defer rd.Close()
	wh, err := w.training.ModelFile.Create()
	if err != nil {
		return zorros.Trace(err)
	}
	defer wh.End()
	if _, err = io.Copy(wh, rd); err != nil {
		return zorros.Trace(err)
	}
	return wh.Commit()
}

func (w *workout) Complete(m Memorizer, train, test Metrics, metricsDone bool) (report *Report, done bool, err error) {
	histlen := fu.Fnzi(w.training.ScoreHistory, DefaultScoreHistory)
	maxiter := fu.Maxi(w.training.Iterations, 1)
	score := w.score(train, test)
	w.scorlog = append(w.scorlog, score)
	w.perflog = append(w.perflog, IterationMetrics{Train: train, Test: test})
	if w.training.stash != nil && m != nil {
		if err = w.stash(m); err != nil {
			return
		}
	}
	if metricsDone {
		w.training.done = true
		done = true
		report, err = w.report(w.iteration)
	} else if w.iteration == maxiter-1 || (w.iteration > histlen && fu.Argmax(w.scorlog[len(w.scorlog)-histlen:]) == 0) {
		w.training.done = true
		done = true
		report, err = w.report(0)
	}
	if err != nil {
		return
	}
	if w.training.Verbose != nil {
		w.Verbose(fmt.Sprintf(
			"[%3d] loss: %.5f/%.5f, score: %.5f",
			w.Iteration(), train["loss"], test["loss"], score))
	}
	return
}

func (w *workout) Verbose(s string) {
	if w.training.Verbose != nil {
		vf := reflect.ValueOf(w.training.Verbose)
		vf.Call([]reflect.Value{reflect.ValueOf(s)})
	}
}

func (w *workout) Next() Workout {
	if w.training.done {
		zlog.Warning("training is already done")
		return nil
	}
	return &workout{
		iteration: w.iteration + 1,
		training:  w.training,
		scorlog:   w.scorlog,
		perflog:   w.perflog,
	}
}
