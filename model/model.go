package model

import (
	"io"

	"go-ml.dev/pkg/zorros"
)

/*
Metrics is one iteration's named evaluation values as produced by the
external objective; the core does not compute losses itself.
*/
type Metrics map[string]float64

/*
HungryModel is an ML algorithm grows from a data to predict something
Needs to be fattened by Feed method to fit.
*/
type HungryModel interface {
	Feed(Dataset) FatModel
}

/*
Report is an ML training report
*/
type Report struct {
	History     []IterationMetrics // all iterations history
	TheBest     int                // the best iteration
	Test, Train Metrics            // the best iteration metrics
	Score       float64            // the best score
}

/*
IterationMetrics pairs the train and test metrics of one iteration
*/
type IterationMetrics struct {
	Train, Test Metrics
}

/*
Memorizer is anything able to persist itself into a writer; the
composed network implements it.
*/
type Memorizer interface {
	Memorize(io.Writer) error
}

/*
Workout is a training iteration abstraction
*/
type Workout interface {
	Iteration() int
	Complete(m Memorizer, train, test Metrics, metricsDone bool) (*Report, bool, error)
	Next() Workout
	Verbose(string)
}

/*
UnifiedTraining is an interface allowing to write any logging/staging backend for ML training
*/
type UnifiedTraining interface {
	// Workout returns the first iteration workout
	Workout() Workout
}

/*
FatModel is fattened model (a training function of model instance bounded to a dataset)
*/
type FatModel func(workout Workout) (*Report, error)

/*
Train a fattened (Fat) model
*/
func (f FatModel) Train(training UnifiedTraining) (*Report, error) {
	w := training.Workout()
	if c, ok := w.(io.Closer); ok {
		defer c.Close()
	}
	return f(w)
}

/*
LuckyTrain trains fattened (Fat) model and trows any occurred errors as a panic
*/
func (f FatModel) LuckyTrain(training UnifiedTraining) *Report {
	m, err := f.Train(training)
	if err != nil {
		panic(zorros.Panic(err))
	}
	return m
}

/*
Score is a function to calculate the overall iteration score from its
train and test metrics
*/
type Score func(train, test Metrics) float64
