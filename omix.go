/*
Package omix assembles heterogeneous multi-omics measurements into
aligned per-sample tensors and composes the modular variational
embedding network consuming them. The data side (alignment, tensor and
target assembly) lives in package omics, the network side (VAE family,
downstream heads, composition) in package nn; this package glues both
to one run configuration and to the go-ml training abstractions.
*/
package omix

import (
	"go-ml.dev/pkg/zorros"

	"go-ml.dev/pkg/omix/model"
	"go-ml.dev/pkg/omix/nn"
	"go-ml.dev/pkg/omix/omics"
)

/*
Load runs the whole data pipeline for the configuration: modality
tables, sample alignment, tensor assembly and target assembly.
*/
func Load(c Config) (*omics.Dataset, error) {
	return omics.NewDataset(c.WithDefaults().datasetOptions())
}

/*
LuckyLoad loads the dataset and throws any occurred error as a panic.
*/
func LuckyLoad(c Config) *omics.Dataset {
	d, err := Load(c)
	if err != nil {
		panic(zorros.Panic(err))
	}
	return d
}

/*
Compose builds the network matching the configuration and the loaded
dataset: the omics dimensions and class counts are taken from the data,
everything else from the configuration.
*/
func Compose(c Config, d *omics.Dataset) (*nn.Net, error) {
	return nn.Define(c.WithDefaults().netOptions(d), d.OmicsDims)
}

/*
LuckyCompose composes the network and throws any occurred error as a
panic.
*/
func LuckyCompose(c Config, d *omics.Dataset) *nn.Net {
	net, err := Compose(c, d)
	if err != nil {
		panic(zorros.Panic(err))
	}
	return net
}

/*
Embedding is the hungry model of this package. Feeding it an assembled
dataset composes the network and binds it to the Step objective — the
external collaborator's forward/backward arithmetic — producing a fat
model ready for a training workout.
*/
type Embedding struct {
	Config Config

	// Step runs one training iteration over the dataset subsets and
	// reports its metrics; the core never computes losses itself.
	Step func(net *nn.Net, d model.Dataset, iteration int) (train, test model.Metrics, err error)
}

func (e Embedding) Feed(d model.Dataset) model.FatModel {
	return func(w model.Workout) (*model.Report, error) {
		net, err := Compose(e.Config, d.Source)
		if err != nil {
			return nil, err
		}
		for {
			train, test, err := e.Step(net, d, w.Iteration())
			if err != nil {
				return nil, err
			}
			report, done, err := w.Complete(net, train, test, false)
			if err != nil {
				return nil, err
			}
			if done {
				return report, nil
			}
			w = w.Next()
		}
	}
}
