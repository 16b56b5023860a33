package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pborman/getopt"

	"go-ml.dev/pkg/omix"
	"go-ml.dev/pkg/omix/fu"
)

func main() {
	log.SetFlags(0)

	options := getopt.New()
	optConfig := options.StringLong("config", 'c', "config.yaml", "run configuration file")
	optModel := options.StringLong("model", 'm', "", "recall network parameters from this file")
	optOutput := options.StringLong("output", 'o', "", "write embeddings to this file instead of stdout")
	optHelp := options.BoolLong("help", 'h', "print help")

	options.SetParameters("\n\n" +
		" Assemble the configured multi-omics dataset, compose the embedding\n" +
		" network and write one latent vector per sample as TSV.\n")
	options.Parse(os.Args)

	if *optHelp {
		options.PrintUsage(os.Stdout)
		os.Exit(0)
	}

	cfg, err := omix.ReadConfig(*optConfig)
	if err != nil {
		log.Fatal(err)
	}
	data, err := omix.Load(cfg)
	if err != nil {
		log.Fatal(err)
	}
	net, err := omix.Compose(cfg, data)
	if err != nil {
		log.Fatal(err)
	}
	if *optModel != "" {
		f, err := os.Open(fu.ModelPath(*optModel))
		if err != nil {
			log.Fatal(err)
		}
		if err = net.Recall(f); err != nil {
			f.Close()
			log.Fatal(err)
		}
		f.Close()
	}
	net.Eval()

	idx := make([]int, data.Len())
	for i := range idx {
		idx[i] = i
	}
	batch, err := data.Batch(idx)
	if err != nil {
		log.Fatal(err)
	}
	r := net.Forward(batch)

	var out io.Writer = os.Stdout
	if *optOutput != "" {
		f, err := os.Create(*optOutput)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		out = f
	}
	w := bufio.NewWriter(out)
	defer w.Flush()
	_, width := r.Latent.Dims()
	for i, sample := range data.Set {
		fmt.Fprintf(w, "%s", sample)
		for j := 0; j < width; j++ {
			fmt.Fprintf(w, "\t%g", r.Latent.At(i, j))
		}
		fmt.Fprintln(w)
	}
}
