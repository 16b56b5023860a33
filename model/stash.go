package model

import (
	"io"
	"io/ioutil"
	"os"

	"go-ml.dev/pkg/omix/fu"
	"go-ml.dev/pkg/zorros"
)

/*
ModelStash keeps the memorized parameters of the last few training
iterations in temporary files, so the best iteration within the score
window can be persisted after the training stops on a later, worse one.
*/
type ModelStash struct {
	length  int
	pattern string
	files   map[int]string
}

// NewStash creates a stash holding one file per iteration for the
// last length+1 iterations.
func NewStash(length int, pattern string) *ModelStash {
	return &ModelStash{
		length:  fu.Maxi(length, 1) + 1,
		pattern: pattern,
		files:   map[int]string{},
	}
}

// Output opens a fresh stash file for the given iteration, dropping
// files that fell out of the window.
func (s *ModelStash) Output(iteration int) (io.WriteCloser, error) {
	f, err := ioutil.TempFile("", s.pattern)
	if err != nil {
		return nil, zorros.Wrapf(err, "failed to create stash file: %v", err.Error())
	}
	s.files[iteration] = f.Name()
	for j, path := range s.files {
		if j <= iteration-s.length {
			os.Remove(path)
			delete(s.files, j)
		}
	}
	return f, nil
}

// Reader reopens the stashed parameters of the given iteration.
func (s *ModelStash) Reader(iteration int) (io.ReadCloser, error) {
	path, ok := s.files[iteration]
	if !ok {
		return nil, zorros.Errorf("no stashed model for iteration %v", iteration)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, zorros.Wrapf(err, "failed to open stash file `%v`: %v", path, err.Error())
	}
	return f, nil
}

// Close removes every stashed file.
func (s *ModelStash) Close() error {
	for _, path := range s.files {
		os.Remove(path)
	}
	s.files = map[int]string{}
	return nil
}
