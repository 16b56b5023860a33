package omics

import "fmt"

/*
AlignmentError is returned when a sample identifier required by the
canonical sample set is absent from one of the loaded sources.
*/
type AlignmentError struct {
	Sample string
	Source string
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("sample `%v` is not present in %v", e.Sample, e.Source)
}

/*
DimensionMismatchError is returned when a configured modality width
disagrees with the row count of the loaded table.
*/
type DimensionMismatchError struct {
	Modality string
	Want     int
	Got      int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("modality %v has %v features, configured dimension is %v", e.Modality, e.Got, e.Want)
}

/*
MissingTargetFileError is returned when a target table required by the
configured downstream task does not exist.
*/
type MissingTargetFileError struct {
	Path string
}

func (e *MissingTargetFileError) Error() string {
	return fmt.Sprintf("target file `%v` does not exist", e.Path)
}

/*
InvalidTaskCountError is returned for an alltask configuration with a
task count too small to leave room for the fixed regression and
survival objectives.
*/
type InvalidTaskCountError struct {
	TaskNum int
}

func (e *InvalidTaskCountError) Error() string {
	return fmt.Sprintf("alltask requires at least 3 tasks, got %v", e.TaskNum)
}

/*
IndexError is returned by Dataset.Get for a sample index outside [0,N).
*/
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("sample index %v is out of range [0,%v)", e.Index, e.Len)
}
