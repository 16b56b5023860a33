package nn

import "fmt"

/*
UnsupportedActivationError is returned for an activation name the FC
building block does not implement.
*/
type UnsupportedActivationError struct {
	Name string
}

func (e *UnsupportedActivationError) Error() string {
	return fmt.Sprintf("activation function `%v` is not implemented", e.Name)
}

/*
UnknownInitTypeError is returned for an unrecognized weight
initialization scheme name.
*/
type UnknownInitTypeError struct {
	Name string
}

func (e *UnknownInitTypeError) Error() string {
	return fmt.Sprintf("initialization method `%v` is not implemented", e.Name)
}

/*
UnknownDownstreamHeadError is returned for an unrecognized downstream
network tag.
*/
type UnknownDownstreamHeadError struct {
	Name string
}

func (e *UnknownDownstreamHeadError) Error() string {
	return fmt.Sprintf("downstream model name `%v` is not recognized", e.Name)
}

/*
UnknownOmicsModeError is returned for an unrecognized omics mode tag.
*/
type UnknownOmicsModeError struct {
	Name string
}

func (e *UnknownOmicsModeError) Error() string {
	return fmt.Sprintf("omics mode `%v` is not recognized", e.Name)
}
