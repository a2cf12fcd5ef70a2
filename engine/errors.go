package engine

import "errors"

// Sentinel errors for the engine package. Callers match with errors.Is.
var (
	// ErrWrongPortKind is returned by Link when the consumer's declared
	// port kind does not match the producer's, e.g. wiring a vector input
	// to a matrix output.
	ErrWrongPortKind = errors.New("engine: wrong port kind")

	// ErrNullAccumulator is returned by OutputPort.Backprop when given a
	// nil accumulator; every backward pass must seed a real accumulator
	// before driving the graph.
	ErrNullAccumulator = errors.New("engine: received nil backprop accumulator")

	// ErrOverArrival is returned by OutputPort.Backprop when more
	// contributions arrive than the port has registered consumers,
	// indicating a malformed graph or a duplicate Link.
	ErrOverArrival = errors.New("engine: more backprop arrivals than consumers")
)
