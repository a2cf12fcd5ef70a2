// Package engine implements the module/port dataflow graph that the rest
// of modprop builds on: Module and its input/output Ports, the Link that
// joins a consumer's input to a producer's output, and a non-recursive,
// FIFO-queue-driven Scheduler that drives forward propagation, backward
// propagation, and invalidation across a graph of arbitrary depth without
// risking stack overflow on long chains.
package engine
