// Package kalmanchain assembles a chain of Kalman predict/update steps
// into a single dataflow graph and reduces their per-step observation
// log-likelihoods to one mean scalar, differentiable end to end with
// respect to the process- and observation-noise parameters. It is the
// façade a caller drives instead of wiring engine/modules by hand.
package kalmanchain
