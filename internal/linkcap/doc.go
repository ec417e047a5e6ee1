// Package linkcap probes whether an output root supports hard and symbolic
// links and which device it lives on. Results are cached per root for the
// lifetime of a run.
package linkcap
