// Package main hosts the fileorg CLI entrypoint and command graph.
//
// The organize command drives a full pass: collect the input directory,
// classify each file, preview the proposed tree, ask for confirmation and
// commit. Supporting commands render directory trees, list journaled runs,
// scaffold configuration and run preflight checks.
package main
