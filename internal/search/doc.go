// Package search defines the flat document shape handed to the external
// search engine and the projector that keeps documents in step with task
// mutations. The engine's query protocol and ranking are not modeled here;
// only the document contract is.
package search
