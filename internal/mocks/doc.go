// Package mocks provides hand-written test doubles for the store, search,
// and auth interfaces. The store and index doubles are functional in-memory
// fakes sharing the production query semantics; the JWT double is a
// configurable mock for handler and middleware tests.
package mocks
