// Package store provides abstractions for data persistence: the entity
// store interfaces, the composable task query used by every collection
// read, and the typed errors shared by all storage backends.
package store
