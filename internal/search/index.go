package search

import "context"

// Index abstracts the external search engine. Implementations must treat
// Upsert and Delete as idempotent: replaying either with the same arguments
// leaves the index in the same state.
type Index interface {
	// Upsert stores or replaces the document keyed by its ID.
	Upsert(ctx context.Context, doc Document) error

	// Delete removes the document for the given task, scoped to its owner.
	// Deleting a document that does not exist is not an error.
	Delete(ctx context.Context, ownerID, taskID string) error

	// Search returns the documents belonging to ownerID whose title or
	// description match the query string.
	Search(ctx context.Context, ownerID, query string) ([]Document, error)
}
