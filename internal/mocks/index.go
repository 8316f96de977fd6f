package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/taskhub/taskhub-api/internal/search"
)

// MemoryIndex is an in-memory implementation of search.Index with optional
// failure injection for projector tests.
type MemoryIndex struct {
	mu   sync.RWMutex
	docs map[string]search.Document // keyed by document ID

	UpsertErr error
	DeleteErr error
	SearchErr error
}

var _ search.Index = (*MemoryIndex)(nil)

// NewMemoryIndex creates an empty in-memory search index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		docs: make(map[string]search.Document),
	}
}

// Upsert implements search.Index.
func (m *MemoryIndex) Upsert(ctx context.Context, doc search.Document) error {
	if m.UpsertErr != nil {
		return m.UpsertErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc
	return nil
}

// Delete implements search.Index.
func (m *MemoryIndex) Delete(ctx context.Context, ownerID, taskID string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, taskID)
	return nil
}

// Search implements search.Index with a case-insensitive substring match on
// title and description, scoped to the owner.
func (m *MemoryIndex) Search(
	ctx context.Context,
	ownerID, query string,
) ([]search.Document, error) {
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(query)
	results := make([]search.Document, 0)
	for _, doc := range m.docs {
		if doc.OwnerID != ownerID {
			continue
		}
		if needle == "" ||
			strings.Contains(strings.ToLower(doc.Title), needle) ||
			(doc.Description != nil && strings.Contains(strings.ToLower(*doc.Description), needle)) {
			results = append(results, doc)
		}
	}
	return results, nil
}

// Get returns the stored document for a task ID, for assertions.
func (m *MemoryIndex) Get(taskID string) (search.Document, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[taskID]
	return doc, ok
}

// Len returns the number of stored documents.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}
