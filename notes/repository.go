package notes

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Repository stores notes. Get, Update, and Delete return an error wrapping
// [ErrNotFound] for unknown ids; Create wraps [ErrAlreadyExists].
type Repository interface {
	List(ctx context.Context) ([]Note, error)
	Get(ctx context.Context, id string) (Note, error)
	Create(ctx context.Context, note Note) error
	Update(ctx context.Context, note Note) (Note, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string) ([]Note, error)
}

// MemoryRepository is an in-process [Repository] seeded with two notes.
type MemoryRepository struct {
	mu    sync.RWMutex
	notes map[string]Note
	order []string
	now   func() time.Time
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository returns a repository holding the two sample notes with
// ids "1" and "2".
func NewMemoryRepository() *MemoryRepository {
	r := &MemoryRepository{
		notes: make(map[string]Note),
		now:   func() time.Time { return time.Now().UTC() },
	}

	architecture := "design/architecture"
	frameworks := "backend/frameworks"
	for _, n := range []Note{
		{
			ID:       "1",
			Title:    "Getting Started with Clean Architecture",
			Content:  "Clean Architecture helps separate concerns...",
			Category: &architecture,
			Tags:     []string{"architecture", "clean-code"},
		},
		{
			ID:       "2",
			Title:    "Go HTTP Services in Practice",
			Content:  "Small handlers, explicit errors, and a router that stays out of the way...",
			Category: &frameworks,
			Tags:     []string{"go", "http", "backend"},
		},
	} {
		n.LastModifiedUTC = r.now()
		r.notes[n.ID] = n
		r.order = append(r.order, n.ID)
	}

	return r
}

// List returns every note in insertion order.
func (r *MemoryRepository) List(_ context.Context) ([]Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Note, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.notes[id].clone())
	}
	return out, nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.notes[id]
	if !ok {
		return Note{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return n.clone(), nil
}

func (r *MemoryRepository) Create(_ context.Context, note Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.notes[note.ID]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, note.ID)
	}
	r.notes[note.ID] = note.clone()
	r.order = append(r.order, note.ID)
	return nil
}

// Update replaces an existing note and stamps LastModifiedUTC. It returns the
// stored value.
func (r *MemoryRepository) Update(_ context.Context, note Note) (Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.notes[note.ID]; !exists {
		return Note{}, fmt.Errorf("%w: %s", ErrNotFound, note.ID)
	}
	stored := note.clone()
	stored.LastModifiedUTC = r.now()
	r.notes[note.ID] = stored
	return stored.clone(), nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.notes[id]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(r.notes, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Search returns notes whose title, content, or any tag contains query,
// ignoring case.
func (r *MemoryRepository) Search(_ context.Context, query string) ([]Note, error) {
	q := strings.ToLower(query)

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Note, 0)
	for _, id := range r.order {
		n := r.notes[id]
		if matches(n, q) {
			out = append(out, n.clone())
		}
	}
	return out, nil
}

func matches(n Note, q string) bool {
	if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Content), q) {
		return true
	}
	for _, tag := range n.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}
