package notes

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Input carries the client-supplied fields of a note.
type Input struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category *string  `json:"category"`
	Tags     []string `json:"tags"`
}

// Service applies validation in front of a [Repository].
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) List(ctx context.Context) ([]Note, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Note, error) {
	return s.repo.Get(ctx, id)
}

// Create assigns a new UUID and stores the note after validation.
func (s *Service) Create(ctx context.Context, in Input) (Note, error) {
	n := s.fromInput(uuid.NewString(), in)
	if err := n.Validate(); err != nil {
		return Note{}, err
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return Note{}, err
	}
	return n, nil
}

// Update replaces the note with the given id. Unknown ids fail with
// [ErrNotFound] before validation runs.
func (s *Service) Update(ctx context.Context, id string, in Input) (Note, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return Note{}, err
	}
	n := s.fromInput(id, in)
	if err := n.Validate(); err != nil {
		return Note{}, err
	}
	return s.repo.Update(ctx, n)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Search(ctx context.Context, query string) ([]Note, error) {
	return s.repo.Search(ctx, query)
}

func (s *Service) fromInput(id string, in Input) Note {
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	return Note{
		ID:              id,
		Title:           in.Title,
		Content:         in.Content,
		LastModifiedUTC: s.now(),
		Category:        in.Category,
		Tags:            tags,
	}
}
