package notes

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	// ErrNotFound is returned when no note has the requested id.
	ErrNotFound = errors.New("note not found")
	// ErrAlreadyExists is returned when creating a note whose id is taken.
	ErrAlreadyExists = errors.New("note already exists")
)

// Note is a single user note.
type Note struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	LastModifiedUTC time.Time `json:"last_modified_utc"`
	Category        *string   `json:"category"`
	Tags            []string  `json:"tags"`
}

func (n Note) clone() Note {
	out := n
	if n.Category != nil {
		c := *n.Category
		out.Category = &c
	}
	out.Tags = append([]string(nil), n.Tags...)
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out
}

// ValidationError lists every field problem found in a note.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// Validate reports blank id, title, or content as a [*ValidationError].
func (n Note) Validate() error {
	checks := []struct {
		label string
		value string
	}{
		{"ID", n.ID},
		{"Title", n.Title},
		{"Content", n.Content},
	}

	var problems []string
	for _, c := range checks {
		if err := validation.Validate(strings.TrimSpace(c.value), validation.Required); err != nil {
			problems = append(problems, fmt.Sprintf("%s is required", c.label))
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Errors: problems}
	}
	return nil
}
