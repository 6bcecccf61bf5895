package domain

import (
	"time"

	"github.com/google/uuid"
)

// Build is one published dictionary.
type Build struct {
	ID        uuid.UUID `db:"id"`
	Version   string    `db:"version"`
	Lemmas    int       `db:"lemma_count"`
	Wordforms int       `db:"wordform_count"`
	CreatedAt time.Time `db:"created_at"`
}

// Headword is a searchable head together with the slug of the lemma it
// resolves to. For a lemma the slug is its own.
type Headword struct {
	Head     string `db:"head"`
	Slug     string `db:"slug"`
	Wordform bool   `db:"wordform"`
}
