package book

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Book is a record owned by the remote books API.
type Book struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Draft holds the fields of the create form.
type Draft struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
}

// NewDraft trims surrounding whitespace from both fields.
func NewDraft(title, author string) Draft {
	return Draft{
		Title:  strings.TrimSpace(title),
		Author: strings.TrimSpace(author),
	}
}

// Filter returns the books whose title or author contains query,
// ignoring case. An empty query returns books unchanged.
func Filter(books []Book, query string) []Book {
	if query == "" {
		return books
	}

	// Simple lowercasing, not full folding: "ss" does not match "ß".
	// A Caser keeps state between calls and must not be shared.
	lower := cases.Lower(language.Und)
	needle := lower.String(query)

	out := make([]Book, 0, len(books))
	for _, b := range books {
		if strings.Contains(lower.String(b.Title), needle) ||
			strings.Contains(lower.String(b.Author), needle) {
			out = append(out, b)
		}
	}
	return out
}
