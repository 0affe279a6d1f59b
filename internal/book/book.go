package book

import (
	"errors"
	"fmt"
	"time"
)

// MaxFrequentWords is the most words stored for a single book.
const MaxFrequentWords = 10

var (
	// ErrNotFound is returned when a book is not found.
	ErrNotFound = errors.New("book not found")
	// ErrInvalidInput is returned for a missing or empty title, URL or text.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUntitled is returned when a downloaded text has no title line and
	// its URL carries no ebook id to build a fallback title from.
	ErrUntitled = fmt.Errorf("%w: cannot determine book title", ErrInvalidInput)
)

// Source tells where a Result came from.
type Source string

const (
	SourceDatabase  Source = "database"
	SourceGutenberg Source = "gutenberg"
)

// Book represents a processed book.
type Book struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FrequentWord is one of the top words of a book.
type FrequentWord struct {
	BookID    int64  `json:"-"`
	Word      string `json:"word"`
	Frequency int    `json:"frequency"`
	Rank      int    `json:"rank"`
}

// Result is a book together with its frequent words.
type Result struct {
	Book   Book           `json:"book"`
	Words  []FrequentWord `json:"words"`
	Source Source         `json:"source"`
}

// Query defines filters and pagination for listing books.
type Query struct {
	Q      string
	Limit  int
	Offset int
}
