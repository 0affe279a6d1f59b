package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book and frequent word storage.
type Repository interface {
	FindByTitle(ctx context.Context, title string) (Book, error)
	Upsert(ctx context.Context, title string) (Book, error)
	ReplaceWords(ctx context.Context, bookID int64, words []FrequentWord) error
	TopWords(ctx context.Context, bookID int64, limit int) ([]FrequentWord, error)
	List(ctx context.Context, q Query) ([]Book, int, error)
}

// Fetcher downloads the plain text of a book.
type Fetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}
