package book

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"bookfreq/internal/analyzer"
	"bookfreq/internal/platform/gutenberg"
)

// Service provides book lookup and processing.
type Service struct {
	repo    Repository
	fetcher Fetcher
}

// NewService creates a new book service.
func NewService(repo Repository, fetcher Fetcher) *Service {
	return &Service{repo: repo, fetcher: fetcher}
}

// List returns a list of processed books matching the query.
func (s *Service) List(ctx context.Context, q Query) ([]Book, int, error) {
	return s.repo.List(ctx, q)
}

// Lookup returns a stored book and its frequent words.
func (s *Service) Lookup(ctx context.Context, title string) (Result, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Result{}, fmt.Errorf("%w: no title provided", ErrInvalidInput)
	}

	b, err := s.repo.FindByTitle(ctx, title)
	if err != nil {
		return Result{}, err
	}

	words, err := s.repo.TopWords(ctx, b.ID, MaxFrequentWords)
	if err != nil {
		return Result{}, fmt.Errorf("load words for %q: %w", b.Title, err)
	}

	return Result{Book: b, Words: words, Source: SourceDatabase}, nil
}

// Process downloads the book at rawURL, stores its top words and returns them.
// Reprocessing a book replaces its previous words.
func (s *Service) Process(ctx context.Context, rawURL string) (Result, error) {
	textURL, err := gutenberg.NormalizeURL(rawURL)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	text, err := s.fetcher.FetchText(ctx, textURL)
	if err != nil {
		log.Printf("fetch failed url=%s error=%v", textURL, err)
		return Result{}, err
	}

	title := analyzer.ExtractTitle(text, gutenberg.EbookID(textURL))
	if title == "" {
		return Result{}, ErrUntitled
	}

	words := toFrequentWords(analyzer.Analyze(text))

	b, err := s.repo.Upsert(ctx, title)
	if err != nil {
		return Result{}, fmt.Errorf("save book %q: %w", title, err)
	}
	if err := s.repo.ReplaceWords(ctx, b.ID, words); err != nil {
		return Result{}, fmt.Errorf("save words for %q: %w", title, err)
	}

	stored, err := s.repo.TopWords(ctx, b.ID, MaxFrequentWords)
	if err != nil {
		return Result{}, fmt.Errorf("load words for %q: %w", title, err)
	}

	log.Printf("processed book id=%d title=%q words=%d url=%s", b.ID, b.Title, len(stored), textURL)
	return Result{Book: b, Words: stored, Source: SourceGutenberg}, nil
}

// Analyze ranks the words of text without storing anything.
func (s *Service) Analyze(_ context.Context, text string) ([]FrequentWord, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: no text provided", ErrInvalidInput)
	}
	return toFrequentWords(analyzer.Analyze(text)), nil
}

// IsFetchError reports whether err came from downloading a book.
func IsFetchError(err error) bool {
	var fetchErr *gutenberg.FetchError
	return errors.As(err, &fetchErr)
}

func toFrequentWords(counts []analyzer.WordCount) []FrequentWord {
	out := make([]FrequentWord, len(counts))
	for i, c := range counts {
		out[i] = FrequentWord{Word: c.Word, Frequency: c.Count, Rank: i + 1}
	}
	return out
}
