package book

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"bookfreq/internal/platform/gutenberg"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchText(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

const sampleText = `The Project Gutenberg eBook of Moby-Dick; or The Whale

Title: Moby-Dick; Or, The Whale

Author: Herman Melville

The whale! the WHALE, the sea. A whale and a sea and a ship.
`

func TestService_Lookup(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		s := NewService(repo, nil)

		b := Book{ID: 7, Title: "Moby-Dick"}
		words := []FrequentWord{{BookID: 7, Word: "the", Frequency: 3, Rank: 1}}
		repo.EXPECT().FindByTitle(gomock.Any(), "Moby-Dick").Return(b, nil)
		repo.EXPECT().TopWords(gomock.Any(), int64(7), MaxFrequentWords).Return(words, nil)

		res, err := s.Lookup(ctx, "  Moby-Dick ")
		require.NoError(t, err)
		assert.Equal(t, b, res.Book)
		assert.Equal(t, words, res.Words)
		assert.Equal(t, SourceDatabase, res.Source)
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		s := NewService(repo, nil)

		repo.EXPECT().FindByTitle(gomock.Any(), "Nope").Return(Book{}, ErrNotFound)

		_, err := s.Lookup(ctx, "Nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty title", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		s := NewService(NewMockRepository(ctrl), nil)

		_, err := s.Lookup(ctx, "   ")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("words error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		s := NewService(repo, nil)

		repo.EXPECT().FindByTitle(gomock.Any(), "Emma").Return(Book{ID: 1, Title: "Emma"}, nil)
		repo.EXPECT().TopWords(gomock.Any(), int64(1), MaxFrequentWords).Return(nil, context.DeadlineExceeded)

		_, err := s.Lookup(ctx, "Emma")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestService_Process(t *testing.T) {
	ctx := context.Background()
	const textURL = "https://www.gutenberg.org/cache/epub/2701/pg2701.txt"

	t.Run("fetches, analyzes and stores", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		f := new(mockFetcher)
		s := NewService(repo, f)

		f.On("FetchText", ctx, textURL).Return(sampleText, nil)

		b := Book{ID: 3, Title: "Moby-Dick", CreatedAt: time.Now(), UpdatedAt: time.Now()}
		repo.EXPECT().Upsert(gomock.Any(), "Moby-Dick").Return(b, nil)
		repo.EXPECT().ReplaceWords(gomock.Any(), int64(3), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ int64, words []FrequentWord) error {
				require.LessOrEqual(t, len(words), MaxFrequentWords)
				assert.Equal(t, FrequentWord{Word: "the", Frequency: 6, Rank: 1}, words[0])
				assert.Equal(t, FrequentWord{Word: "whale", Frequency: 5, Rank: 2}, words[1])
				return nil
			})
		stored := []FrequentWord{{BookID: 3, Word: "the", Frequency: 6, Rank: 1}}
		repo.EXPECT().TopWords(gomock.Any(), int64(3), MaxFrequentWords).Return(stored, nil)

		res, err := s.Process(ctx, "https://www.gutenberg.org/ebooks/2701")
		require.NoError(t, err)
		assert.Equal(t, b, res.Book)
		assert.Equal(t, stored, res.Words)
		assert.Equal(t, SourceGutenberg, res.Source)
		f.AssertExpectations(t)
	})

	t.Run("falls back to ebook id title", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		f := new(mockFetcher)
		s := NewService(repo, f)

		f.On("FetchText", ctx, textURL).Return("no header here at all", nil)
		repo.EXPECT().Upsert(gomock.Any(), "Gutenberg Book 2701").Return(Book{ID: 9, Title: "Gutenberg Book 2701"}, nil)
		repo.EXPECT().ReplaceWords(gomock.Any(), int64(9), gomock.Any()).Return(nil)
		repo.EXPECT().TopWords(gomock.Any(), int64(9), MaxFrequentWords).Return([]FrequentWord{}, nil)

		res, err := s.Process(ctx, textURL)
		require.NoError(t, err)
		assert.Equal(t, "Gutenberg Book 2701", res.Book.Title)
	})

	t.Run("untitled text without id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		f := new(mockFetcher)
		s := NewService(repo, f)

		f.On("FetchText", ctx, "https://example.com/book.txt").Return("no header", nil)

		_, err := s.Process(ctx, "https://example.com/book.txt")
		assert.ErrorIs(t, err, ErrUntitled)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("empty url", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		f := new(mockFetcher)
		s := NewService(NewMockRepository(ctrl), f)

		_, err := s.Process(ctx, "")
		assert.ErrorIs(t, err, ErrInvalidInput)
		f.AssertNotCalled(t, "FetchText", mock.Anything, mock.Anything)
	})

	t.Run("fetch failure is surfaced", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		f := new(mockFetcher)
		s := NewService(NewMockRepository(ctrl), f)

		fetchErr := &gutenberg.FetchError{URL: textURL, StatusCode: http.StatusNotFound}
		f.On("FetchText", ctx, textURL).Return("", fetchErr)

		_, err := s.Process(ctx, "https://www.gutenberg.org/ebooks/2701")
		require.Error(t, err)
		assert.True(t, IsFetchError(err))
	})

	t.Run("storage failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		f := new(mockFetcher)
		s := NewService(repo, f)

		f.On("FetchText", ctx, textURL).Return(sampleText, nil)
		repo.EXPECT().Upsert(gomock.Any(), "Moby-Dick").Return(Book{ID: 3, Title: "Moby-Dick"}, nil)
		repo.EXPECT().ReplaceWords(gomock.Any(), int64(3), gomock.Any()).Return(errors.New("db down"))

		_, err := s.Process(ctx, textURL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db down")
		assert.False(t, IsFetchError(err))
	})
}

func TestService_Analyze(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := NewService(NewMockRepository(ctrl), nil)

	words, err := s.Analyze(context.Background(), "b b a a c")
	require.NoError(t, err)
	assert.Equal(t, []FrequentWord{
		{Word: "b", Frequency: 2, Rank: 1},
		{Word: "a", Frequency: 2, Rank: 2},
		{Word: "c", Frequency: 1, Rank: 3},
	}, words)

	_, err = s.Analyze(context.Background(), " \n ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
