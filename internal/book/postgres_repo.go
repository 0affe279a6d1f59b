package book

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) FindByTitle(ctx context.Context, title string) (Book, error) {
	const query = `
		SELECT id, title, created_at, updated_at
		FROM books
		WHERE title = $1
		LIMIT 1
	`
	var b Book
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, title).Scan(&b.ID, &b.Title, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) Upsert(ctx context.Context, title string) (Book, error) {
	const sql = `
		INSERT INTO books (title, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		ON CONFLICT (title) DO UPDATE SET
			updated_at = NOW()
		RETURNING id, title, created_at, updated_at`

	var b Book
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, sql, title).Scan(&b.ID, &b.Title, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return Book{}, fmt.Errorf("upsert book: %w", err)
	}
	return b, nil
}

func (r *PostgresRepo) ReplaceWords(ctx context.Context, bookID int64, words []FrequentWord) error {
	if len(words) > MaxFrequentWords {
		return fmt.Errorf("%w: %d words exceeds limit of %d", ErrInvalidInput, len(words), MaxFrequentWords)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return err
	}
	defer tx.Rollback(timeoutCtx)

	if _, err := tx.Exec(timeoutCtx, `DELETE FROM frequent_words WHERE book_id = $1`, bookID); err != nil {
		return fmt.Errorf("clear words: %w", err)
	}

	const insertSQL = `
		INSERT INTO frequent_words (book_id, word, frequency, word_rank)
		VALUES ($1, $2, $3, $4)`

	batch := &pgx.Batch{}
	for _, w := range words {
		batch.Queue(insertSQL, bookID, w.Word, w.Frequency, w.Rank)
	}
	if err := tx.SendBatch(timeoutCtx, batch).Close(); err != nil {
		return fmt.Errorf("insert words: %w", err)
	}

	return tx.Commit(timeoutCtx)
}

func (r *PostgresRepo) TopWords(ctx context.Context, bookID int64, limit int) ([]FrequentWord, error) {
	const query = `
		SELECT book_id, word, frequency, word_rank
		FROM frequent_words
		WHERE book_id = $1
		ORDER BY frequency DESC, word_rank ASC
		LIMIT $2`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, bookID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []FrequentWord{}
	for rows.Next() {
		var w FrequentWord
		if err := rows.Scan(&w.BookID, &w.Word, &w.Frequency, &w.Rank); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Book, int, error) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	if q.Q != "" {
		clauses = append(clauses, fmt.Sprintf("title ILIKE $%d", argn))
		args = append(args, "%"+q.Q+"%")
		argn++
	}

	where := "WHERE " + strings.Join(clauses, " AND ")

	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM books %s", where)
	var total int
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.QueryRow(timeoutCtx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := fmt.Sprintf(`
		SELECT id, title, created_at, updated_at
		FROM books
		%s
		ORDER BY title ASC
		LIMIT $%d OFFSET $%d`,
		where, argn, argn+1)

	argsWithPage := append([]any{}, args...)
	argsWithPage = append(argsWithPage, q.Limit, q.Offset)
	rows, err := r.db.Query(timeoutCtx, dataSQL, argsWithPage...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}
