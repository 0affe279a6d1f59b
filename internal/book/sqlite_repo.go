package book

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

// SQLiteRepo stores books in a local SQLite database. Timestamps are kept as unix seconds.
type SQLiteRepo struct {
	db      *sql.DB
	timeout time.Duration
	now     func() time.Time
}

// NewSQLiteRepo applies the schema to db and returns a repository on top of it.
func NewSQLiteRepo(ctx context.Context, db *sql.DB, timeout time.Duration) (*SQLiteRepo, error) {
	r := &SQLiteRepo{db: db, timeout: timeout, now: time.Now}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if _, err := db.ExecContext(timeoutCtx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return r, nil
}

func (r *SQLiteRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *SQLiteRepo) FindByTitle(ctx context.Context, title string) (Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	b, err := scanBook(r.db.QueryRowContext(timeoutCtx,
		`SELECT id, title, created_at, updated_at FROM books WHERE title = ? LIMIT 1`, title))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *SQLiteRepo) Upsert(ctx context.Context, title string) (Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(timeoutCtx, nil)
	if err != nil {
		return Book{}, err
	}
	defer tx.Rollback()

	now := r.now().UTC().Unix()
	const upsertSQL = `
		INSERT INTO books (title, created_at, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (title) DO UPDATE SET
			updated_at = excluded.updated_at`
	if _, err := tx.ExecContext(timeoutCtx, upsertSQL, title, now, now); err != nil {
		return Book{}, fmt.Errorf("upsert book: %w", err)
	}

	b, err := scanBook(tx.QueryRowContext(timeoutCtx,
		`SELECT id, title, created_at, updated_at FROM books WHERE title = ?`, title))
	if err != nil {
		return Book{}, fmt.Errorf("upsert book: %w", err)
	}
	return b, tx.Commit()
}

func (r *SQLiteRepo) ReplaceWords(ctx context.Context, bookID int64, words []FrequentWord) error {
	if len(words) > MaxFrequentWords {
		return fmt.Errorf("%w: %d words exceeds limit of %d", ErrInvalidInput, len(words), MaxFrequentWords)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(timeoutCtx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(timeoutCtx, `DELETE FROM frequent_words WHERE book_id = ?`, bookID); err != nil {
		return fmt.Errorf("clear words: %w", err)
	}

	stmt, err := tx.PrepareContext(timeoutCtx,
		`INSERT INTO frequent_words (book_id, word, frequency, word_rank) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("insert words: %w", err)
	}
	defer stmt.Close()

	for _, w := range words {
		if _, err := stmt.ExecContext(timeoutCtx, bookID, w.Word, w.Frequency, w.Rank); err != nil {
			return fmt.Errorf("insert word %q: %w", w.Word, err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepo) TopWords(ctx context.Context, bookID int64, limit int) ([]FrequentWord, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(timeoutCtx, `
		SELECT book_id, word, frequency, word_rank
		FROM frequent_words
		WHERE book_id = ?
		ORDER BY frequency DESC, word_rank ASC
		LIMIT ?`, bookID, limit)
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

func (r *SQLiteRepo) List(ctx context.Context, q Query) ([]Book, int, error) {
	where := ""
	args := []any{}
	if q.Q != "" {
		where = "WHERE title LIKE ?"
		args = append(args, "%"+q.Q+"%")
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.QueryRowContext(timeoutCtx, "SELECT COUNT(*) FROM books "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(timeoutCtx,
		"SELECT id, title, created_at, updated_at FROM books "+where+" ORDER BY title ASC LIMIT ? OFFSET ?",
		append(args, q.Limit, q.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (Book, error) {
	var (
		b                    Book
		createdAt, updatedAt int64
	)
	if err := row.Scan(&b.ID, &b.Title, &createdAt, &updatedAt); err != nil {
		return Book{}, err
	}
	b.CreatedAt = time.Unix(createdAt, 0).UTC()
	b.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return b, nil
}
