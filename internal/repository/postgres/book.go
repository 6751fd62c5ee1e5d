package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"librental-backend/internal/domain"
	"librental-backend/internal/repository"

	"github.com/lib/pq"
)

type bookRepository struct {
	db *sql.DB
}

func NewBookRepository(db *sql.DB) repository.BookRepository {
	return &bookRepository{db: db}
}

const bookColumns = `id, title, isbn, author, publisher, publication_year, category, total_copies, available_copies, daily_rate_cents, cover_url, active, registered_on`

func scanBook(row interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	b := &domain.Book{}
	err := row.Scan(&b.ID, &b.Title, &b.ISBN, &b.Author, &b.Publisher, &b.PublicationYear,
		&b.Category, &b.TotalCopies, &b.AvailableCopies, &b.DailyRateCents, &b.CoverURL,
		&b.Active, &b.RegisteredOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *bookRepository) Create(ctx context.Context, b *domain.Book) error {
	query := `INSERT INTO books (title, isbn, author, publisher, publication_year, category, total_copies, available_copies, daily_rate_cents, cover_url, active, registered_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	return conn(ctx, r.db).QueryRowContext(ctx, query,
		b.Title, b.ISBN, b.Author, b.Publisher, b.PublicationYear, b.Category,
		b.TotalCopies, b.AvailableCopies, b.DailyRateCents, b.CoverURL, b.Active, time.Now()).Scan(&b.ID)
}

func (r *bookRepository) GetByID(ctx context.Context, id int32) (*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
	return scanBook(conn(ctx, r.db).QueryRowContext(ctx, query, id))
}

func (r *bookRepository) GetByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE isbn = $1`
	return scanBook(conn(ctx, r.db).QueryRowContext(ctx, query, isbn))
}

func (r *bookRepository) GetByIDs(ctx context.Context, ids []int32) ([]domain.Book, error) {
	return r.getByIDs(ctx, ids, false)
}

func (r *bookRepository) GetByIDsForUpdate(ctx context.Context, ids []int32) ([]domain.Book, error) {
	return r.getByIDs(ctx, ids, true)
}

func (r *bookRepository) getByIDs(ctx context.Context, ids []int32, forUpdate bool) ([]domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = ANY($1) ORDER BY id`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *b)
	}
	return books, rows.Err()
}

func (r *bookRepository) Update(ctx context.Context, b *domain.Book) error {
	query := `UPDATE books SET title=$1, author=$2, publisher=$3, publication_year=$4, category=$5, total_copies=$6, available_copies=$7, daily_rate_cents=$8, cover_url=$9, active=$10 WHERE id=$11`
	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		b.Title, b.Author, b.Publisher, b.PublicationYear, b.Category,
		b.TotalCopies, b.AvailableCopies, b.DailyRateCents, b.CoverURL, b.Active, b.ID)
	return err
}

func (r *bookRepository) SetActive(ctx context.Context, id int32, active bool) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE books SET active=$1 WHERE id=$2`, active, id)
	return err
}

func (r *bookRepository) SetCoverURL(ctx context.Context, id int32, url string) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE books SET cover_url=$1 WHERE id=$2`, url, id)
	return err
}

func (r *bookRepository) AdjustAvailable(ctx context.Context, id int32, delta int32) error {
	// The check constraint on available_copies keeps the stock invariant even
	// if a caller gets the delta wrong.
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE books SET available_copies = available_copies + $1 WHERE id = $2`, delta, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *bookRepository) CountOpenItems(ctx context.Context, bookID int32) (int32, error) {
	var count int32
	query := `SELECT count(*) FROM loan_items WHERE book_id = $1 AND returned_date IS NULL`
	err := conn(ctx, r.db).QueryRowContext(ctx, query, bookID).Scan(&count)
	return count, err
}

func (r *bookRepository) List(ctx context.Context, search string, page, pageSize int32) ([]domain.Book, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	base := `FROM books`
	args := []any{}
	argIdx := 1
	if search != "" {
		base += fmt.Sprintf(` WHERE lower(title) LIKE $%d OR lower(author) LIKE $%d OR isbn LIKE $%d OR lower(category) LIKE $%d`, argIdx, argIdx, argIdx, argIdx)
		args = append(args, "%"+strings.ToLower(search)+"%")
		argIdx++
	}

	var count int32
	if err := conn(ctx, r.db).QueryRowContext(ctx, `SELECT count(*) `+base, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + bookColumns + ` ` + base +
		fmt.Sprintf(` ORDER BY title LIMIT $%d OFFSET $%d`, argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, err
		}
		books = append(books, *b)
	}
	return books, count, rows.Err()
}
