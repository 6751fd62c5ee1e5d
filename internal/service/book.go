package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"librental-backend/internal/domain"
	"librental-backend/internal/logger"
	"librental-backend/internal/repository"
	"librental-backend/internal/storage"
)

// CoverUpload is the result of storing a cover image.
type CoverUpload struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

const maxCoverSizeBytes = 5 << 20 // 5 MiB

var allowedCoverTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type bookService struct {
	books repository.BookRepository
	store storage.Storage
}

func NewBookService(books repository.BookRepository, store storage.Storage) BookService {
	return &bookService{books: books, store: store}
}

func (s *bookService) Create(ctx context.Context, book *domain.Book) error {
	if book.Title == "" {
		return businessRule("book title is required")
	}
	if book.TotalCopies < 1 {
		return businessRule("book must have at least one copy")
	}
	if book.DailyRateCents < 0 {
		return businessRule("daily rate cannot be negative")
	}

	if book.ISBN != "" {
		existing, err := s.books.GetByISBN(ctx, book.ISBN)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			logger.Error("failed to check book isbn", "isbn", book.ISBN, "error", err)
			return ErrTryAgain
		}
		if existing != nil {
			return businessRule("a book with ISBN %s already exists", book.ISBN)
		}
	}

	book.AvailableCopies = book.TotalCopies
	book.Active = true
	if err := s.books.Create(ctx, book); err != nil {
		logger.Error("failed to create book", "error", err)
		return ErrTryAgain
	}

	logger.Info("book created", "book_id", book.ID, "title", book.Title)
	return nil
}

func (s *bookService) Get(ctx context.Context, id int32) (*domain.Book, error) {
	book, err := s.books.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("book", id)
	}
	if err != nil {
		logger.Error("failed to load book", "book_id", id, "error", err)
		return nil, ErrTryAgain
	}
	return book, nil
}

func (s *bookService) Update(ctx context.Context, book *domain.Book) error {
	current, err := s.books.GetByID(ctx, book.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("book", book.ID)
	}
	if err != nil {
		logger.Error("failed to load book", "book_id", book.ID, "error", err)
		return ErrTryAgain
	}

	if book.ISBN != "" && book.ISBN != current.ISBN {
		other, err := s.books.GetByISBN(ctx, book.ISBN)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			logger.Error("failed to check book isbn", "isbn", book.ISBN, "error", err)
			return ErrTryAgain
		}
		if other != nil {
			return businessRule("a book with ISBN %s already exists", book.ISBN)
		}
	}

	// Copies out on loan bound how far total copies can shrink.
	open, err := s.books.CountOpenItems(ctx, book.ID)
	if err != nil {
		logger.Error("failed to count open items", "book_id", book.ID, "error", err)
		return ErrTryAgain
	}
	if book.TotalCopies < open {
		return businessRule("%d copies are out on loan; total copies cannot be below that", open)
	}
	book.AvailableCopies = book.TotalCopies - open

	if err := s.books.Update(ctx, book); err != nil {
		logger.Error("failed to update book", "book_id", book.ID, "error", err)
		return ErrTryAgain
	}

	logger.Info("book updated", "book_id", book.ID)
	return nil
}

func (s *bookService) List(ctx context.Context, search string, page, pageSize int32) ([]domain.Book, int32, error) {
	books, total, err := s.books.List(ctx, search, page, pageSize)
	if err != nil {
		logger.Error("failed to list books", "error", err)
		return nil, 0, ErrTryAgain
	}
	return books, total, nil
}

func (s *bookService) Deactivate(ctx context.Context, id int32) error {
	_, err := s.books.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("book", id)
	}
	if err != nil {
		logger.Error("failed to load book", "book_id", id, "error", err)
		return ErrTryAgain
	}

	open, err := s.books.CountOpenItems(ctx, id)
	if err != nil {
		logger.Error("failed to count open items", "book_id", id, "error", err)
		return ErrTryAgain
	}
	if open > 0 {
		return businessRule("book has %d copies out on loan and cannot be deactivated", open)
	}

	if err := s.books.SetActive(ctx, id, false); err != nil {
		logger.Error("failed to deactivate book", "book_id", id, "error", err)
		return ErrTryAgain
	}

	logger.Info("book deactivated", "book_id", id)
	return nil
}

func (s *bookService) UploadCover(ctx context.Context, bookID int32, filename, contentType string, size int64, content io.Reader) (*CoverUpload, error) {
	if _, err := s.Get(ctx, bookID); err != nil {
		return nil, err
	}

	if size > maxCoverSizeBytes {
		return nil, businessRule("cover image exceeds the %d MB limit", maxCoverSizeBytes>>20)
	}
	ext, ok := allowedCoverTypes[strings.ToLower(contentType)]
	if !ok {
		return nil, businessRule("unsupported cover image type %q", contentType)
	}
	if e := strings.ToLower(filepath.Ext(filename)); e != "" && e != ext && !(e == ".jpeg" && ext == ".jpg") {
		return nil, businessRule("file extension %q does not match content type %q", e, contentType)
	}

	key := fmt.Sprintf("book-%d-%s%s", bookID, uuid.New().String(), ext)
	if err := s.store.Save(ctx, key, io.LimitReader(content, maxCoverSizeBytes)); err != nil {
		logger.Error("failed to store cover image", "book_id", bookID, "error", err)
		return nil, ErrTryAgain
	}

	url := s.store.URL(key)
	if err := s.books.SetCoverURL(ctx, bookID, url); err != nil {
		logger.Error("failed to save cover url", "book_id", bookID, "error", err)
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			logger.Warn("failed to clean up orphaned cover", "key", key, "error", delErr)
		}
		return nil, ErrTryAgain
	}

	logger.Info("cover image uploaded", "book_id", bookID, "key", key)
	return &CoverUpload{Key: key, URL: url}, nil
}

func (s *bookService) DeleteCover(ctx context.Context, bookID int32) error {
	book, err := s.Get(ctx, bookID)
	if err != nil {
		return err
	}
	if book.CoverURL == "" {
		return businessRule("book %d has no cover image", bookID)
	}

	key := path.Base(book.CoverURL)
	if err := s.books.SetCoverURL(ctx, bookID, ""); err != nil {
		logger.Error("failed to clear cover url", "book_id", bookID, "error", err)
		return ErrTryAgain
	}
	if err := s.store.Delete(ctx, key); err != nil {
		// The reference is gone; the orphaned file is only a warning.
		logger.Warn("failed to delete stored cover", "book_id", bookID, "key", key, "error", err)
	}

	logger.Info("cover image deleted", "book_id", bookID, "key", key)
	return nil
}
