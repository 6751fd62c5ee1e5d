package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"librental-backend/internal/domain"
	"librental-backend/internal/repository"
)

type fakeStorage struct {
	saved   map[string]string
	baseURL string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{saved: map[string]string{}, baseURL: "http://test"}
}

func (f *fakeStorage) Save(ctx context.Context, key string, content io.Reader) error {
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	f.saved[key] = string(data)
	return nil
}

func (f *fakeStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := f.saved[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(strings.NewReader(data)), nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	delete(f.saved, key)
	return nil
}

func (f *fakeStorage) URL(key string) string {
	return f.baseURL + "/covers/" + key
}

func TestBook_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("OK", func(t *testing.T) {
		books := new(MockBookRepo)
		svc := NewBookService(books, newFakeStorage())
		books.On("GetByISBN", ctx, "978-0441172719").Return(nil, repository.ErrNotFound)
		books.On("Create", ctx, mock.MatchedBy(func(b *domain.Book) bool {
			return b.Active && b.AvailableCopies == 3
		})).Return(nil)

		err := svc.Create(ctx, &domain.Book{Title: "Dune", ISBN: "978-0441172719", TotalCopies: 3, DailyRateCents: 500})
		assert.NoError(t, err)
		books.AssertExpectations(t)
	})

	t.Run("DuplicateISBN", func(t *testing.T) {
		books := new(MockBookRepo)
		svc := NewBookService(books, newFakeStorage())
		books.On("GetByISBN", ctx, "978-0441172719").Return(&domain.Book{ID: 1}, nil)

		err := svc.Create(ctx, &domain.Book{Title: "Dune", ISBN: "978-0441172719", TotalCopies: 1})
		assert.True(t, IsBusinessRule(err))
	})

	t.Run("NoCopies", func(t *testing.T) {
		svc := NewBookService(new(MockBookRepo), newFakeStorage())
		err := svc.Create(ctx, &domain.Book{Title: "Dune", TotalCopies: 0})
		assert.True(t, IsBusinessRule(err))
	})
}

func TestBook_Deactivate(t *testing.T) {
	ctx := context.Background()

	t.Run("OK", func(t *testing.T) {
		books := new(MockBookRepo)
		svc := NewBookService(books, newFakeStorage())
		books.On("GetByID", ctx, int32(1)).Return(&domain.Book{ID: 1}, nil)
		books.On("CountOpenItems", ctx, int32(1)).Return(int32(0), nil)
		books.On("SetActive", ctx, int32(1), false).Return(nil)

		assert.NoError(t, svc.Deactivate(ctx, 1))
		books.AssertExpectations(t)
	})

	t.Run("CopiesOnLoan", func(t *testing.T) {
		books := new(MockBookRepo)
		svc := NewBookService(books, newFakeStorage())
		books.On("GetByID", ctx, int32(1)).Return(&domain.Book{ID: 1}, nil)
		books.On("CountOpenItems", ctx, int32(1)).Return(int32(2), nil)

		err := svc.Deactivate(ctx, 1)
		assert.True(t, IsBusinessRule(err))
		books.AssertNotCalled(t, "SetActive", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestBook_UpdateRespectsOpenItems(t *testing.T) {
	ctx := context.Background()
	books := new(MockBookRepo)
	svc := NewBookService(books, newFakeStorage())

	books.On("GetByID", ctx, int32(1)).Return(&domain.Book{ID: 1, ISBN: "x", TotalCopies: 5}, nil)
	books.On("CountOpenItems", ctx, int32(1)).Return(int32(3), nil)

	// Shrinking below the open-item count is rejected.
	err := svc.Update(ctx, &domain.Book{ID: 1, Title: "Dune", ISBN: "x", TotalCopies: 2})
	assert.True(t, IsBusinessRule(err))

	// Otherwise available copies are recomputed from open items.
	books.On("Update", ctx, mock.MatchedBy(func(b *domain.Book) bool {
		return b.AvailableCopies == 1
	})).Return(nil).Once()
	err = svc.Update(ctx, &domain.Book{ID: 1, Title: "Dune", ISBN: "x", TotalCopies: 4})
	assert.NoError(t, err)
	books.AssertExpectations(t)
}

func TestBook_UploadCover(t *testing.T) {
	ctx := context.Background()

	t.Run("OK", func(t *testing.T) {
		books := new(MockBookRepo)
		store := newFakeStorage()
		svc := NewBookService(books, store)
		books.On("GetByID", ctx, int32(1)).Return(&domain.Book{ID: 1}, nil)
		books.On("SetCoverURL", ctx, int32(1), mock.MatchedBy(func(url string) bool {
			return strings.HasPrefix(url, "http://test/covers/book-1-")
		})).Return(nil)

		upload, err := svc.UploadCover(ctx, 1, "dune.jpg", "image/jpeg", 100, strings.NewReader("jpegdata"))
		assert.NoError(t, err)
		assert.True(t, strings.HasSuffix(upload.Key, ".jpg"))
		assert.Equal(t, "jpegdata", store.saved[upload.Key])
	})

	t.Run("UnsupportedType", func(t *testing.T) {
		books := new(MockBookRepo)
		svc := NewBookService(books, newFakeStorage())
		books.On("GetByID", ctx, int32(1)).Return(&domain.Book{ID: 1}, nil)

		_, err := svc.UploadCover(ctx, 1, "dune.gif", "image/gif", 100, strings.NewReader("x"))
		assert.True(t, IsBusinessRule(err))
	})

	t.Run("TooLarge", func(t *testing.T) {
		books := new(MockBookRepo)
		svc := NewBookService(books, newFakeStorage())
		books.On("GetByID", ctx, int32(1)).Return(&domain.Book{ID: 1}, nil)

		_, err := svc.UploadCover(ctx, 1, "dune.jpg", "image/jpeg", 6<<20, strings.NewReader("x"))
		assert.True(t, IsBusinessRule(err))
	})
}

func TestBook_DeleteCover(t *testing.T) {
	ctx := context.Background()

	t.Run("OK", func(t *testing.T) {
		books := new(MockBookRepo)
		store := newFakeStorage()
		store.saved["book-1-abc.jpg"] = "jpegdata"
		svc := NewBookService(books, store)
		books.On("GetByID", ctx, int32(1)).Return(&domain.Book{ID: 1, CoverURL: "http://test/covers/book-1-abc.jpg"}, nil)
		books.On("SetCoverURL", ctx, int32(1), "").Return(nil)

		assert.NoError(t, svc.DeleteCover(ctx, 1))
		assert.NotContains(t, store.saved, "book-1-abc.jpg")
		books.AssertExpectations(t)
	})

	t.Run("NoCover", func(t *testing.T) {
		books := new(MockBookRepo)
		svc := NewBookService(books, newFakeStorage())
		books.On("GetByID", ctx, int32(1)).Return(&domain.Book{ID: 1}, nil)

		err := svc.DeleteCover(ctx, 1)
		assert.True(t, IsBusinessRule(err))
		books.AssertNotCalled(t, "SetCoverURL", mock.Anything, mock.Anything, mock.Anything)
	})
}
