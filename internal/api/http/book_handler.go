package http

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"

	"librental-backend/internal/domain"
	"librental-backend/internal/service"
	"librental-backend/internal/storage"
)

type BookHandler struct {
	books service.BookService
	store storage.Storage
}

func NewBookHandler(books service.BookService, store storage.Storage) *BookHandler {
	return &BookHandler{books: books, store: store}
}

func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var book domain.Book
	if err := json.NewDecoder(r.Body).Decode(&book); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if err := h.books.Create(r.Context(), &book); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, book)
}

func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	book, err := h.books.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var book domain.Book
	if err := json.NewDecoder(r.Body).Decode(&book); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	book.ID = id
	if err := h.books.Update(r.Context(), &book); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	books, total, err := h.books.List(r.Context(), r.URL.Query().Get("search"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pagedResponse{Items: books, Total: total, Page: page, PageSize: pageSize})
}

func (h *BookHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.books.Deactivate(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// UploadCover accepts a multipart form with a single "cover" file field.
func (h *BookHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeBadRequest(w, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("cover")
	if err != nil {
		writeBadRequest(w, "missing cover file")
		return
	}
	defer file.Close()

	upload, err := h.books.UploadCover(r.Context(), id, header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, upload)
}

func (h *BookHandler) DeleteCover(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.books.DeleteCover(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// ServeCover streams a stored cover image. Public, no auth.
func (h *BookHandler) ServeCover(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	content, err := h.store.Open(r.Context(), key)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "cover not found"})
		return
	}
	defer content.Close()

	contentType := "application/octet-stream"
	switch filepath.Ext(key) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".webp":
		contentType = "image/webp"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	io.Copy(w, content)
}
