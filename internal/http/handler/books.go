package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"bookapi/internal/book"
	"bookapi/internal/store"
)

type BookHandler struct {
	Books store.Books
	Log   *slog.Logger
}

const yearMessage = "Publication year must be a valid integer"

var bookMessages = map[string]string{
	"title":           "Title is required",
	"author":          "Author is required",
	"publicationYear": yearMessage,
}

type createBookInput struct {
	Title           *string `json:"title" validate:"required,min=1"`
	Author          *string `json:"author" validate:"required,min=1"`
	PublicationYear *string `json:"publicationYear" validate:"required,isint"`
}

type updateBookInput struct {
	Title           *string `json:"title" validate:"omitnil,min=1"`
	Author          *string `json:"author" validate:"omitnil,min=1"`
	PublicationYear *string `json:"publicationYear" validate:"omitnil,isint"`
}

func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, book.Filter{})
}

func (h *BookHandler) ByAuthor(w http.ResponseWriter, r *http.Request) {
	author := pathParam(r, "author")
	h.list(w, r, book.Filter{Author: &author})
}

func (h *BookHandler) ByYear(w http.ResponseWriter, r *http.Request) {
	raw := pathParam(r, "publicationYear")
	if err := validate.Var(raw, "isint"); err != nil {
		writeValidation(w, []FieldError{{
			Type:     "field",
			Value:    raw,
			Msg:      yearMessage,
			Path:     "publicationYear",
			Param:    "publicationYear",
			Location: "params",
		}})
		return
	}
	year, _ := strconv.Atoi(raw)
	h.list(w, r, book.Filter{PublicationYear: &year})
}

func (h *BookHandler) list(w http.ResponseWriter, r *http.Request, f book.Filter) {
	books, err := h.Books.ListBooks(r.Context(), f)
	if err != nil {
		h.internal(w, "list books", err)
		return
	}
	if books == nil {
		books = []book.Book{}
	}
	writeJSON(w, http.StatusOK, books)
}

func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	f, err := decodeFields(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in := createBookInput{
		Title:           f.text("title"),
		Author:          f.text("author"),
		PublicationYear: f.text("publicationYear"),
	}
	if err := validate.Struct(in); err != nil {
		writeValidation(w, fieldErrors(err, f, "body", bookMessages))
		return
	}

	year, _ := strconv.Atoi(*in.PublicationYear)
	b := &book.Book{Title: *in.Title, Author: *in.Author, PublicationYear: year}
	if err := h.Books.CreateBook(r.Context(), b); err != nil {
		h.internal(w, "create book", err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// Update applies only the supplied fields. An unknown id answers 200 null.
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	f, err := decodeFields(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in := updateBookInput{
		Title:           f.text("title"),
		Author:          f.text("author"),
		PublicationYear: f.text("publicationYear"),
	}
	if err := validate.Struct(in); err != nil {
		writeValidation(w, fieldErrors(err, f, "body", bookMessages))
		return
	}

	p := book.Patch{Title: in.Title, Author: in.Author}
	if in.PublicationYear != nil {
		year, _ := strconv.Atoi(*in.PublicationYear)
		p.PublicationYear = &year
	}

	b, err := h.Books.UpdateBook(r.Context(), idParam(r), p)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	if err != nil {
		h.internal(w, "update book", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.Books.DeleteBook(r.Context(), idParam(r))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.internal(w, "delete book", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Book deleted successfully"})
}

func (h *BookHandler) internal(w http.ResponseWriter, op string, err error) {
	h.Log.Error(op, "error", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func idParam(r *http.Request) string {
	return pathParam(r, "id")
}
