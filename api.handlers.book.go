package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxCoverUploadBytes bounds the multipart memory used by cover uploads.
const maxCoverUploadBytes = 10 << 20

// DecodeBookRequestBody is a helper function to read the content of a book creation or update request.
func DecodeBookRequestBody(r *http.Request, book *Book) error {
	if r.Body == nil {
		return errors.New("invalid book request body")
	}
	return json.NewDecoder(r.Body).Decode(book)
}

// CreateBookForm answers the form route for allowed users with the
// fields a submission must carry.
func (api *APIHandler) CreateBookForm(w http.ResponseWriter, r *http.Request) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	resp := GenericResponse(requestID, http.StatusOK, "Book form available.", nil, map[string]interface{}{
		"fields":   []string{"title", "pages", "rating", "status", "published_date", "read_date", "authors"},
		"statuses": []BookStatus{StatusPending, StatusReading, StatusFinished},
	})
	if err := WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

func (api *APIHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	book := Book{}
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	err := DecodeBookRequestBody(r, &book)
	if err != nil {
		api.logger.Error("failed to create book", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to create the book", book)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	if fieldErrs := ValidateBook(book); fieldErrs != nil {
		api.logger.Error("failed to create book: invalid fields", zap.String("request.id", requestID), zap.Any("fields", fieldErrs))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to create the book", fieldErrs)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	book.ID = api.ids.Generate(BookIDPrefix)
	book.CreatedAt = api.clock.Now().UTC().String()
	book.UpdatedAt = api.clock.Now().UTC().String()

	err = api.books.Add(r.Context(), book.ID, book)
	if errors.Is(err, ErrAuthorNotFound) {
		api.logger.Error("failed to create book: unknown author reference", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to create the book", map[string]string{"authors": "must reference existing authors"})
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	if err != nil {
		api.logger.Error("failed to create book", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to create the book", book)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	resp := GenericResponse(requestID, http.StatusCreated, "Book created successfully.", nil, book)
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// ListBooks serves the filtered, sorted and paginated listing. The
// filter/sort/page parameters are optional.
func (api *APIHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	params := r.URL.Query()
	query := BookQuery{
		Search: params.Get("q"),
		Sort:   params.Get("sort"),
		Page:   1,
	}
	if page, err := strconv.Atoi(params.Get("page")); err == nil {
		query.Page = page
	}

	page, err := api.books.Page(r.Context(), query)
	if err != nil {
		api.logger.Error("failed to list books", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to list books", EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to list books",
		zap.String("request.id", requestID),
		zap.String("query.q", query.Search),
		zap.String("query.sort", query.SortField()),
		zap.Int("query.page", page.Page),
	)
	resp := GenericResponse(requestID, http.StatusOK, "Books fetched successfully.", &page.Total, page)
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// DetailBook serves one book record.
func (api *APIHandler) DetailBook(w http.ResponseWriter, r *http.Request) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	id := chi.URLParam(r, "id")
	if ok := api.ids.IsValid(id, BookIDPrefix); !ok {
		api.logger.Error("book id provided is not valid", zap.String("book.id", id), zap.String("request.id", requestID))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "book id provided is not valid", Book{})
		if err := WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	book, err := api.books.GetOne(r.Context(), id)
	if err == ErrBookNotFound {
		api.logger.Error("book does not exist", zap.String("book.id", id), zap.String("request.id", requestID))
		errResp := NewAPIError(requestID, http.StatusNotFound, "book does not exist", book)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	if err != nil {
		api.logger.Error("failed to get book", zap.String("book.id", id), zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to get the book", book)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to get book", zap.String("book.id", id), zap.String("request.id", requestID))
	resp := GenericResponse(requestID, http.StatusOK, "Book fetched successfully.", nil, book)
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// EditBookForm serves the current record to allowed users before an edit.
func (api *APIHandler) EditBookForm(w http.ResponseWriter, r *http.Request) {
	api.DetailBook(w, r)
}

// EditBook replaces a book after running the same validation as creation.
func (api *APIHandler) EditBook(w http.ResponseWriter, r *http.Request) {
	var book Book
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	id := chi.URLParam(r, "id")
	if ok := api.ids.IsValid(id, BookIDPrefix); !ok {
		api.logger.Error("book id provided is not valid", zap.String("book.id", id), zap.String("request.id", requestID))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "book id provided is not valid", Book{})
		if err := WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	existing, err := api.books.GetOne(r.Context(), id)
	if err == ErrBookNotFound {
		api.logger.Error("book does not exist", zap.String("book.id", id), zap.String("request.id", requestID))
		errResp := NewAPIError(requestID, http.StatusNotFound, "book does not exist", Book{})
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	if err != nil {
		api.logger.Error("failed to check if the book exist", zap.String("book.id", id), zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to check if the book exist", Book{})
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	err = DecodeBookRequestBody(r, &book)
	if err != nil {
		api.logger.Error("failed to update book", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to update the book", book)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	if fieldErrs := ValidateBook(book); fieldErrs != nil {
		api.logger.Error("failed to update book: invalid fields", zap.String("request.id", requestID), zap.Any("fields", fieldErrs))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to update the book", fieldErrs)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	book.ID = id
	book.CreatedAt = existing.CreatedAt
	if book.CoverImage == "" {
		book.CoverImage = existing.CoverImage
	}

	book, err = api.books.Update(r.Context(), id, book)
	if errors.Is(err, ErrAuthorNotFound) {
		api.logger.Error("failed to update book: unknown author reference", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to update the book", map[string]string{"authors": "must reference existing authors"})
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	if err != nil {
		api.logger.Error("failed to update book", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to update the book", book)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to update book", zap.String("book.id", book.ID), zap.String("request.id", requestID))
	resp := GenericResponse(requestID, http.StatusOK, "Book updated successfully.", nil, book)
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// ConfirmDeleteBook serves the record about to be removed to allowed users.
func (api *APIHandler) ConfirmDeleteBook(w http.ResponseWriter, r *http.Request) {
	api.DetailBook(w, r)
}

func (api *APIHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	id := chi.URLParam(r, "id")
	if ok := api.ids.IsValid(id, BookIDPrefix); !ok {
		api.logger.Error("book id provided is not valid", zap.String("book.id", id), zap.String("request.id", requestID))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "book id provided is not valid", Book{})
		if err := WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	book, err := api.books.GetOne(r.Context(), id)
	if err == ErrBookNotFound {
		api.logger.Error("book does not exist", zap.String("book.id", id), zap.String("request.id", requestID))
		errResp := NewAPIError(requestID, http.StatusNotFound, "book does not exist", book)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	if err != nil {
		api.logger.Error("failed to check if the book exist", zap.String("book.id", id), zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to check if the book exist", book)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	err = api.books.Delete(r.Context(), id)
	if err != nil {
		api.logger.Error("failed to delete book", zap.String("book.id", id), zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to delete the book", book)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to delete book", zap.String("book.id", id), zap.String("request.id", requestID))
	resp := GenericResponse(requestID, http.StatusOK, "Book deleted successfully.", nil, book)
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// UploadBookCover attaches a cover image to an existing book. The file
// keeps its original name under the covers prefix.
func (api *APIHandler) UploadBookCover(w http.ResponseWriter, r *http.Request) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	id := chi.URLParam(r, "id")
	if ok := api.ids.IsValid(id, BookIDPrefix); !ok {
		api.logger.Error("book id provided is not valid", zap.String("book.id", id), zap.String("request.id", requestID))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "book id provided is not valid", Book{})
		if err := WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	if err := r.ParseMultipartForm(maxCoverUploadBytes); err != nil {
		api.logger.Error("failed to parse cover upload", zap.String("book.id", id), zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to upload the cover", EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	file, header, err := r.FormFile("cover_image")
	if err != nil {
		api.logger.Error("cover upload misses the cover_image file", zap.String("book.id", id), zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to upload the cover", map[string]string{"cover_image": "must be provided"})
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	defer file.Close()

	book, err := api.books.AttachCover(r.Context(), id, header.Filename, file)
	if err == ErrBookNotFound {
		api.logger.Error("book does not exist", zap.String("book.id", id), zap.String("request.id", requestID))
		errResp := NewAPIError(requestID, http.StatusNotFound, "book does not exist", book)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	if err != nil {
		api.logger.Error("failed to attach cover", zap.String("book.id", id), zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to upload the cover", book)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to attach cover", zap.String("book.id", id), zap.String("cover", book.CoverImage), zap.String("request.id", requestID))
	resp := GenericResponse(requestID, http.StatusOK, "Cover uploaded successfully.", nil, book)
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// GetLibraryStats serves a freshly computed statistics snapshot over the
// whole collection.
func (api *APIHandler) GetLibraryStats(w http.ResponseWriter, r *http.Request) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	stats, err := api.books.Stats(r.Context())
	if err != nil {
		api.logger.Error("failed to compute library stats", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to compute library stats", EmptyData)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to compute library stats", zap.String("request.id", requestID), zap.Int("books.total", stats.TotalBooks))
	resp := GenericResponse(requestID, http.StatusOK, "Library stats computed successfully.", nil, stats)
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}
