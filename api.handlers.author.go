package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DecodeAuthorRequestBody is a helper function to read the content of an author creation request.
func DecodeAuthorRequestBody(r *http.Request, author *Author) error {
	if r.Body == nil {
		return errors.New("invalid author request body")
	}
	return json.NewDecoder(r.Body).Decode(author)
}

func (api *APIHandler) CreateAuthor(w http.ResponseWriter, r *http.Request) {
	author := Author{}
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	err := DecodeAuthorRequestBody(r, &author)
	if err != nil {
		api.logger.Error("failed to create author", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to create the author", author)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	if fieldErrs := ValidateAuthor(author); fieldErrs != nil {
		api.logger.Error("failed to create author: invalid fields", zap.String("request.id", requestID), zap.Any("fields", fieldErrs))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "failed to create the author", fieldErrs)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	author.ID = api.ids.Generate(AuthorIDPrefix)
	author.CreatedAt = api.clock.Now().UTC().String()

	err = api.authors.Add(r.Context(), author.ID, author)
	if err != nil {
		api.logger.Error("failed to create author", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to create the author", author)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	resp := GenericResponse(requestID, http.StatusCreated, "Author created successfully.", nil, author)
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

func (api *APIHandler) GetAllAuthors(w http.ResponseWriter, r *http.Request) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	authors, err := api.authors.GetAll(r.Context())
	if err != nil {
		api.logger.Error("failed to get all authors", zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to get all authors", authors)
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	total := len(authors)
	resp := GenericResponse(requestID, http.StatusOK, "All authors fetched successfully.", &total, authors)
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// DeleteAuthor removes an author and detaches it from every book
// referencing it. The books themselves stay untouched.
func (api *APIHandler) DeleteAuthor(w http.ResponseWriter, r *http.Request) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	id := chi.URLParam(r, "id")
	if ok := api.ids.IsValid(id, AuthorIDPrefix); !ok {
		api.logger.Error("author id provided is not valid", zap.String("author.id", id), zap.String("request.id", requestID))
		errResp := NewAPIError(requestID, http.StatusBadRequest, "author id provided is not valid", Author{})
		if err := WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}

	err := api.authors.Delete(r.Context(), id)
	if errors.Is(err, ErrAuthorNotFound) {
		api.logger.Error("author does not exist", zap.String("author.id", id), zap.String("request.id", requestID))
		errResp := NewAPIError(requestID, http.StatusNotFound, "author does not exist", Author{})
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	if err != nil {
		api.logger.Error("failed to delete author", zap.String("author.id", id), zap.String("request.id", requestID), zap.Error(err))
		errResp := NewAPIError(requestID, http.StatusInternalServerError, "failed to delete the author", Author{})
		if err = WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
		}
		return
	}
	api.logger.Info("success to delete author", zap.String("author.id", id), zap.String("request.id", requestID))
	resp := GenericResponse(requestID, http.StatusOK, "Author deleted successfully.", nil, EmptyData)
	if err = WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}
