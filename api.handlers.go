package main

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Statistics holds app stats for ops.
type Statistics struct {
	version   string
	container bool
	runtime   string
	platform  string
	called    uint64
	started   time.Time
	status    map[int]uint64
	mu        *sync.RWMutex
}

// Maintenance holds app maintenance mode infos.
type Maintenance struct {
	enabled atomic.Bool
	message string
	started time.Time
}

// APIHandler defines the API handler.
type APIHandler struct {
	logger   *zap.Logger
	config   *Config
	clock    Clocker
	ids      UIDHandler
	stats    *Statistics
	mode     *Maintenance
	policy   Policy
	books    BookServiceProvider
	authors  AuthorServiceProvider
	accounts AuthServiceProvider
}

// NewAPIHandler provides a new instance of APIHandler.
func NewAPIHandler(logger *zap.Logger, config *Config, clock Clocker, ids UIDHandler, stats *Statistics,
	policy Policy, books BookServiceProvider, authors AuthorServiceProvider, accounts AuthServiceProvider,
) *APIHandler {
	m := &Maintenance{}
	m.enabled.Store(false)
	stats.status = make(map[int]uint64)
	stats.mu = &sync.RWMutex{}
	return &APIHandler{
		logger:   logger,
		config:   config,
		clock:    clock,
		ids:      ids,
		stats:    stats,
		mode:     m,
		policy:   policy,
		books:    books,
		authors:  authors,
		accounts: accounts,
	}
}

// NotFound replies to any request towards a non existent route.
func (api *APIHandler) NotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := GetValueFromContext(r.Context(), ContextRequestID)
		errResp := NewAPIError(requestID, http.StatusNotFound, "route does not exist", EmptyData)
		if err := WriteErrorResponse(r.Context(), w, errResp); err != nil {
			api.logger.Error("failed to send not found response", zap.String("request.id", requestID), zap.Error(err))
		}
	}
}

// OpsHandlerWrapper adapts a native http.Handler to the api handler signature.
func (api *APIHandler) OpsHandlerWrapper(h http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r)
	}
}
