package main

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// BookServiceProvider exposes the book use cases to the handlers.
type BookServiceProvider interface {
	Add(ctx context.Context, id string, book Book) error
	GetOne(ctx context.Context, id string) (Book, error)
	Delete(ctx context.Context, id string) error
	Update(ctx context.Context, id string, book Book) (Book, error)
	GetAll(ctx context.Context) ([]Book, error)
	Page(ctx context.Context, query BookQuery) (BookPage, error)
	Stats(ctx context.Context) (LibraryStats, error)
	AttachCover(ctx context.Context, id, filename string, r io.Reader) (Book, error)
}

type BookService struct {
	logger  *zap.Logger
	config  *Config
	clock   Clocker
	storage BookStorage
	authors AuthorStorage
	covers  CoverStorage
	queue   Queuer
}

func NewBookService(logger *zap.Logger, config *Config, clock Clocker, storage BookStorage, authors AuthorStorage, covers CoverStorage, queue Queuer) BookServiceProvider {
	return &BookService{
		logger:  logger,
		config:  config,
		clock:   clock,
		storage: storage,
		authors: authors,
		covers:  covers,
		queue:   queue,
	}
}

// checkAuthorRefs ensures every referenced author exists before a book
// is persisted. The reference set is not owned, only checked.
func (bs *BookService) checkAuthorRefs(ctx context.Context, book Book) error {
	for _, authorID := range book.AuthorIDs {
		if _, err := bs.authors.GetOne(ctx, authorID); err != nil {
			return fmt.Errorf("author %s: %w", authorID, err)
		}
	}
	return nil
}

func (bs *BookService) Add(ctx context.Context, id string, book Book) error {
	if err := bs.checkAuthorRefs(ctx, book); err != nil {
		return err
	}
	if err := bs.queue.Push(ctx, CreateQueue, BookEvent{Op: OpCreate, Book: book}); err != nil {
		bs.logger.Error("service: failed to push book to queue", zap.String("qid", CreateQueue), zap.Error(err))
	}
	return bs.storage.Add(ctx, id, book)
}

func (bs *BookService) GetOne(ctx context.Context, id string) (Book, error) {
	book, err := bs.storage.GetOne(ctx, id)
	return book, err
}

// Delete removes the book and, best effort, its stored cover file. A
// failed cover cleanup is logged, never surfaced.
func (bs *BookService) Delete(ctx context.Context, id string) error {
	book, err := bs.storage.GetOne(ctx, id)
	if err != nil {
		return err
	}
	if err := bs.queue.Push(ctx, DeleteQueue, BookEvent{Op: OpDelete, Book: Book{ID: id}}); err != nil {
		bs.logger.Error("service: failed to push to queue", zap.String("qid", DeleteQueue), zap.Error(err))
	}
	if err := bs.storage.Delete(ctx, id); err != nil {
		return err
	}
	if book.CoverImage != "" {
		if err := bs.covers.Remove(book.CoverImage); err != nil {
			bs.logger.Error("service: failed to remove cover file", zap.String("book.id", id), zap.String("cover", book.CoverImage), zap.Error(err))
		}
	}
	return nil
}

func (bs *BookService) Update(ctx context.Context, id string, book Book) (Book, error) {
	if err := bs.checkAuthorRefs(ctx, book); err != nil {
		return book, err
	}
	book.UpdatedAt = bs.clock.Now().UTC().String()
	if err := bs.queue.Push(ctx, UpdateQueue, BookEvent{Op: OpUpdate, Book: book}); err != nil {
		bs.logger.Error("service: failed to push to queue", zap.String("qid", UpdateQueue), zap.Error(err))
	}
	return bs.storage.Update(ctx, id, book)
}

func (bs *BookService) GetAll(ctx context.Context) ([]Book, error) {
	books, err := bs.storage.GetAll(ctx)
	return books, err
}

// Page returns the filtered, ordered and paginated listing of books.
func (bs *BookService) Page(ctx context.Context, query BookQuery) (BookPage, error) {
	books, err := bs.storage.GetAll(ctx)
	if err != nil {
		return BookPage{}, err
	}
	return ApplyBookQuery(books, query), nil
}

// Stats recomputes the statistics snapshot from the full collection.
func (bs *BookService) Stats(ctx context.Context) (LibraryStats, error) {
	books, err := bs.storage.GetAll(ctx)
	if err != nil {
		return LibraryStats{}, err
	}
	return ComputeLibraryStats(books), nil
}

// AttachCover stores the uploaded cover image under the covers prefix
// and records its logical path on the book.
func (bs *BookService) AttachCover(ctx context.Context, id, filename string, r io.Reader) (Book, error) {
	book, err := bs.storage.GetOne(ctx, id)
	if err != nil {
		return book, err
	}
	path, err := bs.covers.Save(filename, r)
	if err != nil {
		return book, err
	}
	book.CoverImage = path
	book.UpdatedAt = bs.clock.Now().UTC().String()
	if err := bs.queue.Push(ctx, UpdateQueue, BookEvent{Op: OpUpdate, Book: book}); err != nil {
		bs.logger.Error("service: failed to push to queue", zap.String("qid", UpdateQueue), zap.Error(err))
	}
	return bs.storage.Update(ctx, id, book)
}

// AuthorServiceProvider exposes the author use cases to the handlers.
type AuthorServiceProvider interface {
	Add(ctx context.Context, id string, author Author) error
	GetOne(ctx context.Context, id string) (Author, error)
	GetAll(ctx context.Context) ([]Author, error)
	Delete(ctx context.Context, id string) error
}

type AuthorService struct {
	logger  *zap.Logger
	storage AuthorStorage
	books   BookStorage
	queue   Queuer
}

func NewAuthorService(logger *zap.Logger, storage AuthorStorage, books BookStorage, queue Queuer) AuthorServiceProvider {
	return &AuthorService{
		logger:  logger,
		storage: storage,
		books:   books,
		queue:   queue,
	}
}

func (as *AuthorService) Add(ctx context.Context, id string, author Author) error {
	return as.storage.Add(ctx, id, author)
}

func (as *AuthorService) GetOne(ctx context.Context, id string) (Author, error) {
	return as.storage.GetOne(ctx, id)
}

func (as *AuthorService) GetAll(ctx context.Context) ([]Author, error) {
	return as.storage.GetAll(ctx)
}

// Delete removes the author then strips its id from every book holding
// a reference. Books themselves are never deleted.
func (as *AuthorService) Delete(ctx context.Context, id string) error {
	if err := as.storage.Delete(ctx, id); err != nil {
		return err
	}
	books, err := as.books.GetAll(ctx)
	if err != nil {
		return err
	}
	for _, book := range books {
		if !book.HasAuthor(id) {
			continue
		}
		book.RemoveAuthor(id)
		if _, err := as.books.Update(ctx, book.ID, book); err != nil {
			return fmt.Errorf("failed to detach author from book %s: %w", book.ID, err)
		}
		if err := as.queue.Push(ctx, UpdateQueue, BookEvent{Op: OpUpdate, Book: book}); err != nil {
			as.logger.Error("service: failed to push to queue", zap.String("qid", UpdateQueue), zap.Error(err))
		}
	}
	return nil
}

// AuthServiceProvider exposes registration and session use cases.
type AuthServiceProvider interface {
	Register(ctx context.Context, username, password string) (User, error)
	Login(ctx context.Context, username, password string) (Session, error)
	Logout(ctx context.Context, sessionID string) error
	Current(ctx context.Context, sessionID string) (Session, error)
}

type AuthService struct {
	logger   *zap.Logger
	config   *Config
	clock    Clocker
	ids      UIDHandler
	users    UserStorage
	sessions SessionStorage
}

func NewAuthService(logger *zap.Logger, config *Config, clock Clocker, ids UIDHandler, users UserStorage, sessions SessionStorage) AuthServiceProvider {
	return &AuthService{
		logger:   logger,
		config:   config,
		clock:    clock,
		ids:      ids,
		users:    users,
		sessions: sessions,
	}
}

// roleFor assigns the Admin role to usernames listed in the auth
// configuration, everyone else registers as a Member.
func (as *AuthService) roleFor(username string) Role {
	for _, admin := range as.config.Auth.AdminUsers {
		if admin == username {
			return RoleAdmin
		}
	}
	return RoleMember
}

func (as *AuthService) Register(ctx context.Context, username, password string) (User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return User{}, err
	}
	user := User{
		ID:           as.ids.Generate(UserIDPrefix),
		Username:     username,
		PasswordHash: hash,
		Role:         as.roleFor(username),
		CreatedAt:    as.clock.Now().UTC().String(),
	}
	if err := as.users.Add(ctx, username, user); err != nil {
		return User{}, err
	}
	as.logger.Info("service: user registered", zap.String("user.id", user.ID), zap.String("user.role", string(user.Role)))
	return user, nil
}

func (as *AuthService) Login(ctx context.Context, username, password string) (Session, error) {
	user, err := as.users.GetByUsername(ctx, username)
	if err == ErrUserNotFound {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	match, err := VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return Session{}, err
	}
	if !match {
		return Session{}, ErrInvalidCredentials
	}
	session := Session{
		ID:        as.ids.Generate(SessionIDPrefix),
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: as.clock.Now().UTC().String(),
	}
	if err := as.sessions.Add(ctx, session, as.config.Auth.SessionTTL); err != nil {
		return Session{}, err
	}
	return session, nil
}

func (as *AuthService) Logout(ctx context.Context, sessionID string) error {
	return as.sessions.Delete(ctx, sessionID)
}

func (as *AuthService) Current(ctx context.Context, sessionID string) (Session, error) {
	return as.sessions.Get(ctx, sessionID)
}
