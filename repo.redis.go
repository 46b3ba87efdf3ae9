package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis hash names holding each collection.
const (
	HBooks   string = "books"
	HAuthors string = "authors"
	HUsers   string = "users"

	sessionKeyPrefix = "session:"
)

// GetRedisClient provides a ready to use redis client.
func GetRedisClient(config *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", config.Redis.Host, config.Redis.Port),
		DialTimeout:  config.Redis.DialTimeout,
		ReadTimeout:  config.Redis.ReadTimeout,
		WriteTimeout: config.Redis.WriteTimeout,
		PoolSize:     config.Redis.PoolSize,
		PoolTimeout:  config.Redis.PoolTimeout,
		Password:     config.Redis.Password,
		Username:     config.Redis.Username,
		DB:           config.Redis.DatabaseIndex,
	})

	// test connection.
	if pong, err := client.Ping(context.Background()).Result(); pong != "PONG" || err != nil {
		return client, fmt.Errorf("test connection failed: %v", err)
	}
	return client, nil
}

type redisBookStorage struct {
	logger *zap.Logger
	client *redis.Client
}

// NewRedisBookStorage provides an instance of redis-based book storage.
func NewRedisBookStorage(logger *zap.Logger, client *redis.Client) BookStorage {
	return &redisBookStorage{
		logger: logger,
		client: client,
	}
}

// Add inserts a new book record.
func (rs *redisBookStorage) Add(ctx context.Context, id string, book Book) error {
	bookBytes, err := json.Marshal(book)
	if err != nil {
		return err
	}
	return rs.client.HSet(ctx, HBooks, id, bookBytes).Err()
}

// GetOne retrieves a book record based on its ID.
func (rs *redisBookStorage) GetOne(ctx context.Context, id string) (Book, error) {
	var book Book
	bookJSONString, err := rs.client.HGet(ctx, HBooks, id).Result()
	if err == redis.Nil {
		return book, ErrBookNotFound
	}
	if err != nil {
		return book, err
	}
	err = json.Unmarshal([]byte(bookJSONString), &book)
	return book, err
}

// Delete removes a book record based on its ID.
func (rs *redisBookStorage) Delete(ctx context.Context, id string) error {
	n, err := rs.client.HDel(ctx, HBooks, id).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookNotFound
	}
	return nil
}

// Update replaces existing book record data or inserts a new book if does not exist.
func (rs *redisBookStorage) Update(ctx context.Context, id string, book Book) (Book, error) {
	bookBytes, err := json.Marshal(book)
	if err != nil {
		return book, err
	}
	err = rs.client.HSet(ctx, HBooks, id, bookBytes).Err()
	return book, err
}

// GetAll retrieves a list of all books stored in the redis database.
func (rs *redisBookStorage) GetAll(ctx context.Context) ([]Book, error) {
	values, err := rs.client.HVals(ctx, HBooks).Result()
	if err != nil {
		return nil, err
	}
	books := []Book{}
	for _, bookJSONString := range values {
		var book Book
		if err = json.Unmarshal([]byte(bookJSONString), &book); err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, nil
}

type redisAuthorStorage struct {
	logger *zap.Logger
	client *redis.Client
}

// NewRedisAuthorStorage provides an instance of redis-based author storage.
func NewRedisAuthorStorage(logger *zap.Logger, client *redis.Client) AuthorStorage {
	return &redisAuthorStorage{
		logger: logger,
		client: client,
	}
}

// Add inserts a new author record.
func (rs *redisAuthorStorage) Add(ctx context.Context, id string, author Author) error {
	authorBytes, err := json.Marshal(author)
	if err != nil {
		return err
	}
	return rs.client.HSet(ctx, HAuthors, id, authorBytes).Err()
}

// GetOne retrieves an author record based on its ID.
func (rs *redisAuthorStorage) GetOne(ctx context.Context, id string) (Author, error) {
	var author Author
	authorJSONString, err := rs.client.HGet(ctx, HAuthors, id).Result()
	if err == redis.Nil {
		return author, ErrAuthorNotFound
	}
	if err != nil {
		return author, err
	}
	err = json.Unmarshal([]byte(authorJSONString), &author)
	return author, err
}

// Delete removes an author record based on its ID.
func (rs *redisAuthorStorage) Delete(ctx context.Context, id string) error {
	n, err := rs.client.HDel(ctx, HAuthors, id).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAuthorNotFound
	}
	return nil
}

// GetAll retrieves a list of all authors stored in the redis database.
func (rs *redisAuthorStorage) GetAll(ctx context.Context) ([]Author, error) {
	values, err := rs.client.HVals(ctx, HAuthors).Result()
	if err != nil {
		return nil, err
	}
	authors := []Author{}
	for _, authorJSONString := range values {
		var author Author
		if err = json.Unmarshal([]byte(authorJSONString), &author); err != nil {
			return nil, err
		}
		authors = append(authors, author)
	}
	return authors, nil
}

type redisUserStorage struct {
	logger *zap.Logger
	client *redis.Client
}

// NewRedisUserStorage provides an instance of redis-based user storage.
// Users are keyed by username since that is the login identifier.
func NewRedisUserStorage(logger *zap.Logger, client *redis.Client) UserStorage {
	return &redisUserStorage{
		logger: logger,
		client: client,
	}
}

// Add inserts a new user record. It fails when the username is taken.
func (rs *redisUserStorage) Add(ctx context.Context, username string, user User) error {
	userBytes, err := json.Marshal(user)
	if err != nil {
		return err
	}
	created, err := rs.client.HSetNX(ctx, HUsers, username, userBytes).Result()
	if err != nil {
		return err
	}
	if !created {
		return ErrUserExists
	}
	return nil
}

// GetByUsername retrieves a user record based on its username.
func (rs *redisUserStorage) GetByUsername(ctx context.Context, username string) (User, error) {
	var user User
	userJSONString, err := rs.client.HGet(ctx, HUsers, username).Result()
	if err == redis.Nil {
		return user, ErrUserNotFound
	}
	if err != nil {
		return user, err
	}
	err = json.Unmarshal([]byte(userJSONString), &user)
	return user, err
}

type redisSessionStorage struct {
	logger *zap.Logger
	client *redis.Client
}

// NewRedisSessionStorage provides an instance of redis-based session
// storage. Each session lives under its own key so redis expires it.
func NewRedisSessionStorage(logger *zap.Logger, client *redis.Client) SessionStorage {
	return &redisSessionStorage{
		logger: logger,
		client: client,
	}
}

// Add inserts a new session record with the given time to live.
func (rs *redisSessionStorage) Add(ctx context.Context, session Session, ttl time.Duration) error {
	sessionBytes, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return rs.client.Set(ctx, sessionKeyPrefix+session.ID, sessionBytes, ttl).Err()
}

// Get retrieves a session record based on its ID.
func (rs *redisSessionStorage) Get(ctx context.Context, id string) (Session, error) {
	var session Session
	sessionJSONString, err := rs.client.Get(ctx, sessionKeyPrefix+id).Result()
	if err == redis.Nil {
		return session, ErrSessionNotFound
	}
	if err != nil {
		return session, err
	}
	err = json.Unmarshal([]byte(sessionJSONString), &session)
	return session, err
}

// Delete removes a session record based on its ID.
func (rs *redisSessionStorage) Delete(ctx context.Context, id string) error {
	return rs.client.Del(ctx, sessionKeyPrefix+id).Err()
}
