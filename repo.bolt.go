package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

type boltBookStorage struct {
	logger *zap.Logger
	client *bolt.DB
	config *BoltDBConfig
}

// GetBoltDBClient opens the mirror database file and makes sure the
// books bucket exists before handing back the client.
func GetBoltDBClient(config *Config) (*bolt.DB, error) {
	db, err := bolt.Open(config.BoltDB.FilePath, 0o600, &bolt.Options{Timeout: config.BoltDB.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open the mirror database: %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, errB := tx.CreateBucketIfNotExists([]byte(config.BoltDB.BucketName))
		if errB != nil {
			return fmt.Errorf("failed to create %s bucket: %v", config.BoltDB.BucketName, errB)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up bucket: %v", err)
	}
	return db, nil
}

// NewBoltBookStorage provides the bolt-backed book storage. It is the
// read replica of the redis collection, fed by the queue consumer, so
// it never owns validation or id generation.
func NewBoltBookStorage(logger *zap.Logger, boltConfig *BoltDBConfig, client *bolt.DB) BookStorage {
	return &boltBookStorage{
		logger: logger,
		client: client,
		config: boltConfig,
	}
}

// Close shuts down the bolt-based book storage.
func (bs *boltBookStorage) Close() error {
	return bs.client.Close()
}

func (bs *boltBookStorage) bucket(tx *bolt.Tx) *bolt.Bucket {
	return tx.Bucket([]byte(bs.config.BucketName))
}

// Add mirrors a new book record under its id.
func (bs *boltBookStorage) Add(_ context.Context, id string, book Book) error {
	bookBytes, err := json.Marshal(book)
	if err != nil {
		return err
	}
	return bs.client.Update(func(tx *bolt.Tx) error {
		return bs.bucket(tx).Put([]byte(id), bookBytes)
	})
}

// GetOne retrieves a mirrored book record by its id.
func (bs *boltBookStorage) GetOne(_ context.Context, id string) (Book, error) {
	var book Book
	err := bs.client.View(func(tx *bolt.Tx) error {
		result := bs.bucket(tx).Get([]byte(id))
		if result == nil {
			return ErrBookNotFound
		}
		return json.Unmarshal(result, &book)
	})
	return book, err
}

// Delete removes a mirrored book record. Deleting an id the mirror
// never saw is not an error, the queue may replay.
func (bs *boltBookStorage) Delete(_ context.Context, id string) error {
	return bs.client.Update(func(tx *bolt.Tx) error {
		return bs.bucket(tx).Delete([]byte(id))
	})
}

// Update upserts the mirrored record, keeping the mirror idempotent
// against out-of-order queue deliveries.
func (bs *boltBookStorage) Update(_ context.Context, id string, book Book) (Book, error) {
	bookBytes, err := json.Marshal(book)
	if err != nil {
		return book, err
	}
	err = bs.client.Update(func(tx *bolt.Tx) error {
		return bs.bucket(tx).Put([]byte(id), bookBytes)
	})
	return book, err
}

// GetAll walks the bucket and decodes every mirrored book.
func (bs *boltBookStorage) GetAll(_ context.Context) ([]Book, error) {
	books := []Book{}
	err := bs.client.View(func(tx *bolt.Tx) error {
		return bs.bucket(tx).ForEach(func(k, v []byte) error {
			var book Book
			if err := json.Unmarshal(v, &book); err != nil {
				return err
			}
			books = append(books, book)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return books, nil
}
