package main

import "context"

// Author represents an author entity. Authors are created independently
// and referenced by zero or more books. Deleting an author removes its
// references from the books but never deletes any book.
type Author struct {
	ID        string `json:"id"`
	Name      string `json:"name" validate:"notblank"`
	LastName  string `json:"last_name" validate:"notblank"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// AuthorStorage defines possible operations on author entity.
type AuthorStorage interface {
	Add(ctx context.Context, id string, author Author) error
	GetOne(ctx context.Context, id string) (Author, error)
	Delete(ctx context.Context, id string) error
	GetAll(ctx context.Context) ([]Author, error)
}
