package main

import (
	"context"
	"strings"
	"time"
)

// DateLayout is the wire format of calendar dates (published_date, read_date).
const DateLayout = "2006-01-02"

// Date is a calendar day without time of day. It marshals to "YYYY-MM-DD".
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON implements json.Marshaler using the DateLayout format.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler. An empty or null value
// leaves the date at its zero value.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// BookStatus is the reading state of a book.
type BookStatus string

const (
	StatusPending  BookStatus = "PE"
	StatusReading  BookStatus = "RE"
	StatusFinished BookStatus = "FI"
)

// Label returns the human readable name of the status code.
func (s BookStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusReading:
		return "Reading"
	case StatusFinished:
		return "Finished"
	}
	return string(s)
}

// Book represents a book entity. rating and read_date are optional,
// absent means not yet rated / not yet read. authors holds references
// to Author records, the book does not own them.
type Book struct {
	ID            string     `json:"id"`
	Title         string     `json:"title" validate:"notblank,max=50"`
	Pages         int        `json:"pages" validate:"min=1"`
	Rating        *int       `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Status        BookStatus `json:"status" validate:"required,oneof=PE RE FI"`
	PublishedDate Date       `json:"published_date"`
	ReadDate      *Date      `json:"read_date,omitempty"`
	AuthorIDs     []string   `json:"authors,omitempty"`
	CoverImage    string     `json:"cover_image,omitempty"`
	CreatedAt     string     `json:"createdAt,omitempty"`
	UpdatedAt     string     `json:"updatedAt,omitempty"`
}

// HasAuthor reports whether the book references the given author id.
func (b Book) HasAuthor(authorID string) bool {
	for _, id := range b.AuthorIDs {
		if id == authorID {
			return true
		}
	}
	return false
}

// RemoveAuthor drops the given author id from the book reference set.
func (b *Book) RemoveAuthor(authorID string) {
	ids := b.AuthorIDs[:0]
	for _, id := range b.AuthorIDs {
		if id != authorID {
			ids = append(ids, id)
		}
	}
	b.AuthorIDs = ids
}

// BookStorage defines possible operations on book entity.
type BookStorage interface {
	Add(ctx context.Context, id string, book Book) error
	GetOne(ctx context.Context, id string) (Book, error)
	Delete(ctx context.Context, id string) error
	Update(ctx context.Context, id string, book Book) (Book, error)
	GetAll(ctx context.Context) ([]Book, error)
}
