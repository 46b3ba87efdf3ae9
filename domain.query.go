package main

import (
	"sort"
	"strings"
)

// BooksPerPage is the fixed size of a listing page.
const BooksPerPage = 5

// DefaultSortField is applied when the sort parameter is absent or not
// part of the allow-list.
const DefaultSortField = "title"

// allowedSortFields is the allow-list of sort keys. Raw request input
// never reaches the ordering logic, it is mapped through this set first.
var allowedSortFields = map[string]bool{
	"title":          true,
	"pages":          true,
	"rating":         true,
	"status":         true,
	"published_date": true,
}

// BookQuery carries the optional listing parameters of a request.
type BookQuery struct {
	Search string
	Sort   string
	Page   int
}

// SortField returns the effective sort key after allow-list filtering.
func (q BookQuery) SortField() string {
	if allowedSortFields[q.Sort] {
		return q.Sort
	}
	return DefaultSortField
}

// BookPage is one page of an ordered, filtered book listing.
type BookPage struct {
	Books []Book `json:"books"`
	Page  int    `json:"page"`
	Pages int    `json:"pages"`
	Total int    `json:"total"`
}

// ApplyBookQuery filters, orders and paginates the given collection.
// The input slice is never mutated.
func ApplyBookQuery(books []Book, query BookQuery) BookPage {
	filtered := FilterBooks(books, query.Search)
	SortBooks(filtered, query.SortField())
	return paginateBooks(filtered, query.Page)
}

// FilterBooks retains the books whose title contains the search term,
// case-insensitively. It always returns a fresh slice.
func FilterBooks(books []Book, search string) []Book {
	filtered := make([]Book, 0, len(books))
	term := strings.ToLower(search)
	for _, book := range books {
		if term == "" || strings.Contains(strings.ToLower(book.Title), term) {
			filtered = append(filtered, book)
		}
	}
	return filtered
}

// SortBooks orders the slice in place by the given allow-listed field,
// ascending. Title and status compare lowercased. Books without a rating
// sort before rated ones. Equal keys keep id order.
func SortBooks(books []Book, field string) {
	// id pre-sort makes ties deterministic whatever the storage order.
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })

	sort.SliceStable(books, func(i, j int) bool {
		switch field {
		case "pages":
			return books[i].Pages < books[j].Pages
		case "rating":
			return ratingValue(books[i]) < ratingValue(books[j])
		case "status":
			return strings.ToLower(string(books[i].Status)) < strings.ToLower(string(books[j].Status))
		case "published_date":
			return books[i].PublishedDate.Time.Before(books[j].PublishedDate.Time)
		default:
			return strings.ToLower(books[i].Title) < strings.ToLower(books[j].Title)
		}
	})
}

func ratingValue(book Book) int {
	if book.Rating == nil {
		return 0
	}
	return *book.Rating
}

// paginateBooks cuts the collection into fixed-size pages. Out-of-range
// page numbers are clamped, an empty collection serves page 1 empty.
func paginateBooks(books []Book, page int) BookPage {
	total := len(books)
	pages := (total + BooksPerPage - 1) / BooksPerPage
	if pages == 0 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * BooksPerPage
	end := start + BooksPerPage
	if end > total {
		end = total
	}
	return BookPage{
		Books: books[start:end],
		Page:  page,
		Pages: pages,
		Total: total,
	}
}
