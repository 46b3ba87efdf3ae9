package main

import "sort"

// StatusCount is the number of books holding a given status.
type StatusCount struct {
	Status BookStatus `json:"status"`
	Label  string     `json:"label"`
	Count  int        `json:"count"`
}

// RatingCount is the number of books holding a given rating.
// A nil rating is the unrated bucket.
type RatingCount struct {
	Rating *int `json:"rating"`
	Count  int  `json:"count"`
}

// LibraryStats is a freshly computed summary over the full book
// collection. Nothing is cached, every request recomputes it.
type LibraryStats struct {
	TotalBooks    int           `json:"total_books"`
	MostPages     *Book         `json:"most_pages"`
	LeastPages    *Book         `json:"least_pages"`
	AvgPages      *float64      `json:"avg_pages"`
	AvgRating     *float64      `json:"avg_rating"`
	BooksByStatus []StatusCount `json:"books_by_status"`
	BooksByRating []RatingCount `json:"books_by_rating"`
}

// ComputeLibraryStats builds the statistics snapshot. An empty
// collection yields nulls and empty lists, never an error.
// Page extremes break ties on the lowest id.
func ComputeLibraryStats(books []Book) LibraryStats {
	stats := LibraryStats{
		TotalBooks:    len(books),
		BooksByStatus: []StatusCount{},
		BooksByRating: []RatingCount{},
	}
	if len(books) == 0 {
		return stats
	}

	ordered := make([]Book, len(books))
	copy(ordered, books)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	var pagesSum, ratingSum, ratedCount int
	mostIdx, leastIdx := 0, 0
	byStatus := make(map[BookStatus]int)
	byRating := make(map[int]int)

	for i, book := range ordered {
		pagesSum += book.Pages
		// strict comparisons keep the first book seen, hence the lowest id.
		if book.Pages > ordered[mostIdx].Pages {
			mostIdx = i
		}
		if book.Pages < ordered[leastIdx].Pages {
			leastIdx = i
		}
		byStatus[book.Status]++
		byRating[ratingValue(book)]++
		if book.Rating != nil {
			ratingSum += *book.Rating
			ratedCount++
		}
	}

	most, least := ordered[mostIdx], ordered[leastIdx]
	stats.MostPages = &most
	stats.LeastPages = &least

	avgPages := float64(pagesSum) / float64(len(ordered))
	stats.AvgPages = &avgPages
	if ratedCount > 0 {
		avgRating := float64(ratingSum) / float64(ratedCount)
		stats.AvgRating = &avgRating
	}

	for status, count := range byStatus {
		stats.BooksByStatus = append(stats.BooksByStatus, StatusCount{
			Status: status,
			Label:  status.Label(),
			Count:  count,
		})
	}
	sort.Slice(stats.BooksByStatus, func(i, j int) bool {
		if stats.BooksByStatus[i].Count != stats.BooksByStatus[j].Count {
			return stats.BooksByStatus[i].Count > stats.BooksByStatus[j].Count
		}
		return stats.BooksByStatus[i].Status < stats.BooksByStatus[j].Status
	})

	ratings := make([]int, 0, len(byRating))
	for rating := range byRating {
		ratings = append(ratings, rating)
	}
	sort.Ints(ratings)
	for _, rating := range ratings {
		entry := RatingCount{Count: byRating[rating]}
		if rating != 0 {
			r := rating
			entry.Rating = &r
		}
		stats.BooksByRating = append(stats.BooksByRating, entry)
	}

	return stats
}
