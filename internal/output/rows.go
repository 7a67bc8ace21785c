// Package output writes the books and genre tables to CSV, JSON lines or
// Parquet files.
package output

import (
	"grshelves/internal/model"
)

// Row is a flat table row that can also be rendered as CSV.
type Row interface {
	Header() []string
	Record() []string
}

// BookRow is one row of books_data.
type BookRow struct {
	Title         string  `json:"Title" parquet:"Title"`
	Author        string  `json:"Author" parquet:"Author"`
	Rating        *int    `json:"Rating" parquet:"Rating"`
	RatingText    string  `json:"-" parquet:"-"`
	Link          string  `json:"Link" parquet:"Link"`
	NumberOfPages *string `json:"Number_of_pages" parquet:"Number_of_pages"`
	OriginalTitle *string `json:"Original_title" parquet:"Original_title"`
	AverageRating *string `json:"Average_rating" parquet:"Average_rating"`
	TotalRatings  *string `json:"Total_ratings" parquet:"Total_ratings"`
	TotalReviews  *string `json:"Total_reviews" parquet:"Total_reviews"`
	Genre         string  `json:"Genre" parquet:"Genre"`
}

// BookHeader is the column order of books_data.
var BookHeader = []string{
	"Title", "Author", "Rating", "Link", "Number_of_pages", "Original_title",
	"Average_rating", "Total_ratings", "Total_reviews", "Genre",
}

func (BookRow) Header() []string { return BookHeader }

// Record renders the row for CSV. Missing values are empty cells and an
// unmapped rating keeps its label.
func (r BookRow) Record() []string {
	return []string{
		r.Title,
		r.Author,
		r.RatingText,
		r.Link,
		deref(r.NumberOfPages),
		deref(r.OriginalTitle),
		deref(r.AverageRating),
		deref(r.TotalRatings),
		deref(r.TotalReviews),
		r.Genre,
	}
}

// GenreRow is one row of genre_data.
type GenreRow struct {
	Genre string `json:"Genre" parquet:"Genre"`
}

func (GenreRow) Header() []string { return []string{"Genre"} }

func (r GenreRow) Record() []string { return []string{r.Genre} }

// BookRows flattens book records into table rows.
func BookRows(books []model.BookRecord) []BookRow {
	rows := make([]BookRow, 0, len(books))
	for _, b := range books {
		rows = append(rows, BookRow{
			Title:         b.Title,
			Author:        b.Author,
			Rating:        b.Rating.Ptr(),
			RatingText:    b.RatingText(),
			Link:          b.Link,
			NumberOfPages: b.Detail.NumberOfPages.Ptr(),
			OriginalTitle: b.Detail.OriginalTitle.Ptr(),
			AverageRating: b.Detail.AverageRating.Ptr(),
			TotalRatings:  b.Detail.TotalRatings.Ptr(),
			TotalReviews:  b.Detail.TotalReviews.Ptr(),
			Genre:         b.Detail.Genre(),
		})
	}
	return rows
}

// GenreRows converts genre records into table rows.
func GenreRows(genres []model.GenreRecord) []GenreRow {
	rows := make([]GenreRow, 0, len(genres))
	for _, g := range genres {
		rows = append(rows, GenreRow{Genre: g.Genre})
	}
	return rows
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
