// Package model defines the records produced by a scraping run.
package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Credential is the account used to sign in. It is never persisted.
type Credential struct {
	Email    string
	Password string
}

// Optional holds a value that may be missing from the page it was read from.
type Optional[T any] struct {
	Value T
	Valid bool
}

// Some returns a present value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Valid: true}
}

// Ptr returns nil for a missing value.
func (o Optional[T]) Ptr() *T {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = Optional[T]{}
		return nil
	}
	if err := json.Unmarshal(b, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// ShelfEntry is one book on one user's shelf.
type ShelfEntry struct {
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	RatingLabel string `json:"rating_label"`
	// Rating is set by rating normalization; labels outside the known set
	// leave it unset.
	Rating Optional[int] `json:"rating"`
	Link   string        `json:"link"`
}

// RatingText renders the rating column: the normalized score, or the raw
// label when it could not be mapped.
func (e ShelfEntry) RatingText() string {
	if e.Rating.Valid {
		return strconv.Itoa(e.Rating.Value)
	}
	return e.RatingLabel
}

// BookDetail holds what was read from a book's own page. Every scalar may be
// missing.
type BookDetail struct {
	Link          string           `json:"link"`
	NumberOfPages Optional[string] `json:"number_of_pages"`
	OriginalTitle Optional[string] `json:"original_title"`
	AverageRating Optional[string] `json:"average_rating"`
	TotalRatings  Optional[string] `json:"total_ratings"`
	TotalReviews  Optional[string] `json:"total_reviews"`
	Genres        []string         `json:"genres"`
}

// Genre joins the genre tags with commas.
func (d BookDetail) Genre() string {
	return strings.Join(d.Genres, ",")
}

// BookRecord is one row of the books table: a shelf entry joined with the
// detail of its book.
type BookRecord struct {
	ShelfEntry
	Detail BookDetail `json:"detail"`
}

// GenreRecord is one genre tag occurrence.
type GenreRecord struct {
	Genre string `json:"genre"`
}

// Result is everything a run produced.
type Result struct {
	UserIDs []string
	Books   []BookRecord
	Genres  []GenreRecord
	// Unmapped counts shelf entries whose rating label was not recognized.
	Unmapped int
}
