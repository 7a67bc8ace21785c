// Package report renders human readable summaries of a scraping run.
package report

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"grshelves/internal/model"
)

// GenreCount is how many genre rows carry one tag.
type GenreCount struct {
	Genre string
	Count int
}

// CountGenres tallies genre rows, most frequent first and ties by name.
func CountGenres(genres []model.GenreRecord) []GenreCount {
	counts := map[string]int{}
	for _, g := range genres {
		counts[g.Genre]++
	}

	out := make([]GenreCount, 0, len(counts))
	for genre, n := range counts {
		out = append(out, GenreCount{Genre: genre, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Genre < out[j].Genre
	})
	return out
}

// Reader aggregates the books of one user.
type Reader struct {
	UserID string
	Books  int
	Rated  int
	// Average is the mean over rated books, zero when none were rated.
	Average float64
}

// Readers aggregates books per user in first-seen order. A rating of zero
// means the user left no rating.
func Readers(books []model.BookRecord) []Reader {
	index := map[string]int{}
	var out []Reader
	sums := map[string]int{}
	for _, b := range books {
		i, ok := index[b.UserID]
		if !ok {
			i = len(out)
			index[b.UserID] = i
			out = append(out, Reader{UserID: b.UserID})
		}
		out[i].Books++
		if b.Rating.Valid && b.Rating.Value > 0 {
			out[i].Rated++
			sums[b.UserID] += b.Rating.Value
		}
	}
	for i := range out {
		if out[i].Rated > 0 {
			out[i].Average = float64(sums[out[i].UserID]) / float64(out[i].Rated)
		}
	}
	return out
}

// Report describes one run.
type Report struct {
	Shelf     string
	Generated time.Time
	Result    *model.Result
}

// New creates a report for res.
func New(res *model.Result, shelf string, generated time.Time) *Report {
	return &Report{Shelf: shelf, Generated: generated, Result: res}
}

// HTML renders the report as an HTML fragment.
func (r *Report) HTML() string {
	var b strings.Builder
	esc := html.EscapeString

	b.WriteString("<h1>Genre report</h1>\n")
	fmt.Fprintf(&b, "<p>Shelf %s of %d friends: %d books and %d genre tags. Generated %s.</p>\n",
		esc(r.Shelf), len(r.Result.UserIDs), len(r.Result.Books), len(r.Result.Genres),
		r.Generated.UTC().Format(time.RFC3339))

	b.WriteString("<h2>Genres</h2>\n")
	counts := CountGenres(r.Result.Genres)
	if len(counts) == 0 {
		b.WriteString("<p>No genres found.</p>\n")
	} else {
		b.WriteString("<table><thead><tr><th>Genre</th><th>Books</th></tr></thead><tbody>\n")
		for _, c := range counts {
			fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td></tr>\n", esc(c.Genre), c.Count)
		}
		b.WriteString("</tbody></table>\n")
	}

	b.WriteString("<h2>Readers</h2>\n")
	readers := Readers(r.Result.Books)
	if len(readers) == 0 {
		b.WriteString("<p>No books found.</p>\n")
	} else {
		b.WriteString("<table><thead><tr><th>User</th><th>Books</th><th>Rated</th><th>Average rating</th></tr></thead><tbody>\n")
		for _, rd := range readers {
			avg := "-"
			if rd.Rated > 0 {
				avg = fmt.Sprintf("%.2f", rd.Average)
			}
			fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td><td>%d</td><td>%s</td></tr>\n",
				esc(rd.UserID), rd.Books, rd.Rated, avg)
		}
		b.WriteString("</tbody></table>\n")
	}
	return b.String()
}

// Markdown renders the report as Markdown.
func (r *Report) Markdown() (string, error) {
	return toMarkdown(r.HTML())
}

// WriteFile writes the Markdown report to path.
func (r *Report) WriteFile(path string) error {
	markdown, err := r.Markdown()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
