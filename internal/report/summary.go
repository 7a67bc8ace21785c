package report

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"grshelves/internal/model"
)

// Summary is the run overview printed when scraping finishes.
type Summary struct {
	Shelf   string
	Result  *model.Result
	Files   []string
	Elapsed time.Duration
}

// Write renders the summary as a table to w.
func (s Summary) Write(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Shelf", s.Shelf},
		{"Friends", len(s.Result.UserIDs)},
		{"Books", len(s.Result.Books)},
		{"Genre tags", len(s.Result.Genres)},
		{"Distinct genres", len(CountGenres(s.Result.Genres))},
		{"Unmapped ratings", s.Result.Unmapped},
		{"Elapsed", s.Elapsed.Round(time.Millisecond).String()},
	})
	for _, f := range s.Files {
		t.AppendRow(table.Row{"Output", f})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
