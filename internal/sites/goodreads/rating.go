package goodreads

import (
	"log/slog"

	"grshelves/internal/model"
)

// RatingScale maps the star tooltips of a shelf to scores.
var RatingScale = map[string]int{
	"":                0,
	"did not like it": 1,
	"it was ok":       2,
	"liked it":        3,
	"really liked it": 4,
	"it was amazing":  5,
}

// NormalizeRating maps a label through RatingScale. Labels outside the scale
// are reported as not ok.
func NormalizeRating(label string) (int, bool) {
	score, ok := RatingScale[label]
	return score, ok
}

// NormalizeRatings sets Rating on every entry in place and returns how many
// labels were outside the scale. Those entries are left as they were.
func NormalizeRatings(entries []model.ShelfEntry, logger *slog.Logger) int {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("remapping column", slog.String("field", "Rating"), slog.Int("rows", len(entries)))

	unmapped := 0
	for i := range entries {
		score, ok := NormalizeRating(entries[i].RatingLabel)
		if !ok {
			unmapped++
			logger.Warn("unknown rating label", slog.String("label", entries[i].RatingLabel), slog.String("link", entries[i].Link))
			continue
		}
		entries[i].Rating = model.Some(score)
	}

	logger.Info("completed", slog.Int("unmapped", unmapped))
	return unmapped
}
