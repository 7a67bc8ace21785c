package output

import (
	"fmt"
	"path/filepath"

	"grshelves/internal/model"
)

const (
	BooksTable  = "books_data"
	GenresTable = "genre_data"
)

// Write stores the books and genre tables under dir in the given format and
// returns the paths it produced.
func Write(dir, format string, books []model.BookRecord, genres []model.GenreRecord) ([]string, error) {
	bookPaths, err := writeTable(format, filepath.Join(dir, BooksTable), BookRows(books))
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", BooksTable, err)
	}
	genrePaths, err := writeTable(format, filepath.Join(dir, GenresTable), GenreRows(genres))
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", GenresTable, err)
	}

	paths := append(bookPaths, genrePaths...)
	if err := Validate(paths); err != nil {
		return nil, err
	}
	return paths, nil
}

func writeTable[T Row](format, base string, rows []T) ([]string, error) {
	w, err := NewWriter[T](format, base)
	if err != nil {
		return nil, err
	}
	if err := w.Write(rows); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return w.Paths(), nil
}
