package output

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
)

// Writer writes rows of one table.
type Writer[T Row] interface {
	Write(rows []T) error
	Close() error
	// Paths returns the files the writer produces.
	Paths() []string
}

// CSVWriter writes rows to CSV with a header line.
type CSVWriter[T Row] struct {
	path   string
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates filename and writes the header row.
func NewCSVWriter[T Row](filename string) (*CSVWriter[T], error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}

	var zero T
	writer := csv.NewWriter(f)
	if err := writer.Write(zero.Header()); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	return &CSVWriter[T]{path: filename, file: f, writer: writer}, nil
}

// Write appends rows.
func (cw *CSVWriter[T]) Write(rows []T) error {
	for _, row := range rows {
		if err := cw.writer.Write(row.Record()); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close flushes and closes the file handle.
func (cw *CSVWriter[T]) Close() error {
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		cw.file.Close()
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return cw.file.Close()
}

func (cw *CSVWriter[T]) Paths() []string { return []string{cw.path} }

// JSONWriter writes newline-delimited JSON records.
type JSONWriter[T Row] struct {
	path    string
	file    *os.File
	writer  *bufio.Writer
	encoder *json.Encoder
}

// NewJSONWriter creates filename.
func NewJSONWriter[T Row](filename string) (*JSONWriter[T], error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create json file: %w", err)
	}

	buffer := bufio.NewWriter(f)
	return &JSONWriter[T]{
		path:    filename,
		file:    f,
		writer:  buffer,
		encoder: json.NewEncoder(buffer),
	}, nil
}

// Write appends rows in JSONL format.
func (jw *JSONWriter[T]) Write(rows []T) error {
	for _, row := range rows {
		if err := jw.encoder.Encode(row); err != nil {
			return fmt.Errorf("encode json record: %w", err)
		}
	}
	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return nil
}

// Close flushes buffers and closes the underlying file.
func (jw *JSONWriter[T]) Close() error {
	if err := jw.writer.Flush(); err != nil {
		jw.file.Close()
		return fmt.Errorf("flush json writer: %w", err)
	}
	return jw.file.Close()
}

func (jw *JSONWriter[T]) Paths() []string { return []string{jw.path} }

// ParquetWriter writes rows to a Parquet file whose schema is derived from T.
type ParquetWriter[T Row] struct {
	path   string
	file   *os.File
	writer *parquet.GenericWriter[T]
}

// NewParquetWriter creates filename.
func NewParquetWriter[T Row](filename string) (*ParquetWriter[T], error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create parquet file: %w", err)
	}

	return &ParquetWriter[T]{
		path:   filename,
		file:   f,
		writer: parquet.NewGenericWriter[T](f),
	}, nil
}

// Write appends rows.
func (pw *ParquetWriter[T]) Write(rows []T) error {
	if _, err := pw.writer.Write(rows); err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	return nil
}

// Close writes the footer and closes the file.
func (pw *ParquetWriter[T]) Close() error {
	if err := pw.writer.Close(); err != nil {
		pw.file.Close()
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return pw.file.Close()
}

func (pw *ParquetWriter[T]) Paths() []string { return []string{pw.path} }

// DualWriter writes the same rows to CSV and JSON lines.
type DualWriter[T Row] struct {
	csv  *CSVWriter[T]
	json *JSONWriter[T]
}

// NewDualWriter creates both files.
func NewDualWriter[T Row](csvFilename, jsonFilename string) (*DualWriter[T], error) {
	cw, err := NewCSVWriter[T](csvFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV writer: %w", err)
	}
	jw, err := NewJSONWriter[T](jsonFilename)
	if err != nil {
		cw.Close()
		return nil, fmt.Errorf("failed to create JSON writer: %w", err)
	}
	return &DualWriter[T]{csv: cw, json: jw}, nil
}

func (dw *DualWriter[T]) Write(rows []T) error {
	if err := dw.csv.Write(rows); err != nil {
		return fmt.Errorf("CSV write failed: %w", err)
	}
	if err := dw.json.Write(rows); err != nil {
		return fmt.Errorf("JSON write failed: %w", err)
	}
	return nil
}

func (dw *DualWriter[T]) Close() error {
	var errs []error
	if err := dw.csv.Close(); err != nil {
		errs = append(errs, fmt.Errorf("CSV close failed: %w", err))
	}
	if err := dw.json.Close(); err != nil {
		errs = append(errs, fmt.Errorf("JSON close failed: %w", err))
	}
	return errors.Join(errs...)
}

func (dw *DualWriter[T]) Paths() []string {
	return append(dw.csv.Paths(), dw.json.Paths()...)
}

// NewWriter opens a writer for format (csv, json, parquet or dual). base is
// the file path without extension.
func NewWriter[T Row](format, base string) (Writer[T], error) {
	var (
		w   Writer[T]
		err error
	)
	switch format {
	case "csv":
		w, err = NewCSVWriter[T](base + ".csv")
	case "json":
		w, err = NewJSONWriter[T](base + ".jsonl")
	case "parquet":
		w, err = NewParquetWriter[T](base + ".parquet")
	case "dual":
		w, err = NewDualWriter[T](base+".csv", base+".jsonl")
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Validate ensures every path exists as a regular file. An empty table is
// valid for JSON lines, which carries no header.
func Validate(paths []string) error {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.Mode().IsRegular() {
			return fmt.Errorf("%s is not a regular file", p)
		}
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
