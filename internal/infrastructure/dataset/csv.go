// Package dataset loads tabular files into the in-memory dataset.Table.
package dataset

import (
	"bufio"
	"context"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/dftest-dev/dftest/internal/domain/dataset"
)

// DefaultChunkSize is the number of CSV rows decoded per Arrow record.
const DefaultChunkSize = 4096

// CSVOptions tune CSV decoding.
type CSVOptions struct {
	Comma      rune // 0 detects the separator from the header line
	ChunkSize  int
	LazyQuotes bool
}

// DefaultCSVOptions returns options that detect the separator and tolerate stray quotes.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{ChunkSize: DefaultChunkSize, LazyQuotes: true}
}

// Loader reads CSV and Parquet files.
type Loader struct {
	mem    memory.Allocator
	logger *slog.Logger
	csv    CSVOptions
}

// NewLoader creates a file loader.
func NewLoader(opts CSVOptions, logger *slog.Logger) *Loader {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		mem:    memory.NewGoAllocator(),
		logger: logger,
		csv:    opts,
	}
}

// Load reads a dataset; .parquet files are read as Parquet, everything else as CSV.
func (l *Loader) Load(ctx context.Context, path string) (*dataset.Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		return l.LoadParquet(ctx, path)
	}
	return l.LoadCSV(path)
}

// LoadCSV reads a CSV file with a header row. Every column is read as nullable
// strings, and empty fields become null cells.
func (l *Loader) LoadCSV(path string) (*dataset.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer func() {
		_ = f.Close() // Best-effort cleanup
	}()

	table, err := l.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	l.logger.Debug("dataset loaded", "path", path, "rows", table.RowCount(), "columns", len(table.Columns()))
	return table, nil
}

// ReadCSV decodes CSV from r. The header line is read here; Arrow decodes the rest.
func (l *Loader) ReadCSV(r io.Reader) (*dataset.Table, error) {
	br := bufio.NewReader(r)

	headerLine, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	headerLine = strings.TrimRight(headerLine, "\r\n")
	if strings.TrimSpace(headerLine) == "" {
		return nil, fmt.Errorf("dataset is empty")
	}

	comma := l.csv.Comma
	if comma == 0 {
		comma = detectSeparator(headerLine)
	}

	header, err := parseHeader(headerLine, comma)
	if err != nil {
		return nil, err
	}
	columns := uniqueNames(header)

	fields := make([]arrow.Field, len(columns))
	for i, name := range columns {
		fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	reader := csv.NewReader(br, schema,
		csv.WithAllocator(l.mem),
		csv.WithHeader(false),
		csv.WithComma(comma),
		csv.WithLazyQuotes(l.csv.LazyQuotes),
		csv.WithNullReader(true, ""),
		csv.WithChunk(l.csv.ChunkSize),
	)
	defer reader.Release()

	data := make(map[string][]dataset.Value, len(columns))
	for _, name := range columns {
		data[name] = []dataset.Value{}
	}
	for reader.Next() {
		rec := reader.Record()
		for i, name := range columns {
			col, ok := rec.Column(i).(*array.String)
			if !ok {
				return nil, fmt.Errorf("column %q: unexpected type %s", name, rec.Column(i).DataType())
			}
			for row := 0; row < col.Len(); row++ {
				if col.IsNull(row) {
					data[name] = append(data[name], dataset.NullValue())
					continue
				}
				data[name] = append(data[name], dataset.StringValue(col.Value(row)))
			}
		}
	}
	if err := reader.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode CSV: %w", err)
	}

	return dataset.NewTable(columns, data)
}

func parseHeader(line string, comma rune) ([]string, error) {
	r := stdcsv.NewReader(strings.NewReader(line))
	r.Comma = comma
	r.LazyQuotes = true
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")
	}
	return header, nil
}

// detectSeparator picks the most frequent of the common separators in the header line.
func detectSeparator(line string) rune {
	best, bestCount := ',', 0
	for _, sep := range []rune{',', ';', '\t', '|'} {
		if c := strings.Count(line, string(sep)); c > bestCount {
			best, bestCount = sep, c
		}
	}
	return best
}

// uniqueNames suffixes repeated or blank header names so every column is addressable.
func uniqueNames(header []string) []string {
	seen := make(map[string]bool, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		name := h
		for n := 1; seen[name]; n++ {
			name = h + "." + strconv.Itoa(n)
		}
		seen[name] = true
		out[i] = name
	}
	return out
}
