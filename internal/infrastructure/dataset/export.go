package dataset

import (
	stdcsv "encoding/csv"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/dftest-dev/dftest/internal/domain/dataset"
)

// ToArrowTable converts ds into an Arrow table of nullable string columns.
// The caller must Release the table.
func ToArrowTable(ds dataset.Dataset, mem memory.Allocator) (arrow.Table, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	columns := ds.Columns()
	fields := make([]arrow.Field, len(columns))
	arrays := make([]arrow.Array, len(columns))
	defer func() {
		for _, arr := range arrays {
			if arr != nil {
				arr.Release()
			}
		}
	}()

	for i, name := range columns {
		fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true}

		cells, err := ds.Column(name)
		if err != nil {
			return nil, err
		}
		b := array.NewStringBuilder(mem)
		b.Reserve(len(cells))
		for _, v := range cells {
			if v.Null || v.Raw == nil {
				b.AppendNull()
				continue
			}
			b.Append(v.String())
		}
		arrays[i] = b.NewArray()
		b.Release()
	}

	schema := arrow.NewSchema(fields, nil)
	rec := array.NewRecord(schema, arrays, int64(ds.RowCount()))
	defer rec.Release()
	return array.NewTableFromRecords(schema, []arrow.Record{rec}), nil
}

// WriteParquet writes ds as Snappy compressed Parquet.
func WriteParquet(ds dataset.Dataset, w io.Writer) error {
	table, err := ToArrowTable(ds, nil)
	if err != nil {
		return err
	}
	defer table.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(table.Schema(), w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := writer.WriteTable(table, max(table.NumRows(), 1)); err != nil {
		_ = writer.Close() // Best-effort cleanup
		return fmt.Errorf("failed to write table to parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// WriteCSV writes ds with a header row. Null cells are written as empty fields.
func WriteCSV(ds dataset.Dataset, w io.Writer) error {
	writer := stdcsv.NewWriter(w)

	columns := ds.Columns()
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	data := make([][]dataset.Value, len(columns))
	for i, name := range columns {
		cells, err := ds.Column(name)
		if err != nil {
			return err
		}
		data[i] = cells
	}

	row := make([]string, len(columns))
	for r := 0; r < ds.RowCount(); r++ {
		for c := range columns {
			row[c] = data[c][r].String()
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}
