package dataset

import (
	"context"
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/dftest-dev/dftest/internal/domain/dataset"
)

// LoadParquet reads a Parquet file. Numeric and boolean columns keep their
// native Go types so type_test and in_range_test see them unconverted.
func (l *Loader) LoadParquet(ctx context.Context, path string) (*dataset.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer func() {
		_ = f.Close() // Best-effort cleanup
	}()

	pf, err := file.NewParquetReader(f, file.WithReadProps(parquet.NewReaderProperties(l.mem)))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer func() {
		_ = pf.Close() // Best-effort cleanup
	}()

	arrowReader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, l.mem)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	defer table.Release()

	ds, err := FromArrowTable(table)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	l.logger.Debug("dataset loaded", "path", path, "rows", ds.RowCount(), "columns", len(ds.Columns()))
	return ds, nil
}

// FromArrowTable copies an Arrow table into a dataset.Table.
func FromArrowTable(table arrow.Table) (*dataset.Table, error) {
	schema := table.Schema()
	columns := make([]string, schema.NumFields())
	for i, field := range schema.Fields() {
		columns[i] = field.Name
	}
	columns = uniqueNames(columns)

	data := make(map[string][]dataset.Value, len(columns))
	for i, name := range columns {
		values := make([]dataset.Value, 0, table.NumRows())
		for _, chunk := range table.Column(i).Data().Chunks() {
			for pos := 0; pos < chunk.Len(); pos++ {
				values = append(values, typedValue(chunk, pos))
			}
		}
		data[name] = values
	}
	return dataset.NewTable(columns, data)
}

func typedValue(col arrow.Array, pos int) dataset.Value {
	if col.IsNull(pos) {
		return dataset.NullValue()
	}

	switch c := col.(type) {
	case *array.String:
		return dataset.StringValue(c.Value(pos))
	case *array.LargeString:
		return dataset.StringValue(c.Value(pos))
	case *array.Binary:
		return dataset.StringValue(string(c.Value(pos)))
	case *array.Boolean:
		return dataset.Of(c.Value(pos))
	case *array.Int8:
		return dataset.Of(int64(c.Value(pos)))
	case *array.Int16:
		return dataset.Of(int64(c.Value(pos)))
	case *array.Int32:
		return dataset.Of(int64(c.Value(pos)))
	case *array.Int64:
		return dataset.Of(c.Value(pos))
	case *array.Uint8:
		return dataset.Of(int64(c.Value(pos)))
	case *array.Uint16:
		return dataset.Of(int64(c.Value(pos)))
	case *array.Uint32:
		return dataset.Of(int64(c.Value(pos)))
	case *array.Uint64:
		return dataset.Of(float64(c.Value(pos)))
	case *array.Float16:
		return dataset.Of(float64(c.Value(pos).Float32()))
	case *array.Float32:
		return dataset.Of(float64(c.Value(pos)))
	case *array.Float64:
		return dataset.Of(c.Value(pos))
	case *array.Date32:
		return dataset.StringValue(c.Value(pos).ToTime().Format("2006-01-02"))
	case *array.Date64:
		return dataset.StringValue(c.Value(pos).ToTime().Format("2006-01-02"))
	case *array.Timestamp:
		unit := c.DataType().(*arrow.TimestampType).Unit
		return dataset.StringValue(c.Value(pos).ToTime(unit).Format("2006-01-02T15:04:05.999999999Z"))
	default:
		return dataset.StringValue(col.ValueStr(pos))
	}
}
