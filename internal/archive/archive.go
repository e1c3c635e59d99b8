package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"matchdata/internal/fileutil"
	"matchdata/internal/record"
)

const readBatchRows = 4096

// Read loads every row of the Parquet file at path. A missing file yields no
// records and no error. Any other failure returns no records together with
// the error, so callers may log it and carry on with an empty archive.
func Read(ctx context.Context, path string) ([]record.Record, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat archive %s: %w", path, err)
	}

	rdr, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	defer rdr.Close()

	fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{BatchSize: readBatchRows}, memory.DefaultAllocator)
	if err != nil {
		return nil, fmt.Errorf("read archive %s: %w", path, err)
	}
	tbl, err := fr.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("read archive %s: %w", path, err)
	}
	defer tbl.Release()

	records := make([]record.Record, 0, tbl.NumRows())
	tr := array.NewTableReader(tbl, readBatchRows)
	defer tr.Release()
	for tr.Next() {
		batch := tr.Record()
		schema := batch.Schema()
		for row := 0; row < int(batch.NumRows()); row++ {
			r := record.New(int(batch.NumCols()))
			for col := 0; col < int(batch.NumCols()); col++ {
				r.Set(schema.Field(col).Name, cellValue(batch.Column(col), row))
			}
			records = append(records, r)
		}
	}
	if err := tr.Err(); err != nil {
		return nil, fmt.Errorf("read archive %s: %w", path, err)
	}
	return records, nil
}

func cellValue(col arrow.Array, row int) record.Value {
	if col.IsNull(row) {
		return record.Null()
	}
	switch c := col.(type) {
	case *array.Int64:
		return record.Int(c.Value(row))
	case *array.Int32:
		return record.Int(int64(c.Value(row)))
	case *array.Float64:
		return record.Number(c.Value(row))
	case *array.Float32:
		return record.Number(float64(c.Value(row)))
	case *array.Boolean:
		return record.Bool(c.Value(row))
	case *array.String:
		return record.String(c.Value(row))
	case *array.LargeString:
		return record.String(c.Value(row))
	case *array.Binary:
		return record.String(string(c.Value(row)))
	default:
		return record.String(col.ValueStr(row))
	}
}

// Write replaces the archive at path with records. Zero records is a no-op
// that reports false and leaves the filesystem untouched. The file is
// written to a temporary sibling first and renamed into place.
func Write(ctx context.Context, path string, records []record.Record) (bool, error) {
	if len(records) == 0 {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	cols := InferSchema(records)
	schema := arrowSchema(cols)

	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()
	for _, r := range records {
		for i, c := range cols {
			v, _ := r.Get(c.Name)
			appendValue(b.Field(i), c.Type, v)
		}
	}
	batch := b.NewRecord()
	defer batch.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		fw, err := pqarrow.NewFileWriter(schema, w, props, pqarrow.DefaultWriterProps())
		if err != nil {
			return fmt.Errorf("create parquet writer: %w", err)
		}
		if err := fw.Write(batch); err != nil {
			_ = fw.Close()
			return fmt.Errorf("write parquet rows: %w", err)
		}
		if err := fw.Close(); err != nil {
			return fmt.Errorf("finish parquet file: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("write archive %s: %w", path, err)
	}
	return true, nil
}

func appendValue(b array.Builder, t ColumnType, v record.Value) {
	if v.IsNull() {
		b.AppendNull()
		return
	}
	switch t {
	case TypeInt64:
		i, _ := v.Int64()
		b.(*array.Int64Builder).Append(i)
	case TypeDouble:
		f, _ := v.Float()
		b.(*array.Float64Builder).Append(f)
	case TypeBool:
		bv, _ := v.BoolValue()
		b.(*array.BooleanBuilder).Append(bv)
	default:
		b.(*array.StringBuilder).Append(v.Text())
	}
}
