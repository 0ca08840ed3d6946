package parquet

import (
	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/memory"
	pqfile "github.com/apache/arrow/go/v12/parquet/file"
	"github.com/apache/arrow/go/v12/parquet/metadata"
	"github.com/apache/arrow/go/v12/parquet/pqarrow"
	"github.com/pkg/errors"

	"github.com/rangeflow-io/rangeflow/io/fs"
	"github.com/rangeflow-io/rangeflow/scalar"
	"github.com/rangeflow-io/rangeflow/stats"
)

// Collect builds per-column statistics for the given schema from one Parquet
// file's footer, merging row-group column-chunk statistics. Columns missing
// from the file, or whose chunks carry no usable statistics, come back with
// absent fields rather than an error.
func Collect(f fs.Fs, path string, schema *arrow.Schema) ([]stats.ColumnStatistics, error) {
	fh, err := f.OpenFile(path)
	if err != nil {
		return nil, err
	}
	rdr, err := pqfile.NewParquetReader(fh)
	if err != nil {
		return nil, errors.Wrapf(err, "open parquet %q", path)
	}
	defer rdr.Close()

	md := rdr.MetaData()
	out := make([]stats.ColumnStatistics, len(schema.Fields()))
	for i, field := range schema.Fields() {
		colIndex := md.Schema.ColumnIndexByName(field.Name)
		if colIndex < 0 {
			continue
		}
		cs, err := collectColumn(md, colIndex, field.Type, rdr.NumRowGroups())
		if err != nil {
			return nil, errors.Wrapf(err, "column %q of %q", field.Name, path)
		}
		out[i] = cs
	}
	return out, nil
}

// ReadSchema reads the Arrow schema embedded in a Parquet file.
func ReadSchema(f fs.Fs, path string) (*arrow.Schema, error) {
	fh, err := f.OpenFile(path)
	if err != nil {
		return nil, err
	}
	rdr, err := pqfile.NewParquetReader(fh)
	if err != nil {
		return nil, errors.Wrapf(err, "open parquet %q", path)
	}
	defer rdr.Close()
	ar, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, err
	}
	return ar.Schema()
}

func collectColumn(md *metadata.FileMetaData, colIndex int, dt arrow.DataType, numRowGroups int) (stats.ColumnStatistics, error) {
	var out stats.ColumnStatistics
	var minValue, maxValue scalar.Value
	seeded := false
	haveMinMax := numRowGroups > 0
	haveNulls := numRowGroups > 0
	haveDistinct := numRowGroups > 0
	var nullCount, distinctCount uint64

	for g := 0; g < numRowGroups; g++ {
		chunk, err := md.RowGroup(g).ColumnChunk(colIndex)
		if err != nil {
			return out, err
		}
		ts, err := chunk.Statistics()
		if err != nil {
			return out, err
		}
		if ts == nil {
			return out, nil
		}

		lo, hi, ok, err := ChunkMinMax(dt, ts)
		if err != nil {
			return out, err
		}
		if !ok {
			haveMinMax = false
		} else if !seeded {
			minValue, maxValue = lo, hi
			seeded = true
		} else {
			if c, err := scalar.Compare(lo, minValue); err != nil {
				return out, err
			} else if c < 0 {
				minValue = lo
			}
			if c, err := scalar.Compare(hi, maxValue); err != nil {
				return out, err
			} else if c > 0 {
				maxValue = hi
			}
		}

		if ts.HasNullCount() {
			nullCount += uint64(ts.NullCount())
		} else {
			haveNulls = false
		}
		if ts.HasDistinctCount() {
			distinctCount += uint64(ts.DistinctCount())
		} else {
			haveDistinct = false
		}
	}

	if haveMinMax {
		out.MinValue = stats.Exact(minValue)
		out.MaxValue = stats.Exact(maxValue)
	}
	if haveNulls {
		out.NullCount = stats.Exact(nullCount)
	}
	if haveDistinct {
		if numRowGroups == 1 {
			out.DistinctCount = stats.Exact(distinctCount)
		} else {
			// Summing per-group counts overcounts values present in several
			// groups, so the merged figure is only an upper-bound estimate.
			out.DistinctCount = stats.Inexact(distinctCount)
		}
	}
	return out, nil
}

// ChunkMinMax converts one chunk's physical min/max into scalars of the
// column's logical type. ok is false when the chunk has no min/max or the
// physical type has no mapping.
func ChunkMinMax(dt arrow.DataType, ts metadata.TypedStatistics) (scalar.Value, scalar.Value, bool, error) {
	if !ts.HasMinMax() {
		return scalar.Value{}, scalar.Value{}, false, nil
	}
	var rawMin, rawMax interface{}
	switch s := ts.(type) {
	case *metadata.BooleanStatistics:
		rawMin, rawMax = s.Min(), s.Max()
	case *metadata.Int32Statistics:
		rawMin, rawMax = physInt32(dt, s.Min()), physInt32(dt, s.Max())
	case *metadata.Int64Statistics:
		rawMin, rawMax = physInt(dt, s.Min()), physInt(dt, s.Max())
	case *metadata.Float32Statistics:
		rawMin, rawMax = float64(s.Min()), float64(s.Max())
	case *metadata.Float64Statistics:
		rawMin, rawMax = s.Min(), s.Max()
	case *metadata.ByteArrayStatistics:
		rawMin, rawMax = string(s.Min()), string(s.Max())
	default:
		return scalar.Value{}, scalar.Value{}, false, nil
	}
	lo, err := scalar.Make(dt, rawMin)
	if err != nil {
		return scalar.Value{}, scalar.Value{}, false, err
	}
	hi, err := scalar.Make(dt, rawMax)
	if err != nil {
		return scalar.Value{}, scalar.Value{}, false, err
	}
	return lo, hi, true, nil
}

// physInt reinterprets a physical integer for the logical type: unsigned
// logical types store their bit pattern in a signed physical column.
func physInt(dt arrow.DataType, v int64) interface{} {
	switch dt.ID() {
	case arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return uint64(v)
	}
	return v
}

// physInt32 must mask to the source width before widening, otherwise an
// unsigned value above 2^31 sign-extends into the high 32 bits.
func physInt32(dt arrow.DataType, v int32) interface{} {
	switch dt.ID() {
	case arrow.UINT8, arrow.UINT16, arrow.UINT32:
		return uint64(uint32(v))
	}
	return int64(v)
}
