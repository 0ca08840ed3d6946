package pruning

import (
	pqfile "github.com/apache/arrow/go/v12/parquet/file"
	"github.com/apache/arrow/go/v12/parquet/metadata"
	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"

	"github.com/rangeflow-io/rangeflow/analysis"
	"github.com/rangeflow-io/rangeflow/common/log"
	"github.com/rangeflow-io/rangeflow/interval"
	"github.com/rangeflow-io/rangeflow/io/fs"
	statspq "github.com/rangeflow-io/rangeflow/stats/parquet"
)

// PruneRowGroups returns the set of row-group indices of one Parquet file
// that may contain rows satisfying the predicate the boundaries were refined
// against. A group is dropped only when some column's chunk min/max range is
// provably disjoint from that column's refined interval; groups without
// usable statistics always survive.
func PruneRowGroups(f fs.Fs, path string, boundaries []analysis.ExprBoundaries) (*bitset.BitSet, error) {
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
	keep := bitset.New(uint(rdr.NumRowGroups()))
	for g := 0; g < rdr.NumRowGroups(); g++ {
		match, err := groupMayMatch(md, g, boundaries)
		if err != nil {
			return nil, errors.Wrapf(err, "row group %d of %q", g, path)
		}
		if match {
			keep.Set(uint(g))
		} else {
			log.Debug("row group pruned", log.String("path", path), log.Int("group", g))
		}
	}
	return keep, nil
}

func groupMayMatch(md *metadata.FileMetaData, g int, boundaries []analysis.ExprBoundaries) (bool, error) {
	rg := md.RowGroup(g)
	for i := range boundaries {
		b := &boundaries[i]
		colIndex := md.Schema.ColumnIndexByName(b.Column.Name)
		if colIndex < 0 {
			continue
		}
		chunk, err := rg.ColumnChunk(colIndex)
		if err != nil {
			return false, err
		}
		ts, err := chunk.Statistics()
		if err != nil {
			return false, err
		}
		if ts == nil {
			continue
		}
		lo, hi, ok, err := statspq.ChunkMinMax(b.Interval.DataType(), ts)
		if err != nil || !ok {
			// A chunk whose statistics this library cannot read never
			// disqualifies its group.
			continue
		}
		chunkRange, err := interval.New(lo, hi)
		if err != nil {
			continue
		}
		if _, nonEmpty, err := interval.Intersect(chunkRange, b.Interval); err == nil && !nonEmpty {
			return false, nil
		}
	}
	return true, nil
}
