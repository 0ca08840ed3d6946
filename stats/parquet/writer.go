package parquet

import (
	"github.com/apache/arrow/go/v12/arrow"
	pq "github.com/apache/arrow/go/v12/parquet"
	"github.com/apache/arrow/go/v12/parquet/pqarrow"
	"github.com/pkg/errors"

	"github.com/rangeflow-io/rangeflow/common/utils"
	"github.com/rangeflow-io/rangeflow/io/fs"
)

// WriteSnapshot writes a record batch to a fresh parquet file under dir and
// returns the file's path. The written footer carries the chunk statistics
// Collect later reads back.
func WriteSnapshot(f fs.Fs, dir string, rec arrow.Record) (string, error) {
	path := utils.GetNewParquetFilePath(dir)
	fh, err := f.CreateFile(path)
	if err != nil {
		return "", err
	}
	w, err := pqarrow.NewFileWriter(rec.Schema(), fh, pq.NewWriterProperties(), pqarrow.DefaultWriterProps())
	if err != nil {
		fh.Close()
		return "", errors.Wrapf(err, "create parquet writer for %q", path)
	}
	if err := w.Write(rec); err != nil {
		w.Close()
		return "", errors.Wrapf(err, "write %q", path)
	}
	// Closing the writer also closes the sink it was given.
	if err := w.Close(); err != nil {
		return "", err
	}
	return path, nil
}
