package utils

import (
	"path/filepath"

	"github.com/google/uuid"
)

const parquetFileSuffix = ".parquet"

// GetStatsDir returns the directory statistics snapshots live in under a
// dataset root.
func GetStatsDir(root string) string {
	return filepath.Join(root, "stats")
}

// GetNewParquetFilePath returns a fresh, collision-free parquet file path
// inside dir.
func GetNewParquetFilePath(dir string) string {
	return filepath.Join(dir, uuid.NewString()+parquetFileSuffix)
}
