package file

import "io"

// File is what statistics collection needs from a storage backend: random
// reads for Parquet footers plus sequential writes so tests and snapshot
// writers can produce files through the same abstraction.
type File interface {
	io.Reader
	io.ReaderAt
	io.Seeker
	io.Writer
	io.Closer
}
