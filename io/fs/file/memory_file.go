package file

import (
	"io"
)

var _ File = (*MemoryFile)(nil)

// MemoryFile reads and writes a byte slice shared with its owning
// filesystem, so a file written through one handle is visible to handles
// opened later.
type MemoryFile struct {
	data *[]byte
	pos  int64
}

func NewMemoryFile(data *[]byte) *MemoryFile {
	return &MemoryFile{data: data}
}

func (m *MemoryFile) Read(p []byte) (int, error) {
	if m.pos >= int64(len(*m.data)) {
		return 0, io.EOF
	}
	n := copy(p, (*m.data)[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *MemoryFile) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, io.ErrUnexpectedEOF
	}
	if off >= int64(len(*m.data)) {
		return 0, io.EOF
	}
	n := copy(p, (*m.data)[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *MemoryFile) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = m.pos + offset
	case io.SeekEnd:
		next = int64(len(*m.data)) + offset
	default:
		return 0, io.ErrUnexpectedEOF
	}
	if next < 0 {
		return 0, io.ErrUnexpectedEOF
	}
	m.pos = next
	return next, nil
}

func (m *MemoryFile) Write(p []byte) (int, error) {
	buf := *m.data
	end := m.pos + int64(len(p))
	if end > int64(len(buf)) {
		buf = append(buf, make([]byte, end-int64(len(buf)))...)
	}
	copy(buf[m.pos:end], p)
	*m.data = buf
	m.pos = end
	return len(p), nil
}

func (m *MemoryFile) Close() error {
	return nil
}
