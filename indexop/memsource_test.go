package indexop

import (
	"io"
)

// memHandle is an in-memory Handle used to drive exact block-boundary
// scenarios deterministically, without touching the filesystem.
type memHandle struct {
	data []byte
}

func (m *memHandle) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	var err error
	if off+int64(n) >= int64(len(m.data)) {
		err = io.EOF
	}
	return n, err
}

func (m *memHandle) Size() (int64, error) { return int64(len(m.data)), nil }
func (m *memHandle) Close() error         { return nil }
