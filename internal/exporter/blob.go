package exporter

import (
	"bytes"
	"sync"
)

// maxPooledBlob caps the buffers kept for reuse; larger ones are dropped
const maxPooledBlob = 4 << 20

var blobPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// blob is the transient downloadable resource of one export. It must be
// released exactly once after delivery returns.
type blob struct {
	buf      *bytes.Buffer
	mimeType string
}

func newBlob(mimeType string) *blob {
	buf := blobPool.Get().(*bytes.Buffer)
	buf.Reset()
	return &blob{buf: buf, mimeType: mimeType}
}

// Bytes is only valid until release
func (b *blob) Bytes() []byte {
	if b.buf == nil {
		return nil
	}
	return b.buf.Bytes()
}

func (b *blob) Len() int {
	if b.buf == nil {
		return 0
	}
	return b.buf.Len()
}

func (b *blob) release() {
	if b.buf == nil {
		return
	}
	buf := b.buf
	b.buf = nil
	if buf.Cap() > maxPooledBlob {
		return
	}
	buf.Reset()
	blobPool.Put(buf)
}
