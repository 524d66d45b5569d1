package source

import (
	"bytes"
	"context"
	"io"

	"github.com/temirov/uptree/internal/tree"
)

// Bytes returns an entry whose content is held in memory.
func Bytes(relativePath string, data []byte) tree.Entry {
	return tree.Entry{RelativePath: relativePath, Handle: bytesHandle(data)}
}

type bytesHandle []byte

func (handle bytesHandle) Open(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(handle)), nil
}

func (handle bytesHandle) Size() int64 {
	return int64(len(handle))
}
