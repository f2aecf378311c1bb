package npy

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/turtacn/rxncenter/pkg/errors"
)

// Sink stores one named blob and returns its location.
type Sink interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
}

// DirSink writes blobs below Root on the local filesystem.
type DirSink struct {
	Root string
}

// NewDirSink returns a DirSink rooted at root.
func NewDirSink(root string) *DirSink {
	return &DirSink{Root: root}
}

// Put writes data to Root/name, creating parent directories.  Names may use
// "/" separators but must stay inside Root.
func (s *DirSink) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Wrap(err, errors.CodeCancelled, "put cancelled")
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if name == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.InvalidParam("invalid object name").WithDetailf("name=%q", name)
	}

	path := filepath.Join(s.Root, clean)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.Wrap(err, errors.CodeExportFailed, "create export directory")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(err, errors.CodeExportFailed, "write export file")
	}
	return path, nil
}

//Personal.AI order the ending
