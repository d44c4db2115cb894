package loader

import (
	"context"

	"marginalloc/types"
)

// FileSource feeds the positions of a CSV file to the engine.
type FileSource struct {
	Path string
}

func (s FileSource) Positions(_ context.Context) ([]types.Position, error) {
	return LoadFile(s.Path)
}

func (s FileSource) String() string {
	return "file " + s.Path
}
