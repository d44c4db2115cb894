package repository

import (
	"context"

	"marginalloc/types"
)

// BookSource feeds the positions of one book to the engine.
type BookSource struct {
	db   *Database
	book string
}

func (db *Database) Book(book string) *BookSource {
	return &BookSource{db: db, book: book}
}

func (s *BookSource) Positions(ctx context.Context) ([]types.Position, error) {
	return s.db.GetPositions(ctx, s.book)
}

func (s *BookSource) String() string {
	return "postgres book " + s.book
}
