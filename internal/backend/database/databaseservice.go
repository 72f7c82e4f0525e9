package database

import "context"

type DatabaseService interface {
	// CreateDatabase issues a plain CREATE TABLE for the images table. It returns
	// ErrTableExists when the store reports the table is already present.
	CreateDatabase(ctx context.Context) error
	// IsOpen reports whether the session still answers a ping.
	IsOpen(ctx context.Context) bool
	Dialect() Dialect
	Close() error

	// CreateImage inserts a single row and returns the id assigned by the store.
	CreateImage(ctx context.Context, image []byte, caption string) (int64, error)
	GetImages(ctx context.Context) ([]*ImageInfo, error)
	// GetImageByID returns nil without an error if no row has the given id.
	GetImageByID(ctx context.Context, id int64) (*Image, error)
	DeleteImage(ctx context.Context, id int64) error
}
