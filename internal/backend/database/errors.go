package database

import "errors"

var (
	ErrTableExists         = errors.New("table 'images' already exists")
	ErrImageNotFound       = errors.New("image not found")
	ErrUnsupportedEndpoint = errors.New("unsupported database endpoint")
)
