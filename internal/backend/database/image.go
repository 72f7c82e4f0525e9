package database

type Image struct {
	ID      int64  `db:"id"`
	Image   []byte `db:"image"` // raw file content stored as binary
	Caption string `db:"caption"`
}

// ImageInfo is the listing projection of an image row without its payload.
type ImageInfo struct {
	ID      int64  `json:"id"`
	Caption string `json:"caption"`
	Size    int64  `json:"size"`
}
