package models

import "io"

// File is an image upload on its way to object storage
type File struct {
	Name        string    `validate:"required"`
	ContentType string    `validate:"required"`
	Size        int64     `validate:"gt=0"`
	Reader      io.Reader `validate:"required"`
}
