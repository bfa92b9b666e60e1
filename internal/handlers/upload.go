package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/snapgram/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// maxImageSize bounds uploaded images.
const maxImageSize = 20 << 20

// formImage opens the optional image part of a multipart form. The returned
// close function must be called once the file has been stored.
func formImage(c echo.Context, field string) (*models.File, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, func() {}, nil
		}
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid multipart form")
	}
	if fh.Size > maxImageSize {
		return nil, nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Image too large")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "Unreadable image")
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &models.File{
		Name:        fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Reader:      f,
	}, func() { f.Close() }, nil
}
