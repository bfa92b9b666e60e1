package handlers

import (
	"context"
	"fmt"
	"hash/fnv"
	"html"
	"net/http"
	"strings"
	"unicode"

	"github.com/labstack/echo/v4"
)

// FileService is the part of the query client the file routes use.
type FileService interface {
	FilePreview(ctx context.Context, fileID string) (string, error)
}

// MediaHandler serves stored images and generated avatars
type MediaHandler struct {
	files FileService
}

func NewMediaHandler(files FileService) *MediaHandler {
	return &MediaHandler{files: files}
}

// RegisterMediaRoutes registers the public media routes. Image URLs are
// embedded in pages, so these routes take no session.
func (h *MediaHandler) RegisterMediaRoutes(g *echo.Group) {
	g.GET("/files/:id/preview", h.Preview)
	g.GET("/avatars/initials", h.Initials)
}

// Preview redirects to a short-lived download address of the image. The
// width, height, gravity and quality query parameters describe the
// rendition the client expects and are not applied to the stored original.
func (h *MediaHandler) Preview(c echo.Context) error {
	link, err := h.files.FilePreview(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	c.Response().Header().Set("Cache-Control", "private, max-age=300")
	return c.Redirect(http.StatusFound, link)
}

var avatarColors = []string{"#877EFF", "#FF5A5A", "#FFB620", "#2BB673", "#0EA5E9", "#EC4899"}

// Initials renders the generated avatar of a name as SVG
func (h *MediaHandler) Initials(c echo.Context) error {
	name := strings.TrimSpace(c.QueryParam("name"))
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Blob(http.StatusOK, "image/svg+xml", []byte(initialsSVG(name)))
}

// initials takes the first letter of the first two words of name.
func initials(name string) string {
	var out []rune
	for _, w := range strings.Fields(name) {
		r := []rune(w)[0]
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		out = append(out, unicode.ToUpper(r))
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

func initialsSVG(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	color := avatarColors[h.Sum32()%uint32(len(avatarColors))]
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="128" height="128" viewBox="0 0 128 128">`+
		`<rect width="128" height="128" rx="64" fill="%s"/>`+
		`<text x="50%%" y="50%%" dy=".35em" text-anchor="middle" font-family="Inter, sans-serif" font-size="52" fill="#FFFFFF">%s</text>`+
		`</svg>`, color, html.EscapeString(initials(name)))
}
