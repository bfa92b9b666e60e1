package remote

import (
	"errors"
	"net/url"
	"strings"
)

// Preview parameters of post and profile images.
const (
	PreviewWidth   = "2000"
	PreviewHeight  = "2000"
	PreviewGravity = "top"
	PreviewQuality = "100"
)

// PreviewURL returns the image preview address of a stored file.
func PreviewURL(publicURL, fileID string) (string, error) {
	if fileID == "" {
		return "", errors.New("empty file id")
	}
	q := url.Values{}
	q.Set("width", PreviewWidth)
	q.Set("height", PreviewHeight)
	q.Set("gravity", PreviewGravity)
	q.Set("quality", PreviewQuality)
	return strings.TrimRight(publicURL, "/") + "/api/v1/files/" + url.PathEscape(fileID) + "/preview?" + q.Encode(), nil
}

// AvatarURL returns the generated initials avatar of name.
func AvatarURL(publicURL, name string) string {
	q := url.Values{}
	q.Set("name", name)
	return strings.TrimRight(publicURL, "/") + "/api/v1/avatars/initials?" + q.Encode()
}

// ParseTags turns the comma separated tag input into a list. Spaces are
// removed and empty items dropped; empty input yields an empty list.
func ParseTags(input string) []string {
	tags := []string{}
	for _, t := range strings.Split(strings.ReplaceAll(input, " ", ""), ",") {
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
