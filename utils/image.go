package utils

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"image/color"
	"net/http"

	"github.com/google/uuid"
)

// BytesToGUIDLocation derives a stable cover URL from the image contents.
func BytesToGUIDLocation(image []byte, extension string) (string, uuid.UUID) {
	imageHash := md5.Sum(image)
	guid, _ := uuid.FromBytes(imageHash[:])
	location := fmt.Sprintf("/static/cover.%s.%s", guid, extension)
	return location, guid
}

// ImageExtension sniffs the content type. Unknown formats return "".
func ImageExtension(body []byte) string {
	switch http.DetectContentType(body) {
	case "image/jpeg":
		return "jpeg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/bmp":
		return "bmp"
	}
	// not known to DetectContentType
	if bytes.HasPrefix(body, []byte("II*\x00")) || bytes.HasPrefix(body, []byte("MM\x00*")) {
		return "tiff"
	}
	return ""
}

func ColorToHexString(c color.Color) string {
	r, g, b, a := c.RGBA()
	rgba := color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)}
	return fmt.Sprintf("#%.2x%.2x%.2x", rgba.R, rgba.G, rgba.B)
}
