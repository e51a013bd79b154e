package utils

import (
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-crane/tunestatus/shared"
)

func TestBytesToGUIDLocation_IsStable(t *testing.T) {
	first, guid := BytesToGUIDLocation([]byte("cover"), "jpeg")
	second, _ := BytesToGUIDLocation([]byte("cover"), "jpeg")
	other, _ := BytesToGUIDLocation([]byte("another cover"), "jpeg")

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.Equal(t, "/static/cover."+guid.String()+".jpeg", first)
}

func TestImageExtension(t *testing.T) {
	assert.Equal(t, "jpeg", ImageExtension([]byte("\xff\xd8\xff\xe0 jfif")))
	assert.Equal(t, "png", ImageExtension([]byte("\x89PNG\x0d\x0a\x1a\x0a rest")))
	assert.Equal(t, "gif", ImageExtension([]byte("GIF89a rest")))
	assert.Equal(t, "bmp", ImageExtension([]byte("BM rest")))
	assert.Equal(t, "tiff", ImageExtension([]byte("II*\x00 rest")))
	assert.Equal(t, "tiff", ImageExtension([]byte("MM\x00* rest")))
	assert.Equal(t, "", ImageExtension([]byte("plain text")))
}

func TestColorToHexString(t *testing.T) {
	assert.Equal(t, "#ff8000", ColorToHexString(color.RGBA{R: 255, G: 128, B: 0, A: 255}))
}

func TestNewHTTPClient_SetsUserAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, shared.USER_AGENT, r.Header.Get("User-Agent"))
	}))
	defer server.Close()

	res, err := NewHTTPClient(0).Get(server.URL)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}
