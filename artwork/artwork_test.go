package artwork

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcess_FitsIntoBox(t *testing.T) {
	raw := testPNG(t, 640, 480, color.RGBA{R: 200, G: 20, B: 20, A: 255})

	art, err := Process(raw, Options{})
	require.NoError(t, err)

	bounds := art.Image.Bounds()
	assert.Equal(t, 320, bounds.Dx())
	assert.Equal(t, 240, bounds.Dy())
	assert.NotEmpty(t, art.Base64)
	assert.Equal(t, "image/jpeg", http.DetectContentType(art.JPEG))
	assert.Contains(t, art.Location, "/static/cover.")
	assert.NotEmpty(t, art.Colours)
	assert.Len(t, art.Accent, 7)

	decoded, err := Decode(art.Base64)
	require.NoError(t, err)
	assert.Equal(t, bounds.Size(), decoded.Bounds().Size())
}

func TestProcess_SmallImagesAreNotUpscaled(t *testing.T) {
	art, err := Process(testPNG(t, 100, 50, color.White), Options{Size: 320})
	require.NoError(t, err)
	assert.Equal(t, 100, art.Image.Bounds().Dx())
}

func TestProcess_Invalid(t *testing.T) {
	_, err := Process(nil, Options{})
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Process([]byte("not an image"), Options{})
	assert.ErrorIs(t, err, ErrUnsupported)

	// sniffed as png but truncated
	_, err = Process([]byte("\x89PNG\x0d\x0a\x1a\x0a"), Options{})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupported)
}

func TestCache_FetchesOncePerKey(t *testing.T) {
	raw := testPNG(t, 10, 10, color.Black)
	var calls int32
	fetch := func(context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(20 * time.Millisecond)
		return raw, nil
	}

	cache := NewCache(1<<20, Options{}, nil)
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Get(context.Background(), "track", fetch)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	_, err := cache.Get(context.Background(), "track", fetch)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCache_DoesNotCacheFailures(t *testing.T) {
	cache := NewCache(1<<20, Options{}, nil)
	boom := errors.New("boom")
	_, err := cache.Get(context.Background(), "track", func(context.Context) ([]byte, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, cache.Len())
}

func TestCache_EvictsBySize(t *testing.T) {
	first := testPNG(t, 10, 10, color.Black)
	art, err := Process(first, Options{})
	require.NoError(t, err)

	cache := NewCache(len(art.JPEG)+1, Options{}, nil)
	for _, key := range []string{"a", "b", "c"} {
		_, err := cache.Get(context.Background(), key, func(context.Context) ([]byte, error) { return first, nil })
		require.NoError(t, err)
	}
	assert.Equal(t, 1, cache.Len())
}

func TestCoverStore(t *testing.T) {
	dir := t.TempDir()
	store := NewCoverStore(dir)
	cache := NewCache(1<<20, Options{}, store)

	art, err := cache.Get(context.Background(), "track", func(context.Context) ([]byte, error) {
		return testPNG(t, 10, 10, color.White), nil
	})
	require.NoError(t, err)

	name := filepath.Base(art.Location)
	b, contentType, err := store.Load(name)
	require.NoError(t, err)
	assert.Equal(t, art.JPEG, b)
	assert.Equal(t, "image/jpeg", contentType)

	_, _, err = store.Load("../../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidCover)

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, name), old, old))
	removed, err := store.Prune(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}
