// Package artwork decodes cover art and prepares it for display and for
// the shared snapshot.
package artwork

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/png"

	"github.com/boxes-ltd/imaging"
	"github.com/cenkalti/dominantcolor"
	color_extractor "github.com/marekm4/color-extractor"

	"github.com/marcus-crane/tunestatus/utils"
)

const (
	DefaultSize    = 320
	DefaultQuality = 80
)

var (
	ErrEmpty       = errors.New("artwork is empty")
	ErrUnsupported = errors.New("artwork format is not supported")
)

type Options struct {
	Size    int
	Quality int
}

func (o Options) withDefaults() Options {
	if o.Size <= 0 {
		o.Size = DefaultSize
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = DefaultQuality
	}
	return o
}

// Artwork is a decoded cover bounded to Options.Size on both sides.
type Artwork struct {
	Image    image.Image
	JPEG     []byte
	Base64   string
	Colours  []string
	Accent   string
	Location string
}

// Process decodes raw image bytes, fits them into a square box and
// re-encodes them as JPEG.
func Process(raw []byte, opts Options) (*Artwork, error) {
	if len(raw) == 0 {
		return nil, ErrEmpty
	}
	if utils.ImageExtension(raw) == "" {
		return nil, ErrUnsupported
	}
	opts = opts.withDefaults()

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > opts.Size || bounds.Dy() > opts.Size {
		img = imaging.Fit(img, opts.Size, opts.Size, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(opts.Quality)); err != nil {
		return nil, fmt.Errorf("failed to encode artwork: %w", err)
	}

	encoded := buf.Bytes()
	location, _ := utils.BytesToGUIDLocation(encoded, "jpeg")

	return &Artwork{
		Image:    img,
		JPEG:     encoded,
		Base64:   base64.StdEncoding.EncodeToString(encoded),
		Colours:  Colours(img),
		Accent:   dominantcolor.Hex(dominantcolor.Find(img)),
		Location: location,
	}, nil
}

// Colours returns the palette of img as hex strings, most prominent first.
func Colours(img image.Image) []string {
	var colours []string
	for _, c := range color_extractor.ExtractColors(img) {
		colours = append(colours, utils.ColorToHexString(c))
	}
	return colours
}

// Decode reverses the base64 form held in a snapshot.
func Decode(encoded string) (image.Image, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	return imaging.Decode(bytes.NewReader(raw))
}
