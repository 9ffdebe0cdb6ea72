// Package convert re-encodes image bytes as WebP. It is a pure
// transformation: bytes in, bytes out, no filesystem access.
package convert

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	exif "github.com/dsoprea/go-exif/v3"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"

	"slimbox/pkg/imgutil"
)

// TargetMIME is the content type stored for converted attachments.
const TargetMIME = "image/webp"

// DefaultQuality balances size and fidelity for attachment photos.
const DefaultQuality = 85

// Converter encodes decoded images as lossy WebP at a fixed quality.
type Converter struct {
	quality int
}

func New(quality int) *Converter {
	return &Converter{quality: quality}
}

// Convert decodes data, normalizes orientation and transparency, and returns
// the WebP encoding. The input is never modified; corrupt or unsupported
// input yields an error and no output.
//
// Re-encoding drops EXIF, so a JPEG/TIFF orientation tag is applied to the
// pixels first; otherwise rotated photos would display sideways afterwards.
func (c *Converter) Convert(data []byte, kind imgutil.Kind) ([]byte, error) {
	if kind == imgutil.KindWebP {
		return nil, errors.New("input is already webp")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}

	if kind == imgutil.KindJPEG || kind == imgutil.KindTIFF {
		img = applyOrientation(img, data)
	}
	img = flatten(img)

	opts, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(c.quality))
	if err != nil {
		return nil, fmt.Errorf("encoder options: %w", err)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, opts); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

// applyOrientation bakes the EXIF orientation into the pixels. Missing or
// unreadable EXIF leaves the image as decoded.
func applyOrientation(img image.Image, raw []byte) image.Image {
	rawExif, err := exif.SearchAndExtractExif(raw)
	if err != nil {
		return img
	}
	tags, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return img
	}

	for _, tag := range tags {
		if tag.TagName != "Orientation" {
			continue
		}
		values, ok := tag.Value.([]uint16)
		if !ok || len(values) == 0 {
			return img
		}
		switch values[0] {
		case 2:
			return imaging.FlipH(img)
		case 3:
			return imaging.Rotate180(img)
		case 4:
			return imaging.FlipV(img)
		case 5:
			return imaging.Transpose(img)
		case 6:
			return imaging.Rotate270(img)
		case 7:
			return imaging.Transverse(img)
		case 8:
			return imaging.Rotate90(img)
		}
		return img
	}
	return img
}

// flatten composites transparent images onto white, the same treatment the
// attachments got when uploaded through the inventory UI.
func flatten(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Point{}, 1.0)
}
