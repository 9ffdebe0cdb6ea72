package convert

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"slimbox/pkg/imgutil"
)

func TestConvertPNG(t *testing.T) {
	c := New(DefaultQuality)

	out, err := c.Convert(pngBytes(t, color.RGBA{R: 0x40, G: 0x80, B: 0xc0, A: 0xff}), imgutil.KindPNG)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	kind, err := imgutil.SniffReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("sniff output: %v", err)
	}
	if kind != imgutil.KindWebP {
		t.Fatalf("output sniffs as %v, want webp", kind)
	}
}

func TestConvertTransparentPNG(t *testing.T) {
	c := New(DefaultQuality)

	out, err := c.Convert(pngBytes(t, color.RGBA{R: 0xff, A: 0x10}), imgutil.KindPNG)
	if err != nil {
		t.Fatalf("convert transparent: %v", err)
	}
	if kind, _ := imgutil.SniffReader(bytes.NewReader(out)); kind != imgutil.KindWebP {
		t.Fatalf("output sniffs as %v, want webp", kind)
	}
}

func TestConvertCorruptInput(t *testing.T) {
	c := New(DefaultQuality)

	if _, err := c.Convert([]byte{0xff, 0xd8, 0xff, 0xe0, 0xde, 0xad, 0xbe, 0xef}, imgutil.KindJPEG); err == nil {
		t.Fatal("expected error for corrupt input")
	}
}

func TestConvertRejectsWebPInput(t *testing.T) {
	c := New(DefaultQuality)

	if _, err := c.Convert([]byte("RIFF\x10\x00\x00\x00WEBPVP8 "), imgutil.KindWebP); err == nil {
		t.Fatal("expected error for webp input")
	}
}

func TestConvertQualityRange(t *testing.T) {
	if _, err := New(1).Convert(pngBytes(t, color.RGBA{A: 0xff}), imgutil.KindPNG); err != nil {
		t.Fatalf("quality 1: %v", err)
	}
	if _, err := New(100).Convert(pngBytes(t, color.RGBA{A: 0xff}), imgutil.KindPNG); err != nil {
		t.Fatalf("quality 100: %v", err)
	}
}

func pngBytes(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
