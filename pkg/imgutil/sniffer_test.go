package imgutil

import (
	"bytes"
	"testing"
)

func TestDetectHeader(t *testing.T) {
	cases := []struct {
		name   string
		header []byte
		want   Kind
	}{
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0, 0, 0, 0, 0, 0, 0}, KindJPEG},
		{"png", []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}, KindPNG},
		{"gif", []byte("GIF89a\x00\x00\x00\x00\x00\x00"), KindGIF},
		{"bmp", []byte{0x42, 0x4d, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, KindBMP},
		{"tiff le", []byte{0x49, 0x49, 0x2a, 0x00, 0, 0, 0, 0, 0, 0, 0, 0}, KindTIFF},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBP"), KindWebP},
		{"riff but not webp", []byte("RIFF\x00\x00\x00\x00WAVE"), KindUnknown},
		{"junk", []byte("not an image"), KindUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DetectHeader(tc.header)
			if err != nil {
				t.Fatalf("detect: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDetectHeaderShort(t *testing.T) {
	if _, err := DetectHeader([]byte{0xff, 0xd8}); err == nil {
		t.Fatal("expected error for short header")
	}
}

func TestSniffReader(t *testing.T) {
	kind, err := SniffReader(bytes.NewReader([]byte("RIFF\x10\x00\x00\x00WEBPVP8 ")))
	if err != nil {
		t.Fatalf("sniff: %v", err)
	}
	if kind != KindWebP {
		t.Fatalf("got %v, want %v", kind, KindWebP)
	}
}

func TestKindForExtension(t *testing.T) {
	if k, ok := KindForExtension(".JPG"); !ok || k != KindJPEG {
		t.Fatalf("got %v/%v for .JPG", k, ok)
	}
	if k, ok := KindForExtension(".tif"); !ok || k != KindTIFF {
		t.Fatalf("got %v/%v for .tif", k, ok)
	}
	if _, ok := KindForExtension(".txt"); ok {
		t.Fatal(".txt should not map to a kind")
	}
}
