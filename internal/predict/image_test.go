package predict

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 128, A: 255})
		}
	}
	return img
}

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeImagePNG(t *testing.T) {
	img, err := DecodeImage(pngBytes(t, testImage(16, 12)))
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}
	if img.Format != "png" || img.MIME != "image/png" {
		t.Fatalf("format=%q mime=%q", img.Format, img.MIME)
	}
	if b := img.Image.Bounds(); b.Dx() != 16 || b.Dy() != 12 {
		t.Fatalf("bounds = %v", b)
	}
	if img.Hash == "" {
		t.Fatal("expected a perceptual hash")
	}
}

func TestDecodeImageBMP(t *testing.T) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, testImage(8, 8)); err != nil {
		t.Fatalf("bmp.Encode: %v", err)
	}
	img, err := DecodeImage(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}
	if img.Format != "bmp" {
		t.Fatalf("format = %q", img.Format)
	}
}

func TestDecodeImageSameHashForReencodedCopy(t *testing.T) {
	src := testImage(32, 32)
	a, err := DecodeImage(pngBytes(t, src))
	if err != nil {
		t.Fatalf("DecodeImage png: %v", err)
	}
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, src); err != nil {
		t.Fatalf("bmp.Encode: %v", err)
	}
	b, err := DecodeImage(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeImage bmp: %v", err)
	}
	if a.Hash != b.Hash {
		t.Fatalf("hash differs across encodings: %q vs %q", a.Hash, b.Hash)
	}
}

func TestDecodeImageDigestSeparatesFlatImages(t *testing.T) {
	red, err := DecodeImage(pngBytes(t, solidImage(16, 16, color.RGBA{R: 255, A: 255})))
	if err != nil {
		t.Fatalf("DecodeImage red: %v", err)
	}
	green, err := DecodeImage(pngBytes(t, solidImage(16, 16, color.RGBA{G: 255, A: 255})))
	if err != nil {
		t.Fatalf("DecodeImage green: %v", err)
	}
	if red.Hash != green.Hash {
		t.Fatalf("flat images expected to share a dhash: %q vs %q", red.Hash, green.Hash)
	}
	if red.Digest == "" || red.Digest == green.Digest {
		t.Fatalf("digests must differ: %q vs %q", red.Digest, green.Digest)
	}
}

func TestDecodeImageRejects(t *testing.T) {
	truncated := pngBytes(t, testImage(4, 4))[:20]
	for name, data := range map[string][]byte{
		"empty":     nil,
		"text":      []byte("definitely not an image"),
		"truncated": truncated,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeImage(data)
			if !errors.Is(err, ErrUnsupportedImage) {
				t.Fatalf("expected ErrUnsupportedImage, got %v", err)
			}
		})
	}
}
